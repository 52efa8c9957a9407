package report

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"bookscout/internal/logging"
)

// Sink appends named report sections to the report file. An empty path
// disables file output; Append then only logs.
type Sink struct {
	path   string
	logger *slog.Logger
}

// NewSink creates a Sink writing to path.
func NewSink(path string, logger *slog.Logger) *Sink {
	return &Sink{
		path:   path,
		logger: logging.NewComponentLogger(logger, "report"),
	}
}

// Append writes one named section. With sortReports the section is
// ordered by author and series; otherwise the incoming order is kept,
// which the recommendation flow relies on to preserve its ranking.
func (s *Sink) Append(name string, reports []Report, sortReports bool) error {
	ordered := make([]Report, len(reports))
	copy(ordered, reports)
	if sortReports {
		Sort(ordered)
	}

	s.logger.Info("writing report section",
		logging.String("section", name),
		logging.Int("books", len(ordered)))

	if s.path == "" {
		return nil
	}

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "# %s\n", name); err != nil {
		return fmt.Errorf("write report section %s: %w", name, err)
	}
	for _, r := range ordered {
		if _, err := fmt.Fprintln(file, r.Line()); err != nil {
			return fmt.Errorf("write report section %s: %w", name, err)
		}
	}
	if _, err := fmt.Fprintln(file); err != nil {
		return fmt.Errorf("write report section %s: %w", name, err)
	}
	return nil
}

// Table renders reports as a console table.
func Table(reports []Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Author", "Series", "Book", "Year", "Rating", "Shelves"})

	for _, r := range reports {
		series := r.Series
		if series != "" {
			series = fmt.Sprintf("%s (%d)", series, r.SeriesLength)
		}
		year := ""
		if r.Year != 0 {
			year = fmt.Sprintf("%d", r.Year)
		}
		rating := ""
		if r.Rating != 0 {
			rating = formatRating(r.Rating)
		}
		tw.AppendRow(table.Row{r.Author, series, r.BookID, year, rating, r.Shelves})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
