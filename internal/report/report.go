package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bookscout/internal/book"
	"bookscout/internal/logging"
	"bookscout/internal/source"
)

// Report is one book condensed to the fields worth skimming when deciding
// what to read next.
type Report struct {
	Author       string
	Series       string
	BookID       string
	Rating       float64
	Year         int
	Shelves      string
	SeriesLength int
}

const columnWidth = 50

// Line renders the report as one fixed-width text line for the report
// file.
func (r Report) Line() string {
	series := ""
	if r.Series != "" {
		series = fmt.Sprintf("%s (%d)", r.Series, r.SeriesLength)
	}
	id := r.BookID
	if len(id) > columnWidth-1 {
		id = id[:columnWidth-1]
	}
	left := pad(pad(pad(r.Author, columnWidth)+series, 2*columnWidth)+id, 3*columnWidth)
	return left + pad(strconv.Itoa(r.Year), 8) + pad(formatRating(r.Rating), 8) + r.Shelves
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func formatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}

// Builder assembles reports from book entities.
type Builder struct {
	src           source.Getter
	reportShelves map[string]struct{}
	printer       *message.Printer
	logger        *slog.Logger
}

// NewBuilder creates a Builder. When reportShelves is non-empty, each
// report's shelf summary shows only the book's top shelves found in that
// set, with follower counts; otherwise it shows the book's genres.
func NewBuilder(src source.Getter, reportShelves []string, logger *slog.Logger) *Builder {
	var shelfSet map[string]struct{}
	if len(reportShelves) > 0 {
		shelfSet = make(map[string]struct{}, len(reportShelves))
		for _, shelf := range reportShelves {
			shelfSet[shelf] = struct{}{}
		}
	}
	return &Builder{
		src:           src,
		reportShelves: shelfSet,
		printer:       message.NewPrinter(language.English),
		logger:        logging.NewComponentLogger(logger, "report"),
	}
}

// Build assembles the report for one book. The series listing and,
// depending on configuration, the shelf listing are fetched on demand.
func (b *Builder) Build(ctx context.Context, entity *book.Entity) (Report, error) {
	seriesIDs, err := entity.SeriesBookIDs(ctx)
	if err != nil {
		return Report{}, err
	}

	author := entity.Author()
	if author == "" {
		author = "unknown"
	}

	shelves, err := b.shelfSummary(ctx, entity)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Author:       author,
		Series:       entity.Series(),
		BookID:       entity.ID(),
		Rating:       entity.Rating(),
		Year:         entity.Year(),
		Shelves:      shelves,
		SeriesLength: len(seriesIDs),
	}, nil
}

func (b *Builder) shelfSummary(ctx context.Context, entity *book.Entity) (string, error) {
	if b.reportShelves == nil {
		return strings.Join(entity.Genres(), ", "), nil
	}

	shelves, err := entity.TopShelvesWithCount(ctx)
	if err != nil {
		return "", err
	}
	var parts []string
	for _, shelf := range shelves {
		if _, ok := b.reportShelves[shelf.Name]; ok {
			parts = append(parts, b.printer.Sprintf("%s %d", shelf.Name, shelf.Count))
		}
	}
	return strings.Join(parts, ", "), nil
}

// BuildEntities assembles reports for already-loaded entities. A book
// whose report cannot be assembled is logged and left out.
func (b *Builder) BuildEntities(ctx context.Context, entities []*book.Entity) []Report {
	reports := make([]Report, 0, len(entities))
	for _, entity := range entities {
		r, err := b.Build(ctx, entity)
		if err != nil {
			b.logger.Warn("failed to build report",
				logging.String(logging.FieldBookID, entity.ID()),
				logging.Error(err))
			continue
		}
		reports = append(reports, r)
	}
	return reports
}

// BuildIDs loads each book and assembles its report. Books that cannot be
// loaded or reported on are logged and left out.
func (b *Builder) BuildIDs(ctx context.Context, bookIDs []string) []Report {
	reports := make([]Report, 0, len(bookIDs))
	for _, bookID := range bookIDs {
		entity, err := book.New(ctx, bookID, b.src, b.logger)
		if err != nil {
			b.logger.Warn("failed to build report",
				logging.String(logging.FieldBookID, bookID),
				logging.Error(err))
			continue
		}
		r, err := b.Build(ctx, entity)
		if err != nil {
			b.logger.Warn("failed to build report",
				logging.String(logging.FieldBookID, bookID),
				logging.Error(err))
			continue
		}
		reports = append(reports, r)
	}
	return reports
}

// Sort orders reports by author, then series, then book id, in place.
func Sort(reports []Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].Author != reports[j].Author {
			return reports[i].Author < reports[j].Author
		}
		if reports[i].Series != reports[j].Series {
			return reports[i].Series < reports[j].Series
		}
		return reports[i].BookID < reports[j].BookID
	})
}
