package lists

import (
	"context"
	"fmt"
	"log/slog"

	"bookscout/internal/book"
	"bookscout/internal/filter"
	"bookscout/internal/logging"
	"bookscout/internal/report"
	"bookscout/internal/source"
)

// Sources names where to collect book ids from: explicit ids, curated
// lists, and public shelves.
type Sources struct {
	BookIDs []string
	Lists   []string
	Shelves []string
}

// Scanner collects book ids from lists and shelves and filters them into
// reports.
type Scanner struct {
	src       source.Getter
	builder   *report.Builder
	listPages int
	logger    *slog.Logger
}

// NewScanner creates a Scanner that walks the first listPages pages of
// each list.
func NewScanner(src source.Getter, builder *report.Builder, listPages int, logger *slog.Logger) *Scanner {
	return &Scanner{
		src:       src,
		builder:   builder,
		listPages: listPages,
		logger:    logging.NewComponentLogger(logger, "lists"),
	}
}

// BookIDsFromList collects the book ids linked from the first pages of a
// curated list. Lists do not advertise their page count, so a fixed
// number of pages is walked; trailing empty pages contribute nothing.
func (s *Scanner) BookIDsFromList(ctx context.Context, name string) ([]string, error) {
	var ids []string
	for page := 1; page <= s.listPages; page++ {
		doc, err := s.src.Get(ctx, fmt.Sprintf("list/show/%s?page=%d", name, page))
		if err != nil {
			return nil, fmt.Errorf("load list %s page %d: %w", name, page, err)
		}
		ids = appendBookIDs(ids, doc)
	}
	return dedupe(ids), nil
}

// BookIDsFromShelf collects the book ids linked from the first page of a
// public shelf.
func (s *Scanner) BookIDsFromShelf(ctx context.Context, name string) ([]string, error) {
	doc, err := s.src.Get(ctx, "shelf/show/"+name)
	if err != nil {
		return nil, fmt.Errorf("load shelf %s: %w", name, err)
	}
	return dedupe(appendBookIDs(nil, doc)), nil
}

// Scan gathers book ids from all sources, keeps the books the predicate
// accepts, and builds their reports. A nil predicate accepts everything.
// A book that cannot be loaded, filtered, or reported on is logged and
// skipped; a list or shelf that cannot be loaded fails the scan.
func (s *Scanner) Scan(ctx context.Context, sources Sources, pred filter.Predicate) ([]report.Report, error) {
	ids := append([]string(nil), sources.BookIDs...)
	for _, name := range sources.Lists {
		listIDs, err := s.BookIDsFromList(ctx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, listIDs...)
	}
	for _, name := range sources.Shelves {
		shelfIDs, err := s.BookIDsFromShelf(ctx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, shelfIDs...)
	}
	ids = dedupe(ids)

	var reports []report.Report
	for _, bookID := range ids {
		r, ok := s.analyze(ctx, bookID, pred)
		if ok {
			reports = append(reports, r)
		}
	}
	return reports, nil
}

func (s *Scanner) analyze(ctx context.Context, bookID string, pred filter.Predicate) (report.Report, bool) {
	s.logger.Debug("analyzing book", logging.String(logging.FieldBookID, bookID))

	entity, err := book.New(ctx, bookID, s.src, s.logger)
	if err != nil {
		s.logger.Warn("skipping book",
			logging.String(logging.FieldBookID, bookID),
			logging.Error(err))
		return report.Report{}, false
	}
	if pred != nil {
		keep, err := pred(ctx, entity)
		if err != nil {
			s.logger.Warn("skipping book",
				logging.String(logging.FieldBookID, bookID),
				logging.Error(err))
			return report.Report{}, false
		}
		if !keep {
			return report.Report{}, false
		}
	}
	r, err := s.builder.Build(ctx, entity)
	if err != nil {
		s.logger.Warn("skipping book",
			logging.String(logging.FieldBookID, bookID),
			logging.Error(err))
		return report.Report{}, false
	}
	return r, true
}

func appendBookIDs(ids []string, doc *source.Document) []string {
	for _, href := range doc.AnchorHrefs("/book/show/") {
		if id := source.BookID(href); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
