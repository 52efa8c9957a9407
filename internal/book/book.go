package book

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"bookscout/internal/logging"
	"bookscout/internal/source"
)

// DefaultLikeScore is the rating floor for counting a reviewer as having
// liked a book.
const DefaultLikeScore = 4

// Shelf is one user-curated shelf with the number of people who added it.
type Shelf struct {
	Name  string
	Count int
}

// Entity wraps one book's detail page and its embedded metadata payload.
// Both are loaded once at construction; accessors derive everything else,
// fetching further listings (shelves, editions, series) on demand.
type Entity struct {
	id     string
	src    source.Getter
	logger *slog.Logger
	doc    *source.Document
	meta   *Metadata
}

// New loads the detail document and metadata payload for a book id.
// Construction fails when either is absent or malformed; such a book is
// unusable for every downstream purpose.
func New(ctx context.Context, bookID string, src source.Getter, logger *slog.Logger) (*Entity, error) {
	logger = logging.NewComponentLogger(logger, "book")

	doc, err := src.Get(ctx, "book/show/"+bookID)
	if err != nil {
		return nil, fmt.Errorf("load book %s: %w", bookID, err)
	}

	raw := doc.ScriptByID("__NEXT_DATA__")
	meta, err := ParseMetadata(raw)
	if err != nil {
		return nil, fmt.Errorf("book %s: %w", bookID, err)
	}

	return &Entity{id: bookID, src: src, logger: logger, doc: doc, meta: meta}, nil
}

// ID returns the book id the entity was constructed from.
func (e *Entity) ID() string { return e.id }

// ReviewersWhoLiked returns the user ids of reviewers whose embedded review
// rated the book at or above minScore, in document order. That order is
// whatever the site emitted and may differ across refetches.
func (e *Entity) ReviewersWhoLiked(minScore int) []int64 {
	var ids []int64
	for _, review := range e.meta.Reviews {
		if review.Rating < minScore {
			continue
		}
		ids = append(ids, review.ReviewerID)
	}
	return ids
}

// Genres returns the book's genre tags in site-assigned prominence order.
// Duplicates are kept; deduplicating or sorting would destroy the
// prominence signal.
func (e *Entity) Genres() []string {
	genres := make([]string, len(e.meta.Genres))
	copy(genres, e.meta.Genres)
	return genres
}

var shelvesLinkPattern = regexp.MustCompile(`https://www\.goodreads\.com/work/shelves/(\d+-.+?)"`)

var peopleCountPattern = regexp.MustCompile(`(\d+) people`)

// TopShelvesWithCount fetches the first page of the book's shelf listing
// and returns each shelf with its follower count. Shelves drop in
// relevance fast, so one page is enough. A detail page without the
// expected shelves link is a benign anomaly and yields an empty result.
func (e *Entity) TopShelvesWithCount(ctx context.Context) ([]Shelf, error) {
	match := shelvesLinkPattern.FindStringSubmatch(e.doc.Raw())
	if match == nil {
		return nil, nil
	}

	doc, err := e.src.Get(ctx, "work/shelves/"+match[1])
	if err != nil {
		return nil, fmt.Errorf("load shelves for %s: %w", e.id, err)
	}

	var shelves []Shelf
	for _, stat := range doc.ElementsByClass("shelfStat") {
		anchor := source.FirstByTag(stat, "a")
		if anchor == nil {
			continue
		}
		name := source.Text(anchor)
		count := peopleCountPattern.FindStringSubmatch(source.Text(stat))
		if name == "" || count == nil {
			continue
		}
		followers, err := strconv.Atoi(count[1])
		if err != nil {
			continue
		}
		shelves = append(shelves, Shelf{Name: name, Count: followers})
	}
	return shelves, nil
}

// Rating returns the book's average rating, or 0 when the page indicates
// the book can no longer be rated.
func (e *Entity) Rating() float64 {
	node := source.FirstByClass(e.doc.Root(), "RatingStatistics__rating")
	if node == nil {
		return 0
	}
	rating, err := strconv.ParseFloat(source.Text(node), 64)
	if err != nil {
		return 0
	}
	return rating
}

// NumRatings returns how many ratings the book has received, or 0 when the
// counter is missing from the page.
func (e *Entity) NumRatings() int {
	node := e.doc.ElementByAttr("", "data-testid", "ratingsCount")
	if node == nil {
		return 0
	}
	text := strings.ReplaceAll(source.Text(node), ",", "")
	if idx := strings.IndexFunc(text, func(r rune) bool { return r < '0' || r > '9' }); idx >= 0 {
		text = text[:idx]
	}
	count, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return count
}

// Author returns the first contributor's URL slug, for example
// "17650479.Becky_Chambers", or "" when the payload carries none.
func (e *Entity) Author() string {
	if len(e.meta.Contributors) == 0 {
		return ""
	}
	return e.meta.Contributors[0].Slug
}

// Series returns the first series' URL slug, for example
// "170872-wayfarers", or "" when the book belongs to none.
func (e *Entity) Series() string {
	if len(e.meta.Series) == 0 {
		return ""
	}
	return e.meta.Series[0].Slug
}

// Year returns the first-publication year, or 0 when the page omits it.
func (e *Entity) Year() int {
	node := e.doc.ElementByAttr("p", "data-testid", "publicationInfo")
	if node == nil {
		return 0
	}
	fields := strings.Fields(source.Text(node))
	if len(fields) == 0 {
		return 0
	}
	year, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0
	}
	return year
}

// Positions like "Book 1", "Book 2", "Book 1.5". Ranges ("Book 1-3") and
// composite parts ("Book 4 Part 4 of 4") stay excluded.
var seriesPositionPattern = regexp.MustCompile(`^Book \d+(\.\d+)?$`)

// SeriesBookIDs fetches the series listing and returns the ids of sibling
// entries holding a plain numbered position, in listing order.
func (e *Entity) SeriesBookIDs(ctx context.Context) ([]string, error) {
	series := e.Series()
	if series == "" {
		return nil, nil
	}

	doc, err := e.src.Get(ctx, "series/"+series)
	if err != nil {
		return nil, fmt.Errorf("load series %s: %w", series, err)
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, row := range doc.ElementsByClass("listWithDividers__item") {
		heading := source.FirstByTag(row, "h3")
		if heading == nil || !seriesPositionPattern.MatchString(source.Text(heading)) {
			continue
		}
		hrefs := source.AnchorHrefs(row, "/book/show/")
		if len(hrefs) == 0 {
			continue
		}
		id := source.BookID(hrefs[0])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// GenresAndShelves returns the shelf names from the top-shelf listing
// followed by the genre tags, the combined tag surface used for report
// summaries.
func (e *Entity) GenresAndShelves(ctx context.Context) ([]string, error) {
	shelves, err := e.TopShelvesWithCount(ctx)
	if err != nil {
		return nil, err
	}
	combined := make([]string, 0, len(shelves)+len(e.meta.Genres))
	for _, shelf := range shelves {
		combined = append(combined, shelf.Name)
	}
	combined = append(combined, e.Genres()...)
	return combined, nil
}
