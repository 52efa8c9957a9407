package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"bookscout/internal/logging"
	"bookscout/internal/scores"
	"bookscout/internal/source"
)

// ErrSessionExpired marks a review page that demanded a sign-in. The whole
// run must abort: every further page would come back useless, and caching
// sign-in pages would poison later runs.
var ErrSessionExpired = errors.New("session expired or not logged in")

// ratingLabels is the site's fixed wording for the five star levels. The
// match is exact and case-sensitive; rows with any other wording simply do
// not score.
var ratingLabels = map[string]int{
	"did not like it": 1,
	"it was ok":       2,
	"liked it":        3,
	"really liked it": 4,
	"it was amazing":  5,
}

// RatingFromLabel maps the site's textual rating to 1..5. Unrecognized
// labels report false rather than failing.
func RatingFromLabel(label string) (int, bool) {
	rating, ok := ratingLabels[label]
	return rating, ok
}

// ReviewPagePath returns the site-relative path of one page of a user's
// review listing. Exposed because the aggregation engine invalidates the
// seed user's pages by path before each run.
func ReviewPagePath(userID int64, page int) string {
	return fmt.Sprintf("review/list/%d?sort=rating&view=reviews&page=%d", userID, page)
}

// Scanner reads users' paginated review listings and turns them into
// per-book scores.
type Scanner struct {
	src    source.Getter
	logger *slog.Logger
}

// NewScanner creates a Scanner on top of a document source.
func NewScanner(src source.Getter, logger *slog.Logger) *Scanner {
	return &Scanner{
		src:    src,
		logger: logging.NewComponentLogger(logger, "reviews"),
	}
}

// UserBookScores scans the first pageCount pages of a user's review
// listing and returns one Score(rating, 1) per rated book at or above
// minRating. A private profile yields an empty result immediately; an
// expired session invalidates the offending page's cache entry and
// returns ErrSessionExpired. Duplicate book ids within one call keep the
// later occurrence; pages are disjoint in normal operation.
func (s *Scanner) UserBookScores(ctx context.Context, userID int64, minRating, pageCount int) (*scores.BookScores, error) {
	result := scores.New()

	for page := 1; page <= pageCount; page++ {
		path := ReviewPagePath(userID, page)
		doc, err := s.src.Get(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("load reviews of user %d: %w", userID, err)
		}

		// The sign-in error page also mentions signing in on private
		// profiles, so the private check has to come first.
		if doc.ElementByID("privateProfile") != nil {
			s.logger.Debug("profile is private",
				logging.Int64(logging.FieldUserID, userID))
			return scores.New(), nil
		}
		if strings.Contains(doc.MetaContent("description"), "Sign in") {
			if err := s.src.Invalidate(path); err != nil {
				s.logger.Warn("failed to invalidate stale session page",
					logging.String(logging.FieldPath, path),
					logging.Error(err))
			}
			return nil, fmt.Errorf("user %d page %d: %w", userID, page, ErrSessionExpired)
		}

		s.scanPage(doc, minRating, result)
	}

	return result, nil
}

func (s *Scanner) scanPage(doc *source.Document, minRating int, result *scores.BookScores) {
	for _, row := range doc.ElementsByClass("bookalike", "review") {
		rating, ok := rowRating(row)
		if !ok || rating < minRating {
			continue
		}
		hrefs := source.AnchorHrefs(row, "/book/show/")
		if len(hrefs) == 0 {
			continue
		}
		bookID := source.BookID(hrefs[0])
		if bookID == "" {
			continue
		}
		result.Set(bookID, scores.Score{Total: float64(rating), Count: 1})
	}
}

// rowRating extracts the human-readable rating label from one review row
// and maps it through the label table. Unrated rows and unknown labels
// report false.
func rowRating(row *html.Node) (int, bool) {
	ratingNode := source.FirstByClass(row, "rating")
	if ratingNode == nil {
		return 0, false
	}
	valueNode := source.FirstByClass(ratingNode, "value")
	if valueNode == nil {
		return 0, false
	}
	span := source.FindFirst(valueNode, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "span" && source.Attr(n, "title") != ""
	})
	if span == nil {
		return 0, false
	}
	return RatingFromLabel(source.Attr(span, "title"))
}
