package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bookscout/internal/book"
	"bookscout/internal/logging"
	"bookscout/internal/reviews"
	"bookscout/internal/scores"
	"bookscout/internal/source"
)

// Options tune how the engine expands a seed user into candidates.
type Options struct {
	// ReviewPages is how many pages of each user's review listing to scan.
	ReviewPages int
	// LikedThreshold is the minimum seed rating for a book to be expanded
	// into its co-readers.
	LikedThreshold int
	// ReviewerMinRating is the minimum rating a book review must carry for
	// its author to count as a co-reader.
	ReviewerMinRating int
}

// Engine builds candidate book scores for a seed user by walking the
// reviews of people who liked the same books.
type Engine struct {
	src       source.Getter
	scanner   *reviews.Scanner
	snapshots *scores.SnapshotStore
	opts      Options
	logger    *slog.Logger
}

// NewEngine creates an Engine. snapshots may be nil to disable whole-run
// snapshotting.
func NewEngine(src source.Getter, snapshots *scores.SnapshotStore, opts Options, logger *slog.Logger) *Engine {
	return &Engine{
		src:       src,
		scanner:   reviews.NewScanner(src, logger),
		snapshots: snapshots,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "recommend"),
	}
}

// CandidateScores aggregates the scored books of every co-reader of the
// seed user's liked books, minus the books the seed already rated. When a
// snapshot exists for the seed it is returned as-is and no page is
// touched; delete the snapshot to force recomputation. A fresh result is
// snapshotted before being returned.
func (e *Engine) CandidateScores(ctx context.Context, userID int64) (*scores.BookScores, error) {
	if e.snapshots != nil {
		snapshot, found, err := e.snapshots.Load(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load snapshot for user %d: %w", userID, err)
		}
		if found {
			e.logger.Info("using snapshotted scores",
				logging.Int64(logging.FieldUserID, userID),
				logging.Int("books", snapshot.Len()))
			return snapshot, nil
		}
	}

	// The seed's own pages go stale the moment they rate another book, so
	// they are refetched every run. Co-readers' cached pages are kept;
	// their staleness is an accepted trade against refetching hundreds of
	// listings per run.
	for page := 1; page <= e.opts.ReviewPages; page++ {
		path := reviews.ReviewPagePath(userID, page)
		if err := e.src.Invalidate(path); err != nil {
			return nil, fmt.Errorf("invalidate %s: %w", path, err)
		}
	}

	own, err := e.scanner.UserBookScores(ctx, userID, 1, e.opts.ReviewPages)
	if err != nil {
		return nil, err
	}
	e.logger.Info("scanned seed user",
		logging.Int64(logging.FieldUserID, userID),
		logging.Int("books", own.Len()))

	accumulator := scores.New()
	for _, entry := range own.Entries() {
		if entry.Score.Average() < float64(e.opts.LikedThreshold) {
			e.logger.Debug("skipping book the seed did not like",
				logging.String(logging.FieldBookID, entry.BookID))
			continue
		}
		if err := e.expandBook(ctx, entry.BookID, accumulator); err != nil {
			return nil, err
		}
	}

	for _, id := range own.IDs() {
		accumulator.Delete(id)
	}

	if e.snapshots != nil {
		if err := e.snapshots.Save(ctx, userID, accumulator); err != nil {
			e.logger.Warn("failed to snapshot scores",
				logging.Int64(logging.FieldUserID, userID),
				logging.Error(err))
		}
	}
	return accumulator, nil
}

// expandBook folds the review scores of everyone who liked one book into
// the accumulator. A co-reader whose listing cannot be fetched or parsed
// is skipped; a seed book that cannot be loaded fails the run, since
// losing it would drop every one of its co-reader contributions. An
// expired session aborts the whole run.
func (e *Engine) expandBook(ctx context.Context, bookID string, accumulator *scores.BookScores) error {
	entity, err := book.New(ctx, bookID, e.src, e.logger)
	if err != nil {
		return fmt.Errorf("expand book %s: %w", bookID, err)
	}

	coReaders := entity.ReviewersWhoLiked(e.opts.ReviewerMinRating)
	e.logger.Debug("expanding liked book",
		logging.String(logging.FieldBookID, bookID),
		logging.Int("co_readers", len(coReaders)))

	for _, coReader := range coReaders {
		batch, err := e.scanner.UserBookScores(ctx, coReader, 1, e.opts.ReviewPages)
		if err != nil {
			if errors.Is(err, reviews.ErrSessionExpired) {
				return err
			}
			e.logger.Warn("skipping co-reader",
				logging.Int64(logging.FieldUserID, coReader),
				logging.Error(err))
			continue
		}
		e.logger.Debug("merged co-reader reviews",
			logging.Int64(logging.FieldUserID, coReader),
			logging.Int("books", batch.Len()))
		accumulator.Merge(batch)
	}
	return nil
}

// Recommendations runs the aggregation for the seed user and ranks the
// candidates: entries below minAvgRating are dropped, the rest sort by
// review count descending.
func (e *Engine) Recommendations(ctx context.Context, userID int64, minAvgRating float64) ([]scores.Entry, error) {
	candidates, err := e.CandidateScores(ctx, userID)
	if err != nil {
		return nil, err
	}
	return candidates.Ranked(minAvgRating), nil
}
