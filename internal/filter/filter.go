package filter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"bookscout/internal/book"
	"bookscout/internal/logging"
	"bookscout/internal/scores"
	"bookscout/internal/source"
)

// Predicate decides whether one book belongs in the final selection.
// Predicates are pure functions of the entity; they may fetch additional
// pages through the entity but hold no state of their own.
type Predicate func(ctx context.Context, e *book.Entity) (bool, error)

// EntityFactory builds a book entity for a candidate id. Swappable so
// tests can feed prebuilt entities without a document source.
type EntityFactory func(ctx context.Context, bookID string) (*book.Entity, error)

// Pipeline evaluates a predicate over ranked candidates and keeps the
// accepted ones, up to a cap.
type Pipeline struct {
	build  EntityFactory
	logger *slog.Logger
}

// NewPipeline creates a Pipeline that loads each candidate's detail page
// through src.
func NewPipeline(src source.Getter, logger *slog.Logger) *Pipeline {
	return NewPipelineWith(func(ctx context.Context, bookID string) (*book.Entity, error) {
		return book.New(ctx, bookID, src, logger)
	}, logger)
}

// NewPipelineWith creates a Pipeline around a custom entity factory.
func NewPipelineWith(build EntityFactory, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		build:  build,
		logger: logging.NewComponentLogger(logger, "filter"),
	}
}

// Apply walks ranked candidates in order, accepts those the predicate
// approves, and stops after maxResults acceptances. A candidate whose
// entity cannot be built or whose predicate evaluation fails is logged
// and skipped without counting against the cap. The returned entities
// preserve the input order.
func (p *Pipeline) Apply(ctx context.Context, ranked []scores.Entry, pred Predicate, maxResults int) ([]*book.Entity, error) {
	var accepted []*book.Entity
	for _, candidate := range ranked {
		if len(accepted) >= maxResults {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("filtering aborted: %w", err)
		}

		entity, err := p.build(ctx, candidate.BookID)
		if err != nil {
			p.logger.Warn("skipping candidate",
				logging.String(logging.FieldBookID, candidate.BookID),
				logging.Error(err))
			continue
		}
		ok, err := pred(ctx, entity)
		if err != nil {
			p.logger.Warn("skipping candidate",
				logging.String(logging.FieldBookID, candidate.BookID),
				logging.Error(err))
			continue
		}
		if ok {
			accepted = append(accepted, entity)
		}
	}
	return accepted, nil
}

// Strict accepts a book only when every required genre is present, no
// forbidden genre is, the average rating reaches minRating, and, when
// demanded, an audiobook edition exists. A minRating of 0 disables the
// rating check.
func Strict(required, forbidden []string, minRating float64, requireAudiobook bool) Predicate {
	return func(ctx context.Context, e *book.Entity) (bool, error) {
		genres := e.Genres()
		for _, genre := range required {
			if !slices.Contains(genres, genre) {
				return false, nil
			}
		}
		for _, genre := range forbidden {
			if slices.Contains(genres, genre) {
				return false, nil
			}
		}
		if e.Rating() < minRating {
			return false, nil
		}
		if requireAudiobook {
			return e.HasAudiobook(ctx)
		}
		return true, nil
	}
}

// Weighted scores a book by its top shelves: each shelf found in weights
// contributes weight*followerCount, and the sum is normalized by the
// total follower count of the matched shelves. Weights must lie in
// [-1, 1], so the normalized score does too; books below 0.5 are
// rejected, as are books whose matched shelves have no followers at all.
// The rating gate runs first and the audiobook check last, since shelf
// and edition listings cost extra fetches.
func Weighted(weights map[string]float64, minRating float64, requireAudiobook bool) Predicate {
	return func(ctx context.Context, e *book.Entity) (bool, error) {
		if e.Rating() < minRating {
			return false, nil
		}

		shelves, err := e.TopShelvesWithCount(ctx)
		if err != nil {
			return false, err
		}
		score := 0.0
		total := 0
		for _, shelf := range shelves {
			weight, ok := weights[shelf.Name]
			if !ok {
				continue
			}
			if weight < -1 || weight > 1 {
				return false, fmt.Errorf("shelf weight for %q out of range: %v", shelf.Name, weight)
			}
			score += weight * float64(shelf.Count)
			total += shelf.Count
		}
		fractional := 0.0
		if total > 0 {
			fractional = score / float64(total)
		}
		if fractional < 0.5 {
			return false, nil
		}

		if requireAudiobook {
			return e.HasAudiobook(ctx)
		}
		return true, nil
	}
}
