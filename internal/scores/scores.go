package scores

import "sort"

// Score aggregates the reviews one book received: the sum of its ratings
// and the number of contributing reviews. The zero value is the merge
// identity.
type Score struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// Average returns Total/Count, or 0 when no reviews contributed.
func (s Score) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Total / float64(s.Count)
}

func (s Score) add(other Score) Score {
	return Score{Total: s.Total + other.Total, Count: s.Count + other.Count}
}

// Entry pairs a book id with its aggregated score.
type Entry struct {
	BookID string
	Score  Score
}

// BookScores maps book ids to aggregated scores while preserving insertion
// order, so downstream sorting stays stable across runs. Not safe for
// concurrent use; the pipeline is single-threaded and any future
// parallelism must combine per-worker maps through Merge instead.
type BookScores struct {
	order   []string
	entries map[string]Score
}

// New returns an empty accumulator.
func New() *BookScores {
	return &BookScores{entries: make(map[string]Score)}
}

// Set inserts or replaces the score for a book id.
func (b *BookScores) Set(bookID string, score Score) {
	if _, exists := b.entries[bookID]; !exists {
		b.order = append(b.order, bookID)
	}
	b.entries[bookID] = score
}

// Add folds one score contribution into the book's aggregate.
func (b *BookScores) Add(bookID string, score Score) {
	if existing, exists := b.entries[bookID]; exists {
		b.entries[bookID] = existing.add(score)
		return
	}
	b.order = append(b.order, bookID)
	b.entries[bookID] = score
}

// Get returns the score for a book id.
func (b *BookScores) Get(bookID string) (Score, bool) {
	score, ok := b.entries[bookID]
	return score, ok
}

// Delete removes a book id if present.
func (b *BookScores) Delete(bookID string) {
	if _, exists := b.entries[bookID]; !exists {
		return
	}
	delete(b.entries, bookID)
	for i, id := range b.order {
		if id == bookID {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of books tracked.
func (b *BookScores) Len() int { return len(b.entries) }

// IDs returns the book ids in insertion order.
func (b *BookScores) IDs() []string {
	ids := make([]string, len(b.order))
	copy(ids, b.order)
	return ids
}

// Entries returns all entries in insertion order.
func (b *BookScores) Entries() []Entry {
	entries := make([]Entry, 0, len(b.order))
	for _, id := range b.order {
		entries = append(entries, Entry{BookID: id, Score: b.entries[id]})
	}
	return entries
}

// Merge folds another accumulator into this one. Elementwise sum per book;
// commutative and associative with the empty accumulator as identity, so
// per-batch contributions can be combined in any order.
func (b *BookScores) Merge(other *BookScores) {
	if other == nil {
		return
	}
	for _, entry := range other.Entries() {
		b.Add(entry.BookID, entry.Score)
	}
}

// Ranked returns the entries whose average rating clears the cutoff,
// sorted descending by review count. The sort is stable: ties keep
// insertion order, so identical accumulators always rank identically.
// Average rating is only the cutoff, not the sort key; popularity is
// deliberately favored so a single 5-star review cannot dominate.
func (b *BookScores) Ranked(minAvgRating float64) []Entry {
	ranked := make([]Entry, 0, len(b.order))
	for _, entry := range b.Entries() {
		if entry.Score.Count < 1 {
			continue
		}
		if entry.Score.Average() < minAvgRating {
			continue
		}
		ranked = append(ranked, entry)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Count > ranked[j].Score.Count
	})
	return ranked
}
