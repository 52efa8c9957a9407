package scores

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SnapshotStore persists whole BookScores accumulators per seed user,
// backed by SQLite. A stored snapshot is returned verbatim on load and is
// never invalidated transparently; callers delete it to force
// recomputation.
type SnapshotStore struct {
	db   *sql.DB
	path string
}

// OpenSnapshots initializes or connects to the snapshot database.
func OpenSnapshots(dbPath string) (*SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
            user_id INTEGER PRIMARY KEY,
            created_at TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS snapshot_scores (
            user_id INTEGER NOT NULL,
            position INTEGER NOT NULL,
            book_id TEXT NOT NULL,
            total_score REAL NOT NULL,
            review_count INTEGER NOT NULL,
            PRIMARY KEY (user_id, book_id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_scores_order
            ON snapshot_scores (user_id, position)`,
	}
	for _, stmt := range schema {
		if _, execErr := db.Exec(stmt); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", execErr)
		}
	}

	return &SnapshotStore{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *SnapshotStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save replaces the stored snapshot for a seed user, preserving the
// accumulator's insertion order.
func (s *SnapshotStore) Save(ctx context.Context, userID int64, book *BookScores) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_scores WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear snapshot rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (user_id, created_at) VALUES (?, ?)
         ON CONFLICT(user_id) DO UPDATE SET created_at = excluded.created_at`,
		userID, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_scores (user_id, position, book_id, total_score, review_count)
         VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for position, entry := range book.Entries() {
		if _, err := stmt.ExecContext(ctx, userID, position, entry.BookID, entry.Score.Total, entry.Score.Count); err != nil {
			return fmt.Errorf("insert snapshot row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot for a seed user. The boolean reports
// whether a snapshot exists; an existing empty snapshot is distinguishable
// from no snapshot at all.
func (s *SnapshotStore) Load(ctx context.Context, userID int64) (*BookScores, bool, error) {
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM snapshots WHERE user_id = ?`, userID).Scan(&createdAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT book_id, total_score, review_count
         FROM snapshot_scores WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, false, fmt.Errorf("query snapshot rows: %w", err)
	}
	defer rows.Close()

	book := New()
	for rows.Next() {
		var bookID string
		var total float64
		var count int
		if err := rows.Scan(&bookID, &total, &count); err != nil {
			return nil, false, fmt.Errorf("scan snapshot row: %w", err)
		}
		book.Set(bookID, Score{Total: total, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return book, true, nil
}

// Delete removes a seed user's snapshot so the next run recomputes.
func (s *SnapshotStore) Delete(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_scores WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete snapshot rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot delete: %w", err)
	}
	return nil
}
