// Package history persists one summary row per analysis run so that
// annotation progress can be compared across runs.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Snapshot struct {
	RunID                  string
	Timestamp              time.Time
	FileCount              int
	CallCount              int
	ResolvedCount          int
	UnknownBindingCount    int
	CrossModuleCount       int
	DynamicExpressionCount int
	FunctionCount          int
	AvgCompleteness        float64
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db %q: %w", path, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save assigns the snapshot a run id and timestamp if missing and
// inserts it.
func (s *Store) Save(snap Snapshot) (Snapshot, error) {
	if snap.RunID == "" {
		snap.RunID = uuid.NewString()
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}

	_, err := s.db.Exec(`
INSERT INTO runs (
  run_id, ts_utc, file_count, call_count, resolved_count,
  unknown_binding_count, cross_module_count, dynamic_expression_count,
  function_count, avg_completeness
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.RunID,
		snap.Timestamp.Format(time.RFC3339),
		snap.FileCount,
		snap.CallCount,
		snap.ResolvedCount,
		snap.UnknownBindingCount,
		snap.CrossModuleCount,
		snap.DynamicExpressionCount,
		snap.FunctionCount,
		snap.AvgCompleteness,
	)
	if err != nil {
		return snap, fmt.Errorf("insert run snapshot: %w", err)
	}
	return snap, nil
}

// Recent returns up to limit snapshots, newest first.
func (s *Store) Recent(limit int) ([]Snapshot, error) {
	rows, err := s.db.Query(`
SELECT run_id, ts_utc, file_count, call_count, resolved_count,
       unknown_binding_count, cross_module_count, dynamic_expression_count,
       function_count, avg_completeness
FROM runs ORDER BY ts_utc DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var ts string
		if err := rows.Scan(
			&snap.RunID, &ts, &snap.FileCount, &snap.CallCount, &snap.ResolvedCount,
			&snap.UnknownBindingCount, &snap.CrossModuleCount, &snap.DynamicExpressionCount,
			&snap.FunctionCount, &snap.AvgCompleteness,
		); err != nil {
			return nil, err
		}
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			snap.Timestamp = parsed
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
