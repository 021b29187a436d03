// Package store handles SQLite persistence of crack attempts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/vigsolve/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// createdAtLayout is fixed width so that text order in SQL is time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a run id has no stored analysis.
var ErrNotFound = errors.New("analysis not found")

// Store wraps SQLite access for attempt history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			ciphertext_sha256 TEXT NOT NULL,
			letters INTEGER NOT NULL,
			ic REAL NOT NULL,
			key_length INTEGER NOT NULL,
			key TEXT NOT NULL,
			recovery TEXT NOT NULL,
			strategies TEXT NOT NULL,
			confidence REAL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS analysis_candidates (
			analysis_id INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			length INTEGER NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (analysis_id, rank)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ciphertext ON analyses(ciphertext_sha256);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAnalysis stores a crack attempt and its scored candidates. A run id
// and timestamp are assigned when missing; the stored record is returned.
func (s *Store) InsertAnalysis(ctx context.Context, rec model.AnalysisRecord) (model.AnalysisRecord, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	var conf sql.NullFloat64
	if rec.Confidence.Determined {
		conf = sql.NullFloat64{Float64: rec.Confidence.Percent, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.AnalysisRecord{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO analyses (run_id, created_at, ciphertext_sha256, letters, ic, key_length, key, recovery, strategies, confidence, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.CreatedAt.UTC().Format(createdAtLayout),
		rec.CiphertextHash,
		rec.Letters,
		rec.IC,
		rec.KeyLength,
		rec.Key,
		rec.Recovery,
		rec.Strategies,
		conf,
		rec.DurationMs,
	)
	if err != nil {
		return model.AnalysisRecord{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.AnalysisRecord{}, err
	}
	rec.ID = id

	if len(rec.Candidates) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO analysis_candidates (analysis_id, rank, length, score) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return model.AnalysisRecord{}, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, c := range rec.Candidates {
			if _, err = stmt.ExecContext(ctx, id, i, c.Length, c.Score); err != nil {
				return model.AnalysisRecord{}, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return model.AnalysisRecord{}, err
	}
	return rec, nil
}

const analysisColumns = `id, run_id, created_at, ciphertext_sha256, letters, ic, key_length, key, recovery, strategies, confidence, duration_ms`

// ListAnalyses returns the most recent attempts, newest first. limit <= 0 returns all.
func (s *Store) ListAnalyses(ctx context.Context, limit int) ([]model.AnalysisRecord, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	records, err := s.queryAnalyses(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := s.attachCandidates(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetAnalysis returns the attempt stored under runID.
func (s *Store) GetAnalysis(ctx context.Context, runID string) (model.AnalysisRecord, error) {
	records, err := s.queryAnalyses(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE run_id = ?`, runID)
	if err != nil {
		return model.AnalysisRecord{}, err
	}
	if len(records) == 0 {
		return model.AnalysisRecord{}, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err := s.attachCandidates(ctx, records); err != nil {
		return model.AnalysisRecord{}, err
	}
	return records[0], nil
}

func (s *Store) queryAnalyses(ctx context.Context, query string, args ...any) ([]model.AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.AnalysisRecord
	for rows.Next() {
		var rec model.AnalysisRecord
		var createdAt string
		var conf sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.RunID, &createdAt, &rec.CiphertextHash, &rec.Letters, &rec.IC,
			&rec.KeyLength, &rec.Key, &rec.Recovery, &rec.Strategies, &conf, &rec.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		rec.CreatedAt = parsed
		if conf.Valid {
			rec.Confidence = model.Confidence{Percent: conf.Float64, Determined: true}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// attachCandidates loads the scored candidates of records in one query.
func (s *Store) attachCandidates(ctx context.Context, records []model.AnalysisRecord) error {
	if len(records) == 0 {
		return nil
	}
	placeholders := make([]string, len(records))
	args := make([]any, len(records))
	index := make(map[int64]int, len(records))
	for i, rec := range records {
		placeholders[i] = "?"
		args[i] = rec.ID
		index[rec.ID] = i
	}
	query := fmt.Sprintf(`SELECT analysis_id, length, score
		FROM analysis_candidates
		WHERE analysis_id IN (%s)
		ORDER BY analysis_id, rank`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var id int64
		var c model.Candidate
		if err := rows.Scan(&id, &c.Length, &c.Score); err != nil {
			return err
		}
		i := index[id]
		records[i].Candidates = append(records[i].Candidates, c)
	}
	return rows.Err()
}
