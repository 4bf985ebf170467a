// Package store handles SQLite persistence of the fit journal.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuinteract/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for fit records.
type Store struct {
	db *sql.DB
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
	store := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS fits (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			title TEXT NOT NULL,
			function TEXT NOT NULL,
			lo REAL NOT NULL,
			hi REAL NOT NULL,
			ssr REAL NOT NULL,
			points INTEGER NOT NULL,
			evaluations INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS fit_params (
			fit_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			value REAL NOT NULL,
			stderr REAL NOT NULL,
			PRIMARY KEY (fit_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fits_created_at ON fits(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_fits_function ON fits(function);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordFit stores a completed fit and its parameters.
func (s *Store) RecordFit(ctx context.Context, rec model.FitRecord) error {
	_, err := s.InsertFit(ctx, rec)
	return err
}

// InsertFit stores a completed fit and returns its row id.
func (s *Store) InsertFit(ctx context.Context, rec model.FitRecord) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO fits (session_id, title, function, lo, hi, ssr, points, evaluations, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID,
		rec.Title,
		rec.Function,
		rec.Lo,
		rec.Hi,
		rec.SSR,
		rec.Points,
		rec.Evaluations,
		createdAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(rec.Params) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO fit_params (fit_id, position, name, value, stderr) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, p := range rec.Params {
			if _, err := stmt.ExecContext(ctx, id, i, p.Name, p.Value, p.StdErr); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListFits returns fits filtered by cfg, newest last.
func (s *Store) ListFits(ctx context.Context, cfg model.HistoryConfig) ([]model.FitRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Function != "" {
		clauses = append(clauses, "function = ?")
		args = append(args, cfg.Function)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	limit := -1
	if cfg.Last > 0 {
		limit = cfg.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT id, session_id, title, function, lo, hi, ssr, points, evaluations, created_at
		FROM (
			SELECT * FROM fits
			WHERE %s
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)
		ORDER BY created_at ASC, id ASC`, strings.Join(clauses, " AND "))
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

	var (
		fits []model.FitRecord
		ids  []int64
	)
	for rows.Next() {
		var (
			rec       model.FitRecord
			id        int64
			createdAt string
		)
		if err := rows.Scan(&id, &rec.SessionID, &rec.Title, &rec.Function, &rec.Lo, &rec.Hi,
			&rec.SSR, &rec.Points, &rec.Evaluations, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, err
		}
		rec.CreatedAt = parsed
		fits = append(fits, rec)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	params, err := s.paramsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		fits[i].Params = params[id]
	}
	return fits, nil
}

func (s *Store) paramsFor(ctx context.Context, fitIDs []int64) (map[int64][]model.ParamValue, error) {
	result := map[int64][]model.ParamValue{}
	if len(fitIDs) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(fitIDs))
	args := make([]any, len(fitIDs))
	for i, id := range fitIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT fit_id, name, value, stderr
		FROM fit_params
		WHERE fit_id IN (%s)
		ORDER BY fit_id, position`, strings.Join(placeholders, ","))
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

	for rows.Next() {
		var (
			fitID int64
			p     model.ParamValue
		)
		if err := rows.Scan(&fitID, &p.Name, &p.Value, &p.StdErr); err != nil {
			return nil, err
		}
		result[fitID] = append(result[fitID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Summaries aggregates the journal per function.
func (s *Store) Summaries(ctx context.Context) ([]model.FitAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT function, COUNT(*), MIN(ssr), MAX(created_at)
		FROM fits
		GROUP BY function
		ORDER BY function`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.FitAggregate
	for rows.Next() {
		var (
			agg    model.FitAggregate
			lastAt string
		)
		if err := rows.Scan(&agg.Function, &agg.Fits, &agg.BestSSR, &lastAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, lastAt)
		if err != nil {
			return nil, err
		}
		agg.LastAt = parsed
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
