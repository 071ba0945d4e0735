package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ins8ai/wer/internal/config"
)

// ErrLocked indicates another process currently holds the history write lock.
var ErrLocked = errors.New("history database is locked by another process")

// Run is one recorded scoring invocation.
type Run struct {
	ID              string
	CreatedAt       time.Time
	Model           string
	Dataset         string
	PredictionPath  string
	ReferencePath   string
	Lines           int
	Substitutions   int
	Deletions       int
	Insertions      int
	ReferenceTokens int
	WER             *float64 // nil when the reference had no tokens
	Normalized      bool
	RulesVersion    int
}

// Errors returns the total edit count for the run.
func (r Run) Errors() int {
	return r.Substitutions + r.Deletions + r.Insertions
}

// ListOptions filters List output. Zero values mean no filtering.
type ListOptions struct {
	Model   string
	Dataset string
	Limit   int
}

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the history database under the configured
// state directory and validates its schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureStateDir(); err != nil {
		return nil, fmt.Errorf("ensure state dir: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "history.db")
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

	store := &Store{
		db:   db,
		path: dbPath,
		lock: flock.New(filepath.Join(cfg.Paths.StateDir, "history.lock")),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	return s.path
}

// Record inserts a run and returns the stored copy. The ID and CreatedAt
// fields are assigned here; WER is computed from the counts and stays NULL
// when the reference had no tokens.
func (s *Store) Record(ctx context.Context, run Run) (*Run, error) {
	run.ID = uuid.NewString()
	run.CreatedAt = time.Now().UTC()
	run.Model = strings.TrimSpace(run.Model)
	run.Dataset = strings.TrimSpace(run.Dataset)
	run.WER = nil
	if run.ReferenceTokens > 0 {
		wer := float64(run.Errors()) / float64(run.ReferenceTokens)
		run.WER = &wer
	}

	err := s.withWriteLock(func() error {
		_, execErr := s.db.ExecContext(
			ctx,
			`INSERT INTO runs (
                id, created_at, model, dataset, prediction_path, reference_path,
                lines, substitutions, deletions, insertions, reference_tokens,
                wer, normalized, rules_version
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.CreatedAt.Format(time.RFC3339Nano),
			run.Model,
			run.Dataset,
			nullableString(run.PredictionPath),
			nullableString(run.ReferencePath),
			run.Lines,
			run.Substitutions,
			run.Deletions,
			run.Insertions,
			run.ReferenceTokens,
			nullableFloat(run.WER),
			boolToInt(run.Normalized),
			run.RulesVersion,
		)
		if execErr != nil {
			return fmt.Errorf("insert run: %w", execErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// List returns runs newest first, filtered and truncated per opts.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`

	var (
		clauses []string
		args    []any
	)
	if opts.Model != "" {
		clauses = append(clauses, "model = ?")
		args = append(args, opts.Model)
	}
	if opts.Dataset != "" {
		clauses = append(clauses, "dataset = ?")
		args = append(args, opts.Dataset)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Clear removes all recorded runs and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var affected int64
	err := s.withWriteLock(func() error {
		res, execErr := s.db.ExecContext(ctx, `DELETE FROM runs`)
		if execErr != nil {
			return fmt.Errorf("clear history: %w", execErr)
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	return affected, err
}

// withWriteLock serializes mutations across processes via the advisory lock
// file next to the database. A held lock is reported, not awaited.
func (s *Store) withWriteLock(fn func() error) error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire history lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn()
}

const runColumns = "id, created_at, model, dataset, prediction_path, reference_path, lines, substitutions, deletions, insertions, reference_tokens, wer, normalized, rules_version"

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run            Run
		createdRaw     string
		predictionPath sql.NullString
		referencePath  sql.NullString
		wer            sql.NullFloat64
		normalized     int
	)

	if err := scanner.Scan(
		&run.ID,
		&createdRaw,
		&run.Model,
		&run.Dataset,
		&predictionPath,
		&referencePath,
		&run.Lines,
		&run.Substitutions,
		&run.Deletions,
		&run.Insertions,
		&run.ReferenceTokens,
		&wer,
		&normalized,
		&run.RulesVersion,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.PredictionPath = predictionPath.String
	run.ReferencePath = referencePath.String
	if wer.Valid {
		v := wer.Float64
		run.WER = &v
	}
	run.Normalized = normalized != 0
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		run.CreatedAt = created
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
