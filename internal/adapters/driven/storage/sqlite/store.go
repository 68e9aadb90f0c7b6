package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Byrix/bom-scrapper/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
)

// DatabaseName is the file created inside the state directory.
const DatabaseName = "history.db"

// Store is a SQLite-based run history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the history database inside stateDir and
// applies pending migrations.
func NewStore(stateDir string) (*Store, error) {
	if stateDir == "" {
		return nil, fmt.Errorf("%w: state directory is empty", domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, DatabaseName)

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion() (int, error) {
	var v int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save stores or updates a run together with its steps.
func (r *runStore) Save(ctx context.Context, run *domain.Run) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, strategy, project_dir, status, exit_code, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			strategy = excluded.strategy,
			project_dir = excluded.project_dir,
			status = excluded.status,
			exit_code = excluded.exit_code,
			error = excluded.error,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`,
		run.ID,
		string(run.Strategy),
		run.ProjectDir,
		string(run.Status),
		run.ExitCode,
		run.Error,
		toUnix(run.StartedAt),
		toUnix(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_steps WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("clearing steps: %w", err)
	}

	for i, step := range run.Steps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_steps (run_id, position, step, status, message, started_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID, i,
			string(step.Step), string(step.Status), step.Message,
			toUnix(step.StartedAt), toUnix(step.FinishedAt),
		)
		if err != nil {
			return fmt.Errorf("saving step %s: %w", step.Step, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a run by ID or unique ID prefix.
func (r *runStore) Get(ctx context.Context, id string) (*domain.Run, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, strategy, project_dir, status, exit_code, error, started_at, finished_at
		FROM runs
		WHERE id = ? OR substr(id, 1, length(?)) = ?
		ORDER BY (id = ?) DESC
		LIMIT 2
	`, id, id, id, id)
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	switch {
	case len(runs) == 0:
		return nil, domain.ErrNotFound
	case runs[0].ID == id:
		// exact match wins over prefix matches
	case len(runs) > 1:
		return nil, fmt.Errorf("%w: run id prefix %q is ambiguous", domain.ErrInvalidInput, id)
	}

	run := runs[0]
	if err := r.loadSteps(ctx, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns the newest runs first.
func (r *runStore) List(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, strategy, project_dir, status, exit_code, error, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	for i := range runs {
		if err := r.loadSteps(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Prune deletes all but the newest keep runs.
func (r *runStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, domain.ErrInvalidInput
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const stale = `SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT -1 OFFSET ?`

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_steps WHERE run_id IN ("+stale+")", keep); err != nil {
		return 0, fmt.Errorf("pruning steps: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id IN ("+stale+")", keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *runStore) loadSteps(ctx context.Context, run *domain.Run) error {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT step, status, message, started_at, finished_at
		FROM run_steps
		WHERE run_id = ?
		ORDER BY position
	`, run.ID)
	if err != nil {
		return fmt.Errorf("querying steps: %w", err)
	}
	defer rows.Close()

	run.Steps = nil
	for rows.Next() {
		var (
			res                   domain.StepResult
			step, status          string
			startedAt, finishedAt int64
		)
		if err := rows.Scan(&step, &status, &res.Message, &startedAt, &finishedAt); err != nil {
			return fmt.Errorf("scanning step: %w", err)
		}
		res.Step = domain.Step(step)
		res.Status = domain.StepStatus(status)
		res.StartedAt = fromUnix(startedAt)
		res.FinishedAt = fromUnix(finishedAt)
		run.Steps = append(run.Steps, res)
	}
	return rows.Err()
}

func scanRuns(rows *sql.Rows) ([]domain.Run, error) {
	defer rows.Close()

	var out []domain.Run
	for rows.Next() {
		var (
			run                   domain.Run
			strategy, status      string
			startedAt, finishedAt int64
		)
		if err := rows.Scan(
			&run.ID, &strategy, &run.ProjectDir, &status,
			&run.ExitCode, &run.Error, &startedAt, &finishedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Strategy = domain.Strategy(strategy)
		run.Status = domain.RunStatus(status)
		run.StartedAt = fromUnix(startedAt)
		run.FinishedAt = fromUnix(finishedAt)
		out = append(out, run)
	}
	return out, rows.Err()
}

// toUnix stores times as UTC nanoseconds so ORDER BY is chronological.
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
