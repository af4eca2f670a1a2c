package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded evaluation. Kind is empty for successful runs.
type Run struct {
	ID         int64
	Program    string
	Digest     string
	Value      string
	Kind       string
	Diagnostic string
	Output     []string
	StartedAt  time.Time
	Duration   time.Duration
}

func (r Run) Succeeded() bool { return r.Kind == "" }

// Store persists runs through database/sql. The dialect follows the driver
// name: sqlite3, mysql or postgres.
type Store struct {
	DB     *sql.DB
	driver string
}

func Open(driver, dsn string) (*Store, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("unsupported history driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s history: %w", driver, err)
	}
	if driver == "sqlite3" {
		// a single writer avoids "database is locked" under concurrent lesson runs
		db.SetMaxOpenConns(1)
	}
	slog.Debug("history store opened", slog.String("driver", driver))
	return &Store{DB: db, driver: driver}, nil
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

var schemas = map[string][]string{
	"sqlite3": {
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			program TEXT NOT NULL,
			digest TEXT NOT NULL,
			value TEXT NOT NULL,
			kind TEXT NOT NULL,
			diagnostic TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_output (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			line TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
	},
	"mysql": {
		`CREATE TABLE IF NOT EXISTS runs (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			program VARCHAR(255) NOT NULL,
			digest CHAR(64) NOT NULL,
			value TEXT NOT NULL,
			kind VARCHAR(64) NOT NULL,
			diagnostic TEXT NOT NULL,
			started_at BIGINT NOT NULL,
			duration_ns BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_output (
			run_id BIGINT NOT NULL,
			seq INT NOT NULL,
			line TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
	},
	"postgres": {
		`CREATE TABLE IF NOT EXISTS runs (
			id BIGSERIAL PRIMARY KEY,
			program TEXT NOT NULL,
			digest TEXT NOT NULL,
			value TEXT NOT NULL,
			kind TEXT NOT NULL,
			diagnostic TEXT NOT NULL,
			started_at BIGINT NOT NULL,
			duration_ns BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_output (
			run_id BIGINT NOT NULL REFERENCES runs(id),
			seq INT NOT NULL,
			line TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
	},
}

func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemas[s.driver] {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate history: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Record stores run and its output lines in one transaction and returns the
// new run id.
func (s *Store) Record(ctx context.Context, run Run) (id int64, err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin history transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.Warn("history rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	insert := `INSERT INTO runs (program, digest, value, kind, diagnostic, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	args := []any{run.Program, run.Digest, run.Value, run.Kind, run.Diagnostic,
		run.StartedAt.UnixNano(), int64(run.Duration)}

	if s.driver == "postgres" {
		if err = tx.QueryRowContext(ctx, s.rebind(insert+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert run: %w", err)
		}
	} else {
		var res sql.Result
		if res, err = tx.ExecContext(ctx, insert, args...); err != nil {
			return 0, fmt.Errorf("insert run: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("insert run: %w", err)
		}
	}

	line := s.rebind(`INSERT INTO run_output (run_id, seq, line) VALUES (?, ?, ?)`)
	for i, text := range run.Output {
		if _, err = tx.ExecContext(ctx, line, id, i, text); err != nil {
			return 0, fmt.Errorf("insert output line %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit history transaction: %w", err)
	}
	slog.Debug("run recorded",
		slog.Int64("id", id),
		slog.String("program", run.Program),
		slog.String("kind", run.Kind),
	)
	return id, nil
}

// Recent returns up to limit runs, newest first, with their output.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.DB.QueryContext(ctx, s.rebind(
		`SELECT id, program, digest, value, kind, diagnostic, started_at, duration_ns
		FROM runs ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			startedAt int64
			duration  int64
		)
		if err := rows.Scan(&r.ID, &r.Program, &r.Digest, &r.Value, &r.Kind, &r.Diagnostic, &startedAt, &duration); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.Unix(0, startedAt)
		r.Duration = time.Duration(duration)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		if runs[i].Output, err = s.output(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) output(ctx context.Context, runID int64) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, s.rebind(
		`SELECT line FROM run_output WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("query output for run %d: %w", runID, err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("scan output for run %d: %w", runID, err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
