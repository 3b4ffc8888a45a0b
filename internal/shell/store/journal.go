package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// timestampLayout is fixed width so created_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Apply outcomes recorded in the journal.
const (
	StatusApplied  = "applied"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// =============================================================================
// Journal Types
// =============================================================================

// JournalEntry records the outcome of one generator apply.
type JournalEntry struct {
	ID                string        `json:"id"`
	CreatedAt         time.Time     `json:"created_at"`
	TargetDir         string        `json:"target_dir"`
	Module            string        `json:"module"`
	Application       string        `json:"application"`
	SubFolder         string        `json:"sub_folder,omitempty"`
	Status            string        `json:"status"`
	Error             string        `json:"error,omitempty"`
	PostApplyFailures []string      `json:"post_apply_failures,omitempty"`
	Duration          time.Duration `json:"duration"`
}

// journalRow represents a journal row in the database.
type journalRow struct {
	ID                string `db:"id"`
	CreatedAt         string `db:"created_at"`
	TargetDir         string `db:"target_dir"`
	Module            string `db:"module"`
	Application       string `db:"application"`
	SubFolder         string `db:"sub_folder"`
	Status            string `db:"status"`
	Error             string `db:"error"`
	PostApplyFailures string `db:"post_apply_failures"`
	DurationMS        int64  `db:"duration_ms"`
}

// =============================================================================
// SQLiteJournal
// =============================================================================

// SQLiteJournal stores journal entries in SQLite.
type SQLiteJournal struct {
	db *sqlx.DB
}

// NewSQLiteJournal opens the journal database and runs migrations.
func NewSQLiteJournal(dsn string) (*SQLiteJournal, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, NewStoreError("NewSQLiteJournal", "", "", "failed to open database", ErrConnectionFailed)
	}
	// One connection keeps ":memory:" databases alive and writes serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteJournal", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteJournal", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteJournal{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{NoTxWrap: true})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// =============================================================================
// Journal Operations
// =============================================================================

// Record stores an entry, assigning an ID and timestamp when missing.
func (j *SQLiteJournal) Record(ctx context.Context, e JournalEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	failures := e.PostApplyFailures
	if failures == nil {
		failures = []string{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return NewStoreError("Record", "journal", e.ID, "failed to marshal post-apply failures", ErrInvalidData)
	}

	_, err = j.db.NamedExecContext(ctx, `
		INSERT INTO apply_journal (
			id, created_at, target_dir, module, application, sub_folder,
			status, error, post_apply_failures, duration_ms
		) VALUES (
			:id, :created_at, :target_dir, :module, :application, :sub_folder,
			:status, :error, :post_apply_failures, :duration_ms
		)`, journalRow{
		ID:                e.ID,
		CreatedAt:         e.CreatedAt.UTC().Format(timestampLayout),
		TargetDir:         e.TargetDir,
		Module:            e.Module,
		Application:       e.Application,
		SubFolder:         e.SubFolder,
		Status:            e.Status,
		Error:             e.Error,
		PostApplyFailures: string(failuresJSON),
		DurationMS:        e.Duration.Milliseconds(),
	})
	if err != nil {
		return NewStoreError("Record", "journal", e.ID, err.Error(), ErrWriteFailed)
	}
	return nil
}

// Get returns the entry with the given ID.
func (j *SQLiteJournal) Get(ctx context.Context, id string) (*JournalEntry, error) {
	var row journalRow
	err := j.db.GetContext(ctx, &row, `SELECT * FROM apply_journal WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("Get", "journal", id, "entry not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("Get", "journal", id, err.Error(), ErrReadFailed)
	}
	return rowToEntry(row)
}

// List returns the most recent entries, newest first. A limit of 0 or less
// returns everything. An application filter of "" matches all.
func (j *SQLiteJournal) List(ctx context.Context, application string, limit int) ([]JournalEntry, error) {
	query := `SELECT * FROM apply_journal`
	args := []any{}
	if application != "" {
		query += ` WHERE application = ?`
		args = append(args, application)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []journalRow
	if err := j.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("List", "journal", "", err.Error(), ErrReadFailed)
	}

	entries := make([]JournalEntry, 0, len(rows))
	for _, row := range rows {
		e, err := rowToEntry(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

func rowToEntry(row journalRow) (*JournalEntry, error) {
	createdAt, err := time.Parse(timestampLayout, row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("rowToEntry", "journal", row.ID, "invalid created_at", ErrInvalidData)
	}
	var failures []string
	if err := json.Unmarshal([]byte(row.PostApplyFailures), &failures); err != nil {
		return nil, NewStoreError("rowToEntry", "journal", row.ID, "invalid post_apply_failures", ErrInvalidData)
	}
	if len(failures) == 0 {
		failures = nil
	}
	return &JournalEntry{
		ID:                row.ID,
		CreatedAt:         createdAt,
		TargetDir:         row.TargetDir,
		Module:            row.Module,
		Application:       row.Application,
		SubFolder:         row.SubFolder,
		Status:            row.Status,
		Error:             row.Error,
		PostApplyFailures: failures,
		Duration:          time.Duration(row.DurationMS) * time.Millisecond,
	}, nil
}
