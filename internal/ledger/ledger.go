package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	_ "github.com/mattn/go-sqlite3"

	"github.com/solongwallet/lottery/internal/lottery"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on transactions(kind, seq)
const currentSchemaVersion = 1

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrSignature       = errors.New("signature verification failed")
	ErrUnknownProgram  = errors.New("instruction targets an unknown program")
	ErrLamportsRange   = errors.New("lamports exceed storable range")
)

// Ledger hosts one deployment of the lottery program.
type Ledger struct {
	db        *sql.DB
	programID solana.PublicKey
	admin     solana.PublicKey
	clock     lottery.Clock
	logger    *slog.Logger

	resumeClock bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock read once per submitted transaction.
// Default: SystemClock.
func WithClock(c lottery.Clock) Option {
	return func(l *Ledger) {
		l.clock = c
	}
}

// WithLogicalClock uses a LogicalClock that resumes after the highest
// clock value already in the transaction log, so reopening a database never
// hands out a reading twice.
func WithLogicalClock() Option {
	return func(l *Ledger) {
		l.resumeClock = true
	}
}

// WithLogger sets the logger for transaction and program logs.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// Open creates or opens a ledger database at path for the program
// programID administered by admin. Pragmas and migrations are applied
// automatically; opening an existing database is safe.
func Open(path string, programID, admin solana.PublicKey, opts ...Option) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases alive for the ledger's lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	l := &Ledger{
		db:        db,
		programID: programID,
		admin:     admin,
		clock:     SystemClock{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.resumeClock {
		last, err := l.LastClock(context.Background())
		if err != nil {
			db.Close()
			return nil, err
		}
		l.clock = NewLogicalClockAt(last)
	}
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// ProgramID returns the id of the hosted program.
func (l *Ledger) ProgramID() solana.PublicKey {
	return l.programID
}

// Admin returns the administrator identity the program is configured with.
func (l *Ledger) Admin() solana.PublicKey {
	return l.admin
}

// withTx runs fn inside a SQL transaction and commits when fn succeeds.
func (l *Ledger) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 adds the (kind, seq) log index.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_kind
		ON transactions(kind, seq)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (l *Ledger) verifyPragma(name, expected string) error {
	var value string
	if err := l.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
