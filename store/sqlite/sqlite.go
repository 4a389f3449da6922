/*
Package sqlite provides a SQLite-backed implementation of schedule.TxStore.

PURPOSE:
  Persists users, availabilities, leave requests and shifts. Queries go
  through sqlx; the schema is managed by goose migrations embedded in the
  binary and applied on New().

KEY TABLES:
  users:          Employees, working hours, skill paths
  availabilities: One row per window; recurrence stored as JSON
  leave_requests: Requests and their approval state
  shifts:         Concrete shift assignments

INDEXES:
  - idx_unique_availability_start: one window per (user, day, start minute)
  - idx_unique_shift_start:        one shift per (user, day, start minute)
  Both surface as schedule.ErrConflict, the storage backstop for two
  submissions racing past validation.

TRANSACTIONS:
  The DSN sets _txlock=immediate, so WithTx takes SQLite's write lock at
  BEGIN. Reads made inside fn therefore see the state the write commits on.

TIME STORAGE:
  Instants are stored in UTC with a fixed-width layout so text comparison
  orders them. Calendar days are stored as YYYY-MM-DD. Loaded values are
  converted to the store's location (UTC unless WithLocation is given).

USAGE:
  store, err := sqlite.New("./data/workforce.db", sqlite.WithLogger(logger))
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - schedule/store.go: Interface definitions
  - schedule/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"github.com/warp/workforce-engine/schedule"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements schedule.TxStore using SQLite.
type Store struct {
	*repo
	db  *sqlx.DB
	mu  sync.Mutex
	log logrus.FieldLogger
}

type Option func(*Store)

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// WithLocation sets the zone loaded times are converted to.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.repo.loc = loc }
}

// New opens the database at dbPath and applies pending migrations.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{
		repo: &repo{q: db, loc: time.UTC},
		db:   db,
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Open opens the database without migrating it.
func Open(dbPath string) (*sqlx.DB, error) {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	db, err := sqlx.Open("sqlite3", dbPath+sep+"_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.HasPrefix(dbPath, ":memory:") {
		// every new connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate applies every pending migration.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(s.log)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// MigrationVersion returns the current schema version.
func (s *Store) MigrationVersion() (int64, error) {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(s.db.DB)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping is used by the health check.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// =============================================================================
// TRANSACTIONAL STORE (schedule.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store schedule.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&repo{q: tx, loc: s.repo.loc}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Helper functions

func isUniqueConstraintError(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) &&
		(serr.ExtendedCode == sqlite3.ErrConstraintUnique || serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

func isForeignKeyError(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
