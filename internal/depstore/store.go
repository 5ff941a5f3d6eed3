// Package depstore persists the dependency sets produced by the markup
// engine so incremental builds can find documents affected by a change.
package depstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/internal/markup"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var (
	ErrNoDatabase        = errors.New("depstore: store requires a database")
	ErrUnsupportedDriver = errors.New("depstore: unsupported driver")
	ErrEmptyDocument     = errors.New("depstore: document path is required")
)

// Store is a bun backed interfaces.DependencyStore.
type Store struct {
	db     *bun.DB
	logger interfaces.Logger
	now    func() time.Time
}

var _ interfaces.DependencyStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source used for recorded rows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New wraps an existing bun database.
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open selects the bun dialect for driver and wraps sqldb.
func Open(sqldb *sql.DB, driver string, opts ...Option) (*Store, error) {
	if sqldb == nil {
		return nil, ErrNoDatabase
	}
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", DriverSQLite:
		// shared cache memory databases lock tables across connections
		sqldb.SetMaxOpenConns(1)
		return New(bun.NewDB(sqldb, sqlitedialect.New()), opts...), nil
	case DriverPostgres, "pg", "pgx":
		return New(bun.NewDB(sqldb, pgdialect.New()), opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// DB exposes the underlying bun database.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Migrate creates the dependency table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if s.db == nil {
		return ErrNoDatabase
	}
	if _, err := s.db.NewCreateTable().Model((*dependencyModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("depstore: create table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*dependencyModel)(nil)).
		Index("document_dependencies_dependency_idx").
		IfNotExists().
		Column("dependency").
		Exec(ctx); err != nil {
		return fmt.Errorf("depstore: create index: %w", err)
	}
	return nil
}

// Record replaces the dependency set stored for document.
func (s *Store) Record(ctx context.Context, document string, dependencies []string) error {
	if s.db == nil {
		return ErrNoDatabase
	}
	document = markup.NormalizePath(document)
	if document == "" {
		return ErrEmptyDocument
	}

	set := markup.NewDependencySet()
	for _, dep := range dependencies {
		set.Add(dep)
	}
	deps := set.Snapshot()

	recordedAt := s.now().UTC()
	rows := make([]dependencyModel, 0, len(deps))
	for _, dep := range deps {
		rows = append(rows, dependencyModel{
			Document:   document,
			Dependency: dep,
			RecordedAt: recordedAt,
		})
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*dependencyModel)(nil)).
			Where("document = ?", document).
			Exec(ctx); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("depstore: record %s: %w", document, err)
	}

	s.logger.Debug("depstore.record", "document_path", document, "dependencies", len(rows))
	return nil
}

// Dependencies returns the sorted dependency set stored for document.
func (s *Store) Dependencies(ctx context.Context, document string) ([]string, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	var deps []string
	err := s.db.NewSelect().
		Model((*dependencyModel)(nil)).
		Column("dependency").
		Where("document = ?", markup.NormalizePath(document)).
		Order("dependency ASC").
		Scan(ctx, &deps)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("depstore: dependencies: %w", err)
	}
	if len(deps) == 0 {
		return nil, nil
	}
	return deps, nil
}

// Dependents lists the documents whose recorded dependencies include any of
// files, sorted and without duplicates.
func (s *Store) Dependents(ctx context.Context, files ...string) ([]string, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	targets := make([]string, 0, len(files))
	for _, file := range files {
		if normalized := markup.NormalizePath(file); normalized != "" {
			targets = append(targets, normalized)
		}
	}
	if len(targets) == 0 {
		return nil, nil
	}

	var docs []string
	err := s.db.NewSelect().
		Model((*dependencyModel)(nil)).
		Column("document").
		Where("dependency IN (?)", bun.In(targets)).
		Scan(ctx, &docs)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("depstore: dependents: %w", err)
	}
	return distinct(docs), nil
}

// Forget drops every dependency recorded for document.
func (s *Store) Forget(ctx context.Context, document string) error {
	if s.db == nil {
		return ErrNoDatabase
	}
	if _, err := s.db.NewDelete().
		Model((*dependencyModel)(nil)).
		Where("document = ?", markup.NormalizePath(document)).
		Exec(ctx); err != nil {
		return fmt.Errorf("depstore: forget: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type dependencyModel struct {
	bun.BaseModel `bun:"table:document_dependencies"`

	Document   string    `bun:"document,pk"`
	Dependency string    `bun:"dependency,pk"`
	RecordedAt time.Time `bun:"recorded_at,notnull"`
}

func distinct(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	sort.Strings(values)
	out := values[:1]
	for _, value := range values[1:] {
		if value != out[len(out)-1] {
			out = append(out, value)
		}
	}
	return out
}
