// Package lookup runs filters compiled by the query package against a
// database
package lookup

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/conduit-lang/fieldmeta/internal/orm/query"
)

// sqliteDriver is go-sqlite3 with find_in_set available on every
// connection
const sqliteDriver = "sqlite3_fieldmeta"

var registerSQLite sync.Once

func registerSQLiteDriver() {
	registerSQLite.Do(func() {
		sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("find_in_set", findInSet, true)
			},
		})
	})
}

// findInSet mirrors MySQL: the 1-based position of needle in the comma
// separated haystack, 0 when absent
func findInSet(needle, haystack any) int64 {
	n, ok := sqliteText(needle)
	if !ok {
		return 0
	}
	h, ok := sqliteText(haystack)
	if !ok || h == "" {
		return 0
	}
	for i, member := range strings.Split(h, ",") {
		if member == n {
			return int64(i + 1)
		}
	}
	return 0
}

func sqliteText(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	case int64:
		return fmt.Sprint(s), true
	default:
		return "", false
	}
}

// Store runs lookups on one database
type Store struct {
	db      *sql.DB
	dialect query.Dialect
	logger  *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger queries are traced to
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New wraps an open database whose identifiers are quoted for dialect
func New(db *sql.DB, dialect query.Dialect, opts ...Option) *Store {
	if dialect == nil {
		dialect = query.MySQL
	}
	s := &Store{db: db, dialect: dialect, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to a database. driver is "pgx" (or "postgres") for
// PostgreSQL and "sqlite3" for SQLite
func Open(driver, dsn string, opts ...Option) (*Store, error) {
	var (
		name    string
		dialect query.Dialect
	)
	switch driver {
	case "pgx", "postgres", "postgresql":
		name, dialect = "pgx", query.Postgres
	case "sqlite3", "sqlite":
		registerSQLiteDriver()
		name, dialect = sqliteDriver, query.SQLite
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return New(db, dialect, opts...), nil
}

// DB returns the underlying database
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the dialect predicates run by the store must use
func (s *Store) Dialect() query.Dialect {
	return s.dialect
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return ConvertDBError(s.db.PingContext(ctx))
}

func withWhere(q, where string) string {
	if where == "" {
		return q
	}
	return q + " WHERE " + where
}

// Count returns the number of rows of table matching where. An empty
// where counts every row
func (s *Store) Count(ctx context.Context, table, where string) (int64, error) {
	q := withWhere("SELECT COUNT(*) FROM "+s.dialect.QuoteIdentifier(table), where)
	s.logger.Debug("count", zap.String("query", q))

	var n int64
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, ConvertDBError(err))
	}
	return n, nil
}

// IDs returns the idColumn values of the rows of table matching where, in
// ascending order
func (s *Store) IDs(ctx context.Context, table, idColumn, where string) ([]int64, error) {
	id := s.dialect.QuoteIdentifier(idColumn)
	q := withWhere("SELECT "+id+" FROM "+s.dialect.QuoteIdentifier(table), where) + " ORDER BY " + id
	s.logger.Debug("ids", zap.String("query", q))

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, ConvertDBError(err))
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", idColumn, ConvertDBError(err))
		}
		ids = append(ids, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, ConvertDBError(err))
	}
	return ids, nil
}

// Search compiles filters with c and returns the ids of the matching rows
func (s *Store) Search(ctx context.Context, c *query.Compiler, table, idColumn string, filters map[string]any) ([]int64, error) {
	if c.Dialect() != s.dialect {
		return nil, fmt.Errorf("compiler quotes for %s, database speaks %s", c.Dialect().Name(), s.dialect.Name())
	}
	where, err := c.Filter(filters)
	if err != nil {
		return nil, err
	}
	return s.IDs(ctx, table, idColumn, where)
}
