package query

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Dialect quotes values and builds the membership test for one SQL engine
type Dialect interface {
	Name() string
	// QuoteLiteral returns s as a string literal, quotes included
	QuoteLiteral(s string) string
	QuoteIdentifier(s string) string
	// FindInSet tests whether the comma separated column holds literal
	FindInSet(literal, column string) string
}

// ParseDialect returns the dialect called name
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mysql", "mariadb":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return nil, fmt.Errorf("unknown SQL dialect %q", name)
	}
}

var (
	// MySQL escapes with backslashes, as MySQL does by default
	MySQL Dialect = mysqlDialect{}
	// Postgres quotes through lib/pq
	Postgres Dialect = postgresDialect{}
	// SQLite doubles quotes and expects a find_in_set function to be
	// registered on the connection
	SQLite Dialect = sqliteDialect{}
)

type mysqlDialect struct{}

var mysqlEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) QuoteLiteral(s string) string {
	return "'" + mysqlEscaper.Replace(s) + "'"
}

func (mysqlDialect) QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func (mysqlDialect) FindInSet(literal, column string) string {
	return "find_in_set(" + literal + "," + column + ")"
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) QuoteLiteral(s string) string {
	return strings.TrimSpace(pq.QuoteLiteral(s))
}

func (postgresDialect) QuoteIdentifier(s string) string {
	return pq.QuoteIdentifier(s)
}

func (postgresDialect) FindInSet(literal, column string) string {
	return literal + "=any(string_to_array(" + column + ",','))"
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (sqliteDialect) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (sqliteDialect) FindInSet(literal, column string) string {
	return "find_in_set(" + literal + "," + column + ")"
}
