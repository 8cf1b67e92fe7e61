package lookup

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a query matches no row
	ErrNotFound = errors.New("record not found")

	// ErrUndefinedTable is returned when the queried table does not exist
	ErrUndefinedTable = errors.New("undefined table")

	// ErrUndefinedColumn is returned when a predicate names a missing column
	ErrUndefinedColumn = errors.New("undefined column")

	// ErrSyntax is returned when the database rejects a compiled predicate
	ErrSyntax = errors.New("syntax error")
)

// ConvertDBError converts database-specific errors to lookup errors
func ConvertDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("%w: %s", ErrUndefinedTable, pgErr.Message)
		case "42703": // undefined_column
			return fmt.Errorf("%w: %s", ErrUndefinedColumn, pgErr.Message)
		case "42601": // syntax_error
			return fmt.Errorf("%w: %s", ErrSyntax, pgErr.Message)
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrError {
		msg := liteErr.Error()
		switch {
		case strings.Contains(msg, "no such table"):
			return fmt.Errorf("%w: %s", ErrUndefinedTable, msg)
		case strings.Contains(msg, "no such column"):
			return fmt.Errorf("%w: %s", ErrUndefinedColumn, msg)
		case strings.Contains(msg, "syntax error"):
			return fmt.Errorf("%w: %s", ErrSyntax, msg)
		}
	}

	return err
}

// IsNotFound returns true if the error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
