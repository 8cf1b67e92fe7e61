package lookup

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConvertDBError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), ErrNotFound},
		{"pg undefined table", &pgconn.PgError{Code: "42P01", Message: `relation "x" does not exist`}, ErrUndefinedTable},
		{"pg undefined column", &pgconn.PgError{Code: "42703", Message: `column "y" does not exist`}, ErrUndefinedColumn},
		{"pg syntax", &pgconn.PgError{Code: "42601", Message: "syntax error at or near"}, ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertDBError(tt.err)
			if tt.expected == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.expected)
		})
	}
}

func TestConvertDBError_PassThrough(t *testing.T) {
	other := errors.New("connection reset")
	assert.Equal(t, other, ConvertDBError(other))

	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key"}
	assert.Equal(t, error(pgErr), ConvertDBError(pgErr))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", ErrNotFound)))
	assert.False(t, IsNotFound(ErrSyntax))
}
