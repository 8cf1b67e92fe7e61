package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/fieldmeta/internal/locale"
	"github.com/conduit-lang/fieldmeta/internal/orm/query"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(db, query.MySQL), mock
}

func ticketRegistry(t *testing.T) *schema.Registry {
	t.Helper()

	reg := schema.NewRegistry()
	require.NoError(t, reg.RegisterPackage("tickets", map[string]*schema.Descriptor{
		"qty":    {Class: schema.ClassInt},
		"paid":   {Class: schema.ClassBool},
		"title":  {Class: schema.ClassText},
		"dow":    {Class: schema.ClassSet, Items: schema.NewItems("sat", "Saturday", "sun", "Sunday")},
		"queued": {Class: schema.ClassDate},
	}))
	return reg
}

func TestStore_Count(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT(*) FROM `tickets` WHERE qty=5").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT COUNT(*) FROM `tickets`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

	n, err := store.Count(context.Background(), "tickets", "qty=5")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = store.Count(context.Background(), "tickets", "")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_IDs(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT `id` FROM `tickets` WHERE paid ORDER BY `id`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(4))

	ids, err := store.IDs(context.Background(), "tickets", "id", "paid")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_IDsEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT `id` FROM `tickets` WHERE not paid ORDER BY `id`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := store.IDs(context.Background(), "tickets", "id", "not paid")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
}

func TestStore_QueryError(t *testing.T) {
	store, mock := newMockStore(t)

	boom := errors.New("connection lost")
	mock.ExpectQuery("SELECT COUNT(*) FROM `tickets`").WillReturnError(boom)

	_, err := store.Count(context.Background(), "tickets", "")
	assert.ErrorIs(t, err, boom)
}

func TestStore_Search(t *testing.T) {
	store, mock := newMockStore(t)
	c := query.NewCompiler(ticketRegistry(t), locale.Lookup("en"))

	mock.ExpectQuery("SELECT `id` FROM `tickets` WHERE paid and qty=2 ORDER BY `id`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	ids, err := store.Search(context.Background(), c, "tickets", "id", map[string]any{
		"qty":   "2",
		"paid":  "yes",
		"title": "",
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SearchRejectsBadFilters(t *testing.T) {
	store, mock := newMockStore(t)
	c := query.NewCompiler(ticketRegistry(t), nil)

	_, err := store.Search(context.Background(), c, "tickets", "id", map[string]any{"qty": "many"})
	assert.ErrorIs(t, err, query.ErrMalformed)

	_, err = store.Search(context.Background(), c, "tickets", "id", map[string]any{"owner": "me"})
	assert.ErrorIs(t, err, query.ErrUnknownField)

	pg := query.NewCompiler(ticketRegistry(t), nil, query.WithDialect(query.Postgres))
	_, err = store.Search(context.Background(), pg, "tickets", "id", nil)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "")
	assert.Error(t, err)
}

func openSQLite(t *testing.T) *Store {
	t.Helper()

	store, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	// every connection of an in-memory database is a fresh database
	store.DB().SetMaxOpenConns(1)
	require.NoError(t, store.Ping(context.Background()))

	_, err = store.DB().Exec(`CREATE TABLE tickets (
		id INTEGER PRIMARY KEY,
		qty INTEGER,
		paid INTEGER,
		title TEXT,
		dow TEXT,
		queued TEXT
	)`)
	require.NoError(t, err)

	_, err = store.DB().Exec(`INSERT INTO tickets (id, qty, paid, title, dow, queued) VALUES
		(1, 5, 1, 'it''s', 'sat', '2016-01-15'),
		(2, 5, 0, 'plain', 'sat,sun', '2016-06-30'),
		(3, 2, 1, 'plain', 'sun', '2017-01-01'),
		(4, 9, 0, NULL, NULL, NULL)`)
	require.NoError(t, err)

	return store
}

func TestSQLite_Search(t *testing.T) {
	store := openSQLite(t)
	assert.Equal(t, query.SQLite, store.Dialect())

	c := query.NewCompiler(ticketRegistry(t), locale.Lookup("en-GB"), query.WithDialect(query.SQLite))
	ctx := context.Background()

	tests := []struct {
		name     string
		filters  map[string]any
		expected []int64
	}{
		{"no filter", nil, []int64{1, 2, 3, 4}},
		{"int", map[string]any{"qty": 5}, []int64{1, 2}},
		{"bool", map[string]any{"paid": true}, []int64{1, 3}},
		{"bool false", map[string]any{"paid": "no"}, []int64{2, 4}},
		{"text with quote", map[string]any{"title": "it's"}, []int64{1}},
		{"set member", map[string]any{"dow": "sun"}, []int64{2, 3}},
		{"set any", map[string]any{"dow": []string{"sat", "sun"}}, []int64{1, 2, 3}},
		{"date range", map[string]any{"queued": "1/1/2016 - 31/12/2016"}, []int64{1, 2}},
		{"date after", map[string]any{"queued": ">30/06/2016"}, []int64{3}},
		{"combined", map[string]any{"qty": 5, "dow": "sun"}, []int64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := store.Search(ctx, c, "tickets", "id", tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestSQLite_MatchAllMembers(t *testing.T) {
	store := openSQLite(t)
	c := query.NewCompiler(ticketRegistry(t), nil, query.WithDialect(query.SQLite))

	where, err := c.AsSQLSet("dow", "sat,sun", true)
	require.NoError(t, err)

	n, err := store.Count(context.Background(), "tickets", where)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLite_Errors(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()

	_, err := store.Count(ctx, "missing", "")
	assert.ErrorIs(t, err, ErrUndefinedTable)

	_, err = store.Count(ctx, "tickets", "nope=1")
	assert.ErrorIs(t, err, ErrUndefinedColumn)

	_, err = store.IDs(ctx, "tickets", "id", "qty=")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestFindInSet(t *testing.T) {
	assert.Equal(t, int64(2), findInSet("b", "a,b,c"))
	assert.Equal(t, int64(0), findInSet("d", "a,b,c"))
	assert.Equal(t, int64(0), findInSet("a", nil))
	assert.Equal(t, int64(0), findInSet(nil, "a"))
	assert.Equal(t, int64(1), findInSet([]byte("a"), []byte("a")))
	assert.Equal(t, int64(0), findInSet("", ""))
}
