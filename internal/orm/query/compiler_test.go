package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goccy/go-json"

	"github.com/conduit-lang/fieldmeta/internal/locale"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
	"github.com/conduit-lang/fieldmeta/internal/orm/validation"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()

	reg := schema.NewRegistry()
	err := reg.RegisterPackage("queue", map[string]*schema.Descriptor{
		"id":      {Class: schema.ClassID},
		"qty":     {Class: schema.ClassInt},
		"price":   {Class: schema.ClassCents},
		"paid":    {Class: schema.ClassBool},
		"title":   {Class: schema.ClassText},
		"state":   {Class: schema.ClassEnum, Items: schema.NewItems("new", "New", "done", "Done")},
		"dow":     {Class: schema.ClassSet, Items: schema.NewItems("sat", "Saturday", "sun", "Sunday")},
		"queued":  {Class: schema.ClassDate},
		"started": {Class: schema.ClassDate, Flags: schema.FlagDatetime},
		"scan":    {Class: schema.ClassFile},
		"job":     {Alias: "id"},
	})
	require.NoError(t, err)
	return reg
}

func newTestCompiler(t *testing.T, tag string, opts ...Option) *Compiler {
	t.Helper()
	return NewCompiler(testRegistry(t), locale.Lookup(tag), opts...)
}

func TestAsSQLDate_RangeScenario(t *testing.T) {
	c := newTestCompiler(t, "en-GB")

	got, err := c.AsSQL("queued", "1/1/2016 - 31/12/2016", &schema.Descriptor{Class: schema.ClassDate})
	require.NoError(t, err)
	assert.Equal(t, "queued between'2016-01-01'and'2016-12-31'", got)
}

func TestAsSQLSet_MatchAllScenario(t *testing.T) {
	c := newTestCompiler(t, "en")

	got, err := c.AsSQLSet("dow", []string{"sat", "sun"}, true)
	require.NoError(t, err)
	assert.Equal(t, "(find_in_set('sat',dow)and find_in_set('sun',dow))", got)

	got, err = c.AsSQLSet("dow", []string{"sat", "sun"}, false)
	require.NoError(t, err)
	assert.Equal(t, "(find_in_set('sat',dow)or find_in_set('sun',dow))", got)

	got, err = c.AsSQLSet("dow", "sat", true)
	require.NoError(t, err)
	assert.Equal(t, "find_in_set('sat',dow)", got)
}

func TestAsSQL(t *testing.T) {
	c := newTestCompiler(t, "fr")

	tests := []struct {
		name     string
		field    string
		value    any
		expected string
	}{
		{"int", "qty", 5, "qty=5"},
		{"int string", "qty", " 42 ", "qty=42"},
		{"id alias", "job", "7", "job=7"},
		{"int empty", "qty", "", ""},
		{"int nil", "qty", nil, ""},
		{"cents decimal", "price", "12,5", "price=1250"},
		{"cents int amount", "price", 12, "price=1200"},
		{"cents float amount", "price", 12.5, "price=1250"},
		{"cents rounded", "price", "0,125", "price=13"},
		{"bool true", "paid", true, "paid"},
		{"bool false", "paid", 0, "not paid"},
		{"bool localized", "paid", "non", "not paid"},
		{"bool absent", "paid", nil, ""},
		{"text", "title", "x", "title='x'"},
		{"text escaped", "title", `it's \ here`, `title='it\'s \\ here'`},
		{"enum", "state", "done", "state='done'"},
		{"set single", "dow", "sun", "find_in_set('sun',dow)"},
		{"set any", "dow", "sat,sun", "(find_in_set('sat',dow)or find_in_set('sun',dow))"},
		{"date", "queued", "31/12/2016", "queued='2016-12-31'"},
		{"date canonical", "queued", "2016-12-31", "queued='2016-12-31'"},
		{"date greater", "queued", ">01/01/2016", "queued>'2016-01-01'"},
		{"date less or equal", "queued", "<= 2016-06-30", "queued<='2016-06-30'"},
		{"date zero", "queued", "0000-00-00", ""},
		{"date time value", "queued", time.Date(2016, 2, 3, 4, 5, 6, 0, time.UTC), "queued='2016-02-03'"},
		{"date open end", "queued", "01/01/2016 -", "queued>='2016-01-01'"},
		{"date open start", "queued", "- 31/12/2016", "queued<='2016-12-31'"},
		{"datetime range", "started", "01/01/2016 - 31/12/2016", "started between'2016-01-01 00:00:00'and'2016-12-31 23:59:59'"},
		{"datetime range with times", "started", "01/01/2016 08:00 - 01/01/2016 17:30", "started between'2016-01-01 08:00:00'and'2016-01-01 17:30:00'"},
		{"datetime day", "started", "31/12/2016", "started between'2016-12-31 00:00:00'and'2016-12-31 23:59:59'"},
		{"datetime exact", "started", "31/12/2016 10:15", "started='2016-12-31 10:15:00'"},
		{"datetime after day", "started", ">31/12/2016", "started>'2016-12-31 23:59:59'"},
		{"datetime before day", "started", "<31/12/2016", "started<'2016-12-31 00:00:00'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.AsSQL(tt.field, tt.value, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAsSQLCents_AgreesWithValidation(t *testing.T) {
	reg := testRegistry(t)
	loc := locale.Lookup("en")
	c := NewCompiler(reg, loc)
	v := validation.New(reg, loc)

	for _, value := range []any{"12", 12, 12.5, int64(7), json.Number("3.25"), "1,234.5"} {
		normalized, ferr := v.ValidateValue("price", nil, value)
		require.Nil(t, ferr, "%v", value)

		got, err := c.AsSQL("price", value, nil)
		require.NoError(t, err, "%v", value)
		assert.Equal(t, fmt.Sprintf("price=%d", normalized), got, "%v", value)
	}
}

func TestAsSQL_Malformed(t *testing.T) {
	c := newTestCompiler(t, "en")

	tests := []struct {
		name  string
		field string
		value any
	}{
		{"int text", "qty", "five"},
		{"int fraction", "qty", 1.5},
		{"int list", "qty", []int{1}},
		{"cents text", "price", "a lot"},
		{"cents hex float", "price", "0x1p4"},
		{"cents infinity", "price", "inf"},
		{"cents list", "price", []int{1}},
		{"bool token", "paid", "maybe"},
		{"text list", "title", []string{"a"}},
		{"set nested", "dow", []any{[]any{"x"}}},
		{"date text", "queued", "yesterday"},
		{"date bad range", "queued", "2016-01-01 - tomorrow"},
		{"date bare dash", "queued", "-"},
		{"date with time", "queued", "2016-01-01 10:00"},
		{"date list", "queued", []string{"2016-01-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.AsSQL(tt.field, tt.value, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Empty(t, got)
		})
	}
}

func TestAsSQL_Errors(t *testing.T) {
	c := newTestCompiler(t, "en")

	_, err := c.AsSQL("scan", "a.pdf", nil)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = c.AsSQL("nobody", "x", nil)
	assert.ErrorIs(t, err, ErrUnknownField)

	got, err := c.AsSQL("adhoc", "3", &schema.Descriptor{Class: schema.ClassInt})
	require.NoError(t, err)
	assert.Equal(t, "adhoc=3", got)

	_, err = c.AsSQLInt("qty; drop table x", 1)
	assert.ErrorIs(t, err, ErrIdentifier)

	got, err = c.AsSQLInt("t.qty", 1)
	require.NoError(t, err)
	assert.Equal(t, "t.qty=1", got)
}

func TestAsSQL_NoRegistry(t *testing.T) {
	c := NewCompiler(nil, nil)

	_, err := c.AsSQL("qty", 1, nil)
	assert.ErrorIs(t, err, ErrUnknownField)

	got, err := c.AsSQLDate("queued", "12/31/2016", false)
	require.NoError(t, err)
	assert.Equal(t, "queued='2016-12-31'", got)
}

func TestDialects(t *testing.T) {
	tests := []struct {
		dialect  Dialect
		text     string
		set      string
		quotedID string
	}{
		{MySQL, `title='it\'s'`, "find_in_set('a',dow)", "`we``ird`"},
		{SQLite, `title='it''s'`, "find_in_set('a',dow)", "\"we`ird\""},
		{Postgres, `title='it''s'`, "'a'=any(string_to_array(dow,','))", "\"we`ird\""},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			c := newTestCompiler(t, "en", WithDialect(tt.dialect))
			assert.Equal(t, tt.dialect, c.Dialect())

			got, err := c.AsSQLText("title", "it's")
			require.NoError(t, err)
			assert.Equal(t, tt.text, got)

			got, err = c.AsSQLSet("dow", "a", false)
			require.NoError(t, err)
			assert.Equal(t, tt.set, got)

			assert.Equal(t, tt.quotedID, tt.dialect.QuoteIdentifier("we`ird"))
		})
	}

	assert.Equal(t, `'a\nb\\'`, MySQL.QuoteLiteral("a\nb\\"))
}

func TestParseDialect(t *testing.T) {
	for name, expected := range map[string]Dialect{
		"":           MySQL,
		"MySQL":      MySQL,
		"postgres":   Postgres,
		"pgx":        Postgres,
		"sqlite3":    SQLite,
		" sqlite ":   SQLite,
		"postgresql": Postgres,
	} {
		d, err := ParseDialect(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, d, name)
	}

	_, err := ParseDialect("oracle")
	assert.Error(t, err)
}

func TestCondition_SQL(t *testing.T) {
	assert.Equal(t, "a>=1", (&Condition{Column: "a", Operator: OpGreaterThanOrEqual, Values: []string{"1"}}).SQL())
	assert.Equal(t, "a between1and2", (&Condition{Column: "a", Operator: OpBetween, Values: []string{"1", "2"}}).SQL())
	assert.Equal(t, "", (&Condition{Column: "a", Operator: OpEqual}).SQL())
	assert.Equal(t, "between", OpBetween.String())
	assert.Equal(t, "unknown", Operator(99).String())
}
