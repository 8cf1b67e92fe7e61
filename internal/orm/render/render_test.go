package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/fieldmeta/internal/locale"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
	"github.com/conduit-lang/fieldmeta/internal/orm/validation"
	"github.com/conduit-lang/fieldmeta/internal/web/markup"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()

	reg := schema.NewRegistry()
	err := reg.RegisterPackage("shop", map[string]*schema.Descriptor{
		"name":  {Class: schema.ClassText, Width: 80, Label: "Name"},
		"note":  {Class: schema.ClassText, Flags: schema.FlagTextarea},
		"qty":   {Class: schema.ClassInt},
		"price": {Class: schema.ClassCents},
		"paid":  {Class: schema.ClassBool},
		"due":   {Class: schema.ClassDate},
		"state": {
			Class:      schema.ClassEnum,
			Items:      schema.NewItems("new", "New <draft>", "done", "Done"),
			ItemsShort: schema.NewItems("new", "N", "done", "D"),
			ItemsLong:  schema.NewItems("new", "Newly created", "done", "Finished"),
			ItemBlank:  "-",
		},
		"dow":    {Class: schema.ClassSet, Items: schema.NewItems("mon", "Monday", "sat", "Saturday", "sun", "Sunday")},
		"scan":   {Class: schema.ClassFile},
		"anchor": {Alias: "name"},
	})
	require.NoError(t, err)
	return reg
}

func TestAsHTMLStatic(t *testing.T) {
	r := New(testRegistry(t), locale.Lookup("en"))

	tests := []struct {
		name     string
		field    string
		value    any
		override *schema.Descriptor
		expected string
	}{
		{"text escaped", "name", "a < b & c", nil, "a &lt; b &amp; c"},
		{"text alias", "anchor", "x>y", nil, "x&gt;y"},
		{"textarea breaks", "note", "one\ntwo", nil, "one<br/>\ntwo"},
		{"int grouped", "qty", 1234567, nil, "1,234,567"},
		{"int from string", "qty", "42", nil, "42"},
		{"int garbage", "qty", "x", nil, ""},
		{"cents", "price", int64(123450), nil, "1,234.50"},
		{"cents hidden decimals", "price", 123456, &schema.Descriptor{Flags: schema.FlagHideDecimal}, "1,234"},
		{"cents compact", "price", 123450, &schema.Descriptor{Flags: schema.FlagShowCompact}, "1,234.5"},
		{"cents compact keeps non zero", "price", 123456, &schema.Descriptor{Flags: schema.FlagShowCompact}, "1,234.56"},
		{"bool true", "paid", int64(1), nil, "yes"},
		{"bool false", "paid", "0", nil, "no"},
		{"bool items", "paid", 1, &schema.Descriptor{Items: schema.BoolItems("Open", "Paid")}, "Paid"},
		{"date", "due", "2016-12-31", nil, "12/31/2016"},
		{"datetime", "due", "2016-12-31 10:30:00", &schema.Descriptor{Flags: schema.FlagDatetime}, "12/31/2016 10:30"},
		{"date from time", "due", time.Date(2016, 1, 2, 0, 0, 0, 0, time.UTC), nil, "01/02/2016"},
		{"zero date", "due", "0000-00-00", nil, ""},
		{"bad date", "due", "yesterday", nil, ""},
		{"enum escaped", "state", "new", nil, "New &lt;draft&gt;"},
		{"enum as is", "state", "new", &schema.Descriptor{Flags: schema.FlagAsIs}, "New <draft>"},
		{"enum unknown", "state", "gone", nil, ""},
		{"enum abbr", "state", "done", &schema.Descriptor{Flags: schema.FlagAbbr}, `<abbr title="Finished">D</abbr>`},
		{"set", "dow", "sat,sun", nil, "Saturday, Sunday"},
		{"set skips unknown", "dow", []string{"fri", "mon"}, nil, "Monday"},
		{"file", "scan", schema.Upload{Name: "a&b.pdf"}, nil, "a&amp;b.pdf"},
		{"file as is", "scan", "a&b.pdf", &schema.Descriptor{Flags: schema.FlagAsIs}, "a&b.pdf"},
		{"unknown class", "misc", "<i>", nil, "&lt;i&gt;"},
		{"nil", "qty", nil, nil, ""},
		{"empty", "paid", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.AsHTMLStatic(tt.field, tt.value, tt.override))
		})
	}
}

func TestAsHTMLStatic_FrenchCompactCents(t *testing.T) {
	r := New(nil, locale.Lookup("fr"))

	got := r.AsHTMLStatic("price", 123450, &schema.Descriptor{Class: schema.ClassCents, Flags: schema.FlagShowCompact})
	assert.Equal(t, "1 234,5", got)
}

func TestAsHTMLStatic_ValidatedValuesAreEscaped(t *testing.T) {
	reg := testRegistry(t)
	engine := validation.New(reg, nil)
	r := New(reg, nil)

	raw := map[string]any{
		"name":  "<script>alert('x')</script> & co",
		"note":  "<b>\nbold</b>",
		"qty":   "12",
		"price": "3.5",
		"paid":  "yes",
		"due":   "12/31/2016",
		"state": "new",
		"dow":   "sat,mon",
	}
	fields := make(map[string]*schema.Descriptor, len(raw))
	for name := range raw {
		fields[name] = nil
	}

	result := engine.Validate(fields, raw)
	require.True(t, result.Valid(), result.Messages())

	for name, value := range result.Values {
		out := r.AsHTMLStatic(name, value, nil)
		stripped := strings.ReplaceAll(out, "<br/>", "")
		assert.NotContains(t, stripped, "<", name)
		assert.NotContains(t, stripped, ">", name)
		assert.NotContains(t, strings.ReplaceAll(stripped, "&amp;", ""), "& ", name)
	}
}

func TestEnumAndSetToString(t *testing.T) {
	r := New(nil, locale.Lookup("fr"))
	items := schema.NewItems("a", "A & B", "c", "C")

	assert.Equal(t, "A &amp; B", r.EnumToString("a", items, true))
	assert.Equal(t, "A & B", r.EnumToString("a", items, false))
	assert.Equal(t, "", r.EnumToString("z", items, true))
	assert.Equal(t, "", r.EnumToString("a", nil, true))
	assert.Equal(t, "", r.EnumToString([]int{1}, items, true))

	assert.Equal(t, "C, A &amp; B", r.SetToString("c,z,a", items, true))
	assert.Equal(t, "A & B", r.SetToString([]any{"a"}, items, false))
	assert.Equal(t, "", r.SetToString(nil, items, true))
}

func TestAsHTMLInput(t *testing.T) {
	r := New(testRegistry(t), locale.Lookup("en"))

	tests := []struct {
		name     string
		field    string
		value    any
		attrs    markup.Attrs
		override *schema.Descriptor
		expected string
	}{
		{
			"text", "name", "abc", markup.Attrs{"id": "f1"}, nil,
			`<input type="text" name="name" value="abc" id="f1" maxlength="80" size="60"/>`,
		},
		{
			"password has no value", "name", "secret", nil, &schema.Descriptor{Flags: schema.FlagPassword, Width: 20},
			`<input type="password" name="name" maxlength="20" size="20"/>`,
		},
		{
			"email", "name", "a@b.c", nil, &schema.Descriptor{Flags: schema.FlagEmail},
			`<input type="email" name="name" value="a@b.c" maxlength="80" size="60"/>`,
		},
		{
			"textarea", "note", "a < b", nil, nil,
			`<textarea name="note">a &lt; b</textarea>`,
		},
		{
			"int", "qty", 5, nil, nil,
			`<input type="number" name="qty" value="5"/>`,
		},
		{
			"cents", "price", 1250, nil, nil,
			`<input type="number" name="price" value="12.50" step="0.01"/>`,
		},
		{
			"date text", "due", "2016-12-31", nil, nil,
			`<input type="text" name="due" value="12/31/2016"/>`,
		},
		{
			"date native", "due", "2016-12-31", markup.Attrs{"type": "date"}, nil,
			`<input type="date" name="due" value="2016-12-31"/>`,
		},
		{
			"file", "scan", nil, nil, nil,
			`<input type="file" name="scan"/>`,
		},
		{
			"unknown class", "misc", "x", nil, nil,
			`<input type="text" name="misc" value="x"/>`,
		},
		{
			"type override", "qty", 5, markup.Attrs{"type": "hidden"}, nil,
			`<input type="hidden" name="qty" value="5"/>`,
		},
		{
			"bool", "paid", 1, nil, nil,
			`<label><input type="checkbox" name="paid" value="1" checked="checked"/>yes</label>`,
		},
		{
			"bool unchecked with items", "paid", 0, nil, &schema.Descriptor{Items: schema.BoolItems("Open", "Paid")},
			`<label><input type="checkbox" name="paid" value="1"/>Paid</label>`,
		},
		{
			"select", "state", "done", nil, nil,
			`<select name="state"><option value="">-</option><option value="new">New &lt;draft&gt;</option>` +
				`<option value="done" selected="selected">Done</option></select>`,
		},
		{
			"radio", "state", "new", nil, &schema.Descriptor{Flags: schema.FlagRadio, ItemDelim: "<br/>"},
			`<label><input type="radio" name="state" value="new" checked="checked"/>New &lt;draft&gt;</label><br/>` +
				`<label><input type="radio" name="state" value="done"/>Done</label>`,
		},
		{
			"checkboxes", "dow", "sun", markup.Attrs{"id": "d"}, &schema.Descriptor{ItemDelim: " "},
			`<label><input type="checkbox" name="dow[mon]" value="1" id="d_mon"/>Monday</label> ` +
				`<label><input type="checkbox" name="dow[sat]" value="1" id="d_sat"/>Saturday</label> ` +
				`<label><input type="checkbox" name="dow[sun]" value="1" id="d_sun" checked="checked"/>Sunday</label>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.AsHTMLInput(tt.field, tt.value, tt.attrs, tt.override))
		})
	}
}

func TestAsHTMLInput_Localized(t *testing.T) {
	r := New(testRegistry(t), locale.Lookup("de"))

	assert.Equal(t, `<input type="text" name="due" value="31.12.2016"/>`, r.AsHTMLInput("due", "2016-12-31", nil, nil))
	assert.Equal(t, `<input type="number" name="price" value="12,50" step="0.01"/>`, r.AsHTMLInput("price", 1250, nil, nil))
	assert.Contains(t, r.AsHTMLInput("paid", 0, nil, nil), ">ja</label>")
}

func TestAsHTMLInput_ExplicitTypeWins(t *testing.T) {
	r := New(testRegistry(t), locale.Lookup("en"))

	radios := r.AsHTMLInput("state", "new", markup.Attrs{"type": "hidden"}, &schema.Descriptor{Flags: schema.FlagRadio})
	assert.Contains(t, radios, `<input type="hidden" name="state" value="new" checked="checked"/>`)
	assert.NotContains(t, radios, `type="radio"`)

	boxes := r.AsHTMLInput("dow", "sat", markup.Attrs{"type": "hidden"}, nil)
	assert.Contains(t, boxes, `<input type="hidden" name="dow[sat]" value="1" checked="checked"/>`)
	assert.NotContains(t, boxes, `type="checkbox"`)
}
