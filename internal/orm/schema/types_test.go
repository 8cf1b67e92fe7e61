package schema

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClass_String(t *testing.T) {
	tests := []struct {
		class    Class
		expected string
	}{
		{ClassNone, "none"},
		{ClassID, "id"},
		{ClassInt, "int"},
		{ClassText, "text"},
		{ClassDate, "date"},
		{ClassCents, "cents"},
		{ClassBool, "bool"},
		{ClassEnum, "enum"},
		{ClassSet, "set"},
		{ClassFile, "file"},
		{Class(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.class.String())
			if tt.expected != "unknown" {
				parsed, err := ParseClass(tt.expected)
				require.NoError(t, err)
				assert.Equal(t, tt.class, parsed)
			}
		})
	}

	_, err := ParseClass("float")
	assert.Error(t, err)
}

func TestFlag_Has(t *testing.T) {
	f := FlagAsIs | FlagDatetime

	assert.True(t, f.Has(FlagAsIs))
	assert.True(t, f.Has(FlagDatetime))
	assert.True(t, f.Has(FlagAsIs|FlagDatetime))
	assert.False(t, f.Has(FlagAbbr))
	assert.False(t, f.Has(FlagAsIs|FlagAbbr))
	assert.False(t, f.Has(0))
	assert.Equal(t, "asis|datetime", f.String())
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags("textarea", " UCFIRST ", "")
	require.NoError(t, err)
	assert.Equal(t, FlagTextarea|FlagUcfirst, f)

	_, err = ParseFlags("bogus")
	assert.Error(t, err)
}

func TestFlag_JSON(t *testing.T) {
	data, err := json.Marshal(FlagEmail | FlagRadio)
	require.NoError(t, err)
	assert.JSONEq(t, `["email","radio"]`, string(data))

	var f Flag
	require.NoError(t, json.Unmarshal([]byte(`["hide_decimal"]`), &f))
	assert.Equal(t, FlagHideDecimal, f)

	require.NoError(t, json.Unmarshal([]byte(`3`), &f))
	assert.Equal(t, FlagAsIs|FlagAbbr, f)

	assert.Error(t, json.Unmarshal([]byte(`["nope"]`), &f))
}

func TestItems(t *testing.T) {
	items := NewItems("b", "Bee", "a", "Ay")

	label, ok := items.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "Ay", label)
	assert.False(t, items.Has("c"))
	assert.Equal(t, []string{"b", "a"}, items.Keys())

	data, err := json.Marshal(items)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"Bee","a":"Ay"}`, string(data))

	var decoded Items
	require.NoError(t, json.Unmarshal([]byte(`{"z":"Zed","1":"one"}`), &decoded))
	assert.Equal(t, NewItems("z", "Zed", "1", "one"), decoded)

	require.NoError(t, json.Unmarshal([]byte(`["No","Yes"]`), &decoded))
	assert.Equal(t, BoolItems("No", "Yes"), decoded)
}

func TestMerge(t *testing.T) {
	base := &Descriptor{Class: ClassEnum, Label: "State", Width: 10, Items: NewItems("a", "A"), Flags: FlagAsIs}

	t.Run("nil override copies base", func(t *testing.T) {
		merged := Merge(base, nil)
		assert.Equal(t, base, merged)
		merged.Items[0].Label = "changed"
		assert.Equal(t, "A", base.Items[0].Label)
	})

	t.Run("override replaces set attributes", func(t *testing.T) {
		merged := Merge(base, &Descriptor{Flags: FlagRadio, ItemDelim: "<br>", Required: true})
		assert.Equal(t, ClassEnum, merged.Class)
		assert.Equal(t, FlagRadio, merged.Flags)
		assert.Equal(t, "<br>", merged.ItemDelim)
		assert.True(t, merged.Required)
		assert.Equal(t, "State", merged.Label)
		assert.False(t, base.Required)
	})

	t.Run("both nil", func(t *testing.T) {
		assert.Nil(t, Merge(nil, nil))
	})

	t.Run("alias is dropped", func(t *testing.T) {
		merged := Merge(&Descriptor{Alias: "x"}, nil)
		assert.False(t, merged.IsAlias())
	})
}

func TestDescriptor_Param(t *testing.T) {
	d := &Descriptor{Class: ClassText, Width: 20}

	v, ok := d.Param(ParamClass)
	assert.True(t, ok)
	assert.Equal(t, ClassText, v)

	v, ok = d.Param(ParamWidth)
	assert.True(t, ok)
	assert.Equal(t, 20, v)

	_, ok = d.Param(ParamLabel)
	assert.False(t, ok)

	_, ok = (*Descriptor)(nil).Param(ParamClass)
	assert.False(t, ok)
}
