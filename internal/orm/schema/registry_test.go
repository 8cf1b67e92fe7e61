package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticketFields() map[string]*Descriptor {
	return map[string]*Descriptor{
		"tt_name":  {Class: ClassText, Width: 255, Label: "Name"},
		"tt_state": {Class: ClassEnum, Label: "State", LabelShort: "St.", Items: NewItems("new", "New", "done", "Done")},
		"queued":   {Class: ClassDate, Label: "Queued"},
	}
}

func TestRegistry_RegisterPackage(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.RegisterPackage("tickets", ticketFields()))

		d, ok := r.Get("tt_name", nil)
		require.True(t, ok)
		assert.Equal(t, ClassText, d.Class)
		assert.Equal(t, 255, d.Width)
		assert.Equal(t, []string{"queued", "tt_name", "tt_state"}, r.Names())
		assert.Equal(t, []string{"tickets"}, r.Packages())
	})

	t.Run("same package twice is rejected", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.RegisterPackage("tickets", ticketFields()))

		err := r.RegisterPackage("tickets", map[string]*Descriptor{
			"other": {Class: ClassInt},
		})
		assert.ErrorIs(t, err, ErrPackageRegistered)
		assert.False(t, r.Exists("other"))
		assert.Equal(t, 3, r.Count())
	})

	t.Run("field taken by another package", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.RegisterPackage("tickets", ticketFields()))

		err := r.RegisterPackage("extra", map[string]*Descriptor{
			"amount":  {Class: ClassCents},
			"tt_name": {Class: ClassInt},
		})
		assert.ErrorIs(t, err, ErrFieldRegistered)
		assert.False(t, r.Exists("amount"), "failed registration must not leave partial state")
		assert.Equal(t, []string{"tickets"}, r.Packages())

		// the package name is still free after a failed attempt
		require.NoError(t, r.RegisterPackage("extra", map[string]*Descriptor{"amount": {Class: ClassCents}}))
	})

	t.Run("invalid descriptors", func(t *testing.T) {
		tests := []struct {
			name   string
			fields map[string]*Descriptor
			err    error
		}{
			{"no class", map[string]*Descriptor{"a": {Label: "A"}}, ErrInvalidDescriptor},
			{"nil descriptor", map[string]*Descriptor{"a": nil}, ErrInvalidDescriptor},
			{"empty name", map[string]*Descriptor{"": {Class: ClassInt}}, ErrInvalidDescriptor},
			{"alias with attributes", map[string]*Descriptor{"a": {Alias: "b", Label: "A"}}, ErrInvalidDescriptor},
			{"self alias", map[string]*Descriptor{"a": {Alias: "a"}}, ErrAliasCycle},
			{"alias cycle", map[string]*Descriptor{"a": {Alias: "b"}, "b": {Alias: "a"}}, ErrAliasCycle},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := NewRegistry()
				err := r.RegisterPackage("p", tt.fields)
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, r.Packages())
			})
		}
	})

	t.Run("empty package name", func(t *testing.T) {
		assert.Error(t, NewRegistry().RegisterPackage("", ticketFields()))
	})

	t.Run("registered descriptor is copied", func(t *testing.T) {
		r := NewRegistry()
		fields := ticketFields()
		require.NoError(t, r.RegisterPackage("tickets", fields))

		fields["tt_name"].Width = 10
		d, _ := r.Get("tt_name", nil)
		assert.Equal(t, 255, d.Width)
	})
}

func TestRegistry_Aliases(t *testing.T) {
	t.Run("alias after target", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.RegisterPackage("tickets", ticketFields()))
		require.NoError(t, r.RegisterPackage("aliases", map[string]*Descriptor{
			"ticket_name": {Alias: "tt_name"},
		}))

		d, ok := r.Get("ticket_name", nil)
		require.True(t, ok)
		assert.Equal(t, ClassText, d.Class)
		assert.Empty(t, d.Alias)
	})

	t.Run("forward alias resolves when target registers", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.RegisterPackage("aliases", map[string]*Descriptor{
			"ticket_name": {Alias: "tt_name"},
		}))

		_, ok := r.Get("ticket_name", nil)
		assert.False(t, ok)
		assert.Equal(t, "", r.Label("ticket_name", LabelDefault, nil))
		assert.Equal(t, []string{"ticket_name"}, r.Pending())
		assert.Error(t, r.Verify())

		require.NoError(t, r.RegisterPackage("tickets", ticketFields()))

		label := r.Label("ticket_name", LabelDefault, nil)
		assert.Equal(t, "Name", label)
		assert.Empty(t, r.Pending())
		assert.NoError(t, r.Verify())
	})

	t.Run("chains resolve transitively in any order", func(t *testing.T) {
		orders := [][]string{{"a", "b", "c"}, {"c", "b", "a"}, {"b", "a", "c"}}
		packages := map[string]map[string]*Descriptor{
			"a": {"first": {Alias: "second"}},
			"b": {"second": {Alias: "target"}},
			"c": {"target": {Class: ClassInt, Label: "Target"}},
		}

		for _, order := range orders {
			r := NewRegistry()
			for _, pkg := range order {
				require.NoError(t, r.RegisterPackage(pkg, packages[pkg]))
			}
			assert.Equal(t, ClassInt, r.Class("first", nil), "order %v", order)
			assert.Equal(t, "Target", r.Label("first", LabelDefault, nil), "order %v", order)
		}
	})

	t.Run("cycle across packages is rejected", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.RegisterPackage("a", map[string]*Descriptor{"x": {Alias: "y"}}))
		err := r.RegisterPackage("b", map[string]*Descriptor{"y": {Alias: "x"}})
		assert.ErrorIs(t, err, ErrAliasCycle)
		assert.Equal(t, []string{"x"}, r.Pending())
	})

	t.Run("class is stable across unrelated registrations", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.RegisterPackage("tickets", ticketFields()))
		before := r.Class("tt_state", nil)

		require.NoError(t, r.RegisterPackage("more", map[string]*Descriptor{
			"price": {Class: ClassCents},
			"later": {Alias: "price"},
		}))
		assert.Equal(t, before, r.Class("tt_state", nil))
		assert.Equal(t, ClassEnum, before)
	})
}

func TestRegistry_Override(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterPackage("tickets", ticketFields()))

	t.Run("override wins per attribute", func(t *testing.T) {
		d, ok := r.Get("tt_name", &Descriptor{Flags: FlagUcfirst, Label: "Full name"})
		require.True(t, ok)
		assert.Equal(t, ClassText, d.Class)
		assert.Equal(t, 255, d.Width)
		assert.Equal(t, "Full name", d.Label)
		assert.True(t, d.HasFlag(FlagUcfirst))
	})

	t.Run("override does not mutate the registry", func(t *testing.T) {
		_, _ = r.Get("tt_name", &Descriptor{Width: 5})
		width, ok := r.Param("tt_name", ParamWidth, nil)
		require.True(t, ok)
		assert.Equal(t, 255, width)
	})

	t.Run("ad hoc descriptor for an unregistered name", func(t *testing.T) {
		d, ok := r.Get("adhoc", &Descriptor{Class: ClassInt})
		require.True(t, ok)
		assert.Equal(t, ClassInt, d.Class)
	})

	t.Run("alias override", func(t *testing.T) {
		d, ok := r.Get("anything", &Descriptor{Alias: "tt_state"})
		require.True(t, ok)
		assert.Equal(t, ClassEnum, d.Class)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, ok := r.Get("missing", nil)
		assert.False(t, ok)
		_, ok = r.Param("missing", ParamClass, nil)
		assert.False(t, ok)
		assert.Equal(t, ClassNone, r.Class("missing", nil))
		assert.Nil(t, r.List("missing", ItemsDefault, nil))
	})
}

func TestRegistry_LabelsAndLists(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterPackage("tickets", ticketFields()))

	assert.Equal(t, "St.", r.Label("tt_state", LabelShort, nil))
	assert.Equal(t, "State", r.Label("tt_state", LabelLong, nil), "long label falls back to label")
	assert.Equal(t, "Name", r.Label("tt_name", LabelShort, nil))
	assert.Equal(t, "Nom", r.Label("tt_name", LabelDefault, &Descriptor{Label: "Nom"}))

	assert.Equal(t, []string{"new", "done"}, r.List("tt_state", ItemsDefault, nil).Keys())
	assert.Nil(t, r.List("tt_state", ItemsShort, nil))
	assert.Equal(t, NewItems("x", "X"), r.List("tt_state", ItemsShort, &Descriptor{ItemsShort: NewItems("x", "X")}))
}

func TestRegistry_Introspection(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterPackage("p", map[string]*Descriptor{
		"qty":    {Class: ClassInt},
		"price":  {Class: ClassCents},
		"id":     {Class: ClassID},
		"queued": {Class: ClassDate},
		"note":   {Class: ClassText},
	}))

	assert.True(t, r.IsArithmetical("qty", nil))
	assert.True(t, r.IsArithmetical("price", nil))
	assert.False(t, r.IsArithmetical("id", nil))
	assert.True(t, r.IsDate("queued", nil))
	assert.False(t, r.IsDate("note", nil))
	assert.True(t, r.IsTextual("note", nil))
	assert.False(t, r.IsTextual("missing", nil))
	assert.True(t, r.IsTextual("qty", &Descriptor{Class: ClassText}))
}
