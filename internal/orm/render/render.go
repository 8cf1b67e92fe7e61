// Package render turns field values into HTML, either as read-only text or
// as form controls. Rendering never fails: values that do not fit their
// field's class render as an empty string
package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/conduit-lang/fieldmeta/internal/locale"
	"github.com/conduit-lang/fieldmeta/internal/orm/coerce"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
	"github.com/conduit-lang/fieldmeta/internal/web/markup"
)

// Renderer renders values of the fields of a registry
type Renderer struct {
	registry *schema.Registry
	locale   *locale.Locale
}

// New creates a renderer formatting for loc. A nil locale means English
// and a nil registry makes every field ad hoc
func New(reg *schema.Registry, loc *locale.Locale) *Renderer {
	if loc == nil {
		loc = locale.Lookup("en")
	}
	return &Renderer{registry: reg, locale: loc}
}

// Locale returns the locale values are formatted for
func (r *Renderer) Locale() *locale.Locale {
	return r.locale
}

func (r *Renderer) describe(name string, override *schema.Descriptor) *schema.Descriptor {
	if r.registry != nil {
		if desc, ok := r.registry.Get(name, override); ok {
			return desc
		}
	}
	if override != nil {
		return schema.Merge(nil, override)
	}
	return &schema.Descriptor{}
}

// AsHTMLStatic renders value for display. Empty values render as an empty
// string whatever the class
func (r *Renderer) AsHTMLStatic(name string, value any, override *schema.Descriptor) string {
	if coerce.IsEmpty(value) {
		return ""
	}
	desc := r.describe(name, override)
	encode := !desc.HasFlag(schema.FlagAsIs)

	switch desc.Class {
	case schema.ClassText:
		s, ok := coerce.String(value)
		if !ok {
			return ""
		}
		if desc.HasFlag(schema.FlagTextarea) {
			return markup.EscapeNl(s)
		}
		return markup.Escape(s)

	case schema.ClassDate:
		t, ok := storedTime(value)
		if !ok {
			return ""
		}
		return markup.Escape(r.locale.FormatDate(t, desc.HasFlag(schema.FlagDatetime)))

	case schema.ClassEnum:
		return r.enumItem(value, desc, encode)

	case schema.ClassSet:
		members, ok := coerce.Members(value)
		if !ok {
			return ""
		}
		var parts []string
		for _, m := range members {
			if s := r.enumItem(m, desc, encode); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, r.locale.ListDelimiter)

	case schema.ClassID, schema.ClassInt:
		n, ok := storedInt(value)
		if !ok {
			return ""
		}
		return markup.Escape(r.locale.FormatNumber(n))

	case schema.ClassCents:
		cents, ok := storedInt(value)
		if !ok {
			return ""
		}
		return markup.Escape(r.formatCents(cents, desc.Flags))

	case schema.ClassBool:
		label := r.boolLabel(desc, coerce.Truthy(value))
		if encode {
			return markup.Escape(label)
		}
		return label

	case schema.ClassFile:
		var fileName string
		switch v := value.(type) {
		case schema.Upload:
			fileName = v.Name
		case *schema.Upload:
			if v != nil {
				fileName = v.Name
			}
		default:
			fileName, _ = coerce.String(value)
		}
		if encode {
			return markup.Escape(fileName)
		}
		return fileName

	default:
		s, ok := coerce.String(value)
		if !ok {
			return ""
		}
		return markup.Escape(s)
	}
}

// enumItem renders one option key, as an <abbr> pairing the short and long
// labels when the field asks for it
func (r *Renderer) enumItem(key any, desc *schema.Descriptor, encode bool) string {
	if !desc.HasFlag(schema.FlagAbbr) {
		return r.EnumToString(key, desc.Items, encode)
	}

	k, ok := coerce.String(key)
	if !ok {
		return ""
	}
	full, ok := desc.Items.Lookup(k)
	if !ok {
		return ""
	}
	short, ok := desc.ItemsShort.Lookup(k)
	if !ok {
		short = full
	}
	long, ok := desc.ItemsLong.Lookup(k)
	if !ok {
		long = full
	}

	content := markup.Text(short)
	if !encode {
		content = markup.Raw(short)
	}
	return markup.BuildTag("abbr", markup.Attrs{"title": long}, content)
}

// formatCents formats an amount in minor units as a decimal number
func (r *Renderer) formatCents(cents int64, flags schema.Flag) string {
	if flags.Has(schema.FlagHideDecimal) {
		return r.locale.FormatNumber(cents / 100)
	}
	s := r.locale.FormatDecimal(float64(cents)/100, 2, true)
	if flags.Has(schema.FlagShowCompact) && strings.HasSuffix(s, "0") {
		s = s[:len(s)-1]
	}
	return s
}

func (r *Renderer) boolLabel(desc *schema.Descriptor, value bool) string {
	if len(desc.Items) == 2 {
		if value {
			return desc.Items[1].Label
		}
		return desc.Items[0].Label
	}
	if value {
		return r.locale.Yes()
	}
	return r.locale.No()
}

// storedInt reads an integer as stored by the database or the validator
func storedInt(value any) (int64, bool) {
	if n, ok := coerce.Int64(value); ok {
		return n, true
	}
	s, ok := value.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil
}

var storedLayouts = []string{
	locale.DateTimeLayout,
	"2006-01-02 15:04",
	locale.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04",
}

// storedTime reads a date in one of the canonical layouts. The zero date
// is no date
func storedTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		if s == "" || strings.HasPrefix(s, "0000-00-00") {
			return time.Time{}, false
		}
		for _, layout := range storedLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
