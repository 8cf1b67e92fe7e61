package validation

import (
	"math"

	"github.com/conduit-lang/fieldmeta/internal/locale"
	"github.com/conduit-lang/fieldmeta/internal/orm/coerce"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
)

var pct100 = &RangeValidator{Min: 0, Max: 100}

// Pct100 accepts numbers and numeric strings between 0 and 100. It has the
// shape of a schema.Callback
func Pct100(value any, label string, loc *locale.Locale) string {
	if loc == nil {
		loc = locale.Lookup("en")
	}

	f, ok := coerce.Float64(value)
	if !ok {
		s, isString := coerce.String(value)
		if !isString {
			return loc.Translate(locale.MsgNotPct100, label)
		}
		parsed, err := loc.ParseDecimal(s)
		if err != nil {
			return loc.Translate(locale.MsgNotPct100, label)
		}
		f = parsed
	}

	if math.IsNaN(f) {
		return loc.Translate(locale.MsgNotPct100, label)
	}
	if err := pct100.Check(f); err != nil {
		return loc.Translate(locale.MsgNotPct100, label)
	}
	return ""
}

// Callbacks returns the built-in callbacks package files may name in
// validate_callback
func Callbacks() map[string]schema.Callback {
	return map[string]schema.Callback{
		"pct100": Pct100,
	}
}
