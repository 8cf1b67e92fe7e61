package validation

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/conduit-lang/fieldmeta/internal/locale"
	"github.com/conduit-lang/fieldmeta/internal/orm/coerce"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
)

// normalize converts a non-blank value to the canonical form of its class.
// A nil result without error means the value reduced to nothing
func (e *Engine) normalize(name, label string, desc *schema.Descriptor, value any) (any, *FieldError) {
	fail := func(kind Kind, key string, args ...any) (any, *FieldError) {
		err := NewFieldError(name, kind, e.locale.Translate(key, append([]any{label}, args...)...))
		return nil, &err
	}

	switch desc.Class {
	case schema.ClassID, schema.ClassInt:
		n, ok := e.parseInt(value)
		if !ok {
			return fail(KindTypeMismatch, locale.MsgNotNumber)
		}
		if desc.Class == schema.ClassID && n <= 0 {
			return fail(KindRangeViolation, locale.MsgNotPositive)
		}
		return n, nil

	case schema.ClassCents:
		f, ok := e.parseDecimal(value)
		if !ok {
			return fail(KindTypeMismatch, locale.MsgNotNumber)
		}
		cents := math.Round(f * 100)
		if cents > math.MaxInt64 || cents < math.MinInt64 {
			return fail(KindRangeViolation, locale.MsgNotNumber)
		}
		return int64(cents), nil

	case schema.ClassBool:
		b, ok := e.parseBool(value)
		if !ok {
			return fail(KindTypeMismatch, locale.MsgNotBoolean)
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil

	case schema.ClassText:
		return e.normalizeText(desc, value, fail)

	case schema.ClassDate:
		withTime := desc.HasFlag(schema.FlagDatetime)
		t, ok := e.parseDate(value, withTime)
		if !ok {
			return fail(KindFormatViolation, locale.MsgNotDate)
		}
		if withTime {
			return t.Format(locale.DateTimeLayout), nil
		}
		return t.Format(locale.DateLayout), nil

	case schema.ClassEnum:
		key, ok := coerce.String(value)
		if !ok || !desc.Items.Has(strings.TrimSpace(key)) {
			return fail(KindOptionViolation, locale.MsgNotOption)
		}
		return strings.TrimSpace(key), nil

	case schema.ClassSet:
		members, ok := coerce.Members(value)
		if !ok {
			return fail(KindOptionViolation, locale.MsgNotOption)
		}
		chosen := make(map[string]bool, len(members))
		for _, m := range members {
			if !desc.Items.Has(m) {
				return fail(KindOptionViolation, locale.MsgNotOption)
			}
			chosen[m] = true
		}
		var keys []string
		for _, key := range desc.Items.Keys() {
			if chosen[key] {
				keys = append(keys, key)
			}
		}
		if len(keys) == 0 {
			return nil, nil
		}
		return strings.Join(keys, ","), nil

	case schema.ClassFile:
		upload, ok := asUpload(value)
		if !ok {
			return fail(KindUploadError, locale.MsgUploadFailed)
		}
		switch {
		case upload.Error == schema.UploadErrTooLarge:
			return fail(KindUploadError, locale.MsgFileTooLarge)
		case upload.Error != schema.UploadErrNone:
			return fail(KindUploadError, locale.MsgUploadFailed)
		case desc.Width > 0 && upload.Size > int64(desc.Width):
			return fail(KindUploadError, locale.MsgFileTooLarge)
		}
		return upload, nil

	default:
		s, ok := coerce.String(value)
		if !ok {
			return fail(KindTypeMismatch, locale.MsgNotScalar)
		}
		return s, nil
	}
}

func (e *Engine) normalizeText(desc *schema.Descriptor, value any, fail func(Kind, string, ...any) (any, *FieldError)) (any, *FieldError) {
	s, ok := coerce.String(value)
	if !ok {
		return fail(KindTypeMismatch, locale.MsgNotScalar)
	}

	if desc.HasFlag(schema.FlagTextarea) {
		s = strings.TrimSpace(s)
	} else {
		s = strings.Join(strings.Fields(s), " ")
	}

	if desc.HasFlag(schema.FlagTel) {
		s = formatTel(s)
	}
	if desc.HasFlag(schema.FlagUppercase) {
		s = e.locale.Upper(s)
	} else if desc.HasFlag(schema.FlagUcfirst) {
		s = e.locale.Title(s)
	}

	if s == "" {
		return nil, nil
	}

	if err := (&MaxLengthValidator{MaxLength: desc.Width}).Validate(s); err != nil {
		return fail(KindRangeViolation, locale.MsgTooLong, desc.Width)
	}
	if desc.HasFlag(schema.FlagEmail) {
		if err := (&EmailValidator{}).Validate(s); err != nil {
			return fail(KindFormatViolation, locale.MsgNotEmail)
		}
	}
	if desc.HasFlag(schema.FlagURL) {
		if err := (&URLValidator{}).Validate(s); err != nil {
			return fail(KindFormatViolation, locale.MsgNotURL)
		}
	}
	return s, nil
}

// formatTel keeps the digits of a phone number, regrouped in blocks of
// three. A leading '+' survives
func formatTel(s string) string {
	var digits []rune
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return ""
	}

	var b strings.Builder
	if strings.HasPrefix(s, "+") {
		b.WriteByte('+')
	}
	for i, r := range digits {
		if i > 0 && i%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (e *Engine) parseInt(value any) (int64, bool) {
	if n, ok := coerce.Int64(value); ok {
		return n, true
	}
	s, ok := value.(string)
	if !ok {
		return 0, false
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	n, err := strconv.ParseInt(strings.TrimPrefix(s, "+"), 10, 64)
	return n, err == nil
}

func (e *Engine) parseDecimal(value any) (float64, bool) {
	if f, ok := coerce.Float64(value); ok {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	s, ok := value.(string)
	if !ok {
		return 0, false
	}
	f, err := e.locale.ParseDecimal(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (e *Engine) parseBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		return e.locale.ParseBool(v)
	}
	if n, ok := coerce.Int64(value); ok && (n == 0 || n == 1) {
		return n == 1, true
	}
	return false, false
}

func (e *Engine) parseDate(value any, withTime bool) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		if !withTime {
			return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC), true
		}
		return v, true
	case string:
		t, _, err := e.locale.ParseLocalDate(v, withTime)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

// isZeroDate reports the MySQL zero date, which stands for no date
func isZeroDate(s string) bool {
	s = strings.TrimSpace(s)
	return s == "0000-00-00" || s == "0000-00-00 00:00:00"
}

func asUpload(value any) (schema.Upload, bool) {
	switch v := value.(type) {
	case schema.Upload:
		return v, true
	case *schema.Upload:
		if v == nil {
			return schema.Upload{}, false
		}
		return *v, true
	default:
		return schema.Upload{}, false
	}
}
