package locale

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Canonical storage layouts for dates
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// FormatNumber formats n with the locale's thousands separator
func (l *Locale) FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	s = l.group(s)
	if neg {
		return "-" + s
	}
	return s
}

// FormatDecimal formats f with the given number of decimals using the
// locale's decimal separator, optionally grouping thousands
func (l *Locale) FormatDecimal(f float64, decimals int, grouping bool) string {
	s := strconv.FormatFloat(math.Abs(f), 'f', decimals, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	if grouping {
		intPart = l.group(intPart)
	}
	if frac != "" {
		intPart += l.DecimalSep + frac
	}
	if f < 0 && strings.Trim(s, "0.") != "" {
		return "-" + intPart
	}
	return intPart
}

func (l *Locale) group(digits string) string {
	if len(digits) <= 3 || l.GroupSep == "" {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(l.GroupSep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ParseDecimal parses a number typed in the locale's notation. Group
// separators and whitespace are ignored. A '.' is accepted as the decimal
// point when the locale uses another decimal separator and does not group
// with '.'
func (l *Locale) ParseDecimal(text string) (float64, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	if l.GroupSep != "" && strings.TrimSpace(l.GroupSep) != "" {
		s = strings.ReplaceAll(s, l.GroupSep, "")
	}
	if l.DecimalSep != "." {
		s = strings.ReplaceAll(s, l.DecimalSep, ".")
	}
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	if !decimalRe.MatchString(s) {
		return 0, fmt.Errorf("not a decimal number: %q", text)
	}
	return strconv.ParseFloat(s, 64)
}

// decimalRe is the only shape handed to ParseFloat, which alone would also
// take exponent and hex float notation
var decimalRe = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)$`)

// FormatDate formats t in the locale's date notation, with hours and
// minutes appended when withTime is set
func (l *Locale) FormatDate(t time.Time, withTime bool) string {
	var s string
	switch l.DateOrder {
	case OrderMDY:
		s = fmt.Sprintf("%02d%s%02d%s%04d", int(t.Month()), l.DateSep, t.Day(), l.DateSep, t.Year())
	case OrderYMD:
		s = fmt.Sprintf("%04d%s%02d%s%02d", t.Year(), l.DateSep, int(t.Month()), l.DateSep, t.Day())
	default:
		s = fmt.Sprintf("%02d%s%02d%s%04d", t.Day(), l.DateSep, int(t.Month()), l.DateSep, t.Year())
	}
	if withTime {
		s += t.Format(" 15:04")
	}
	return s
}

// FormatDateRFC formats t the way HTML date and datetime-local inputs
// expect their values
func (l *Locale) FormatDateRFC(t time.Time, withTime bool) string {
	if withTime {
		return t.Format("2006-01-02T15:04")
	}
	return t.Format(DateLayout)
}

// ParseLocalDate parses text as a date in either the canonical
// YYYY-MM-DD form or the locale's own order, followed by an optional
// HH:MM[:SS] time part when withTime is set. It reports whether a time
// part was present
func (l *Locale) ParseLocalDate(text string, withTime bool) (time.Time, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false, fmt.Errorf("empty date")
	}

	datePart, timePart := splitDateTime(text)
	y, m, d, err := l.parseDatePart(datePart)
	if err != nil {
		return time.Time{}, false, err
	}

	var hh, mm, ss int
	hasTime := timePart != ""
	if hasTime {
		if !withTime {
			return time.Time{}, false, fmt.Errorf("unexpected time part %q", timePart)
		}
		if hh, mm, ss, err = parseTimePart(timePart); err != nil {
			return time.Time{}, false, err
		}
	}

	t := time.Date(y, time.Month(m), d, hh, mm, ss, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false, fmt.Errorf("date %q out of range", datePart)
	}
	return t, hasTime, nil
}

func splitDateTime(text string) (string, string) {
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		return text[:i], strings.TrimSpace(text[i:])
	}
	// 2016-12-31T10:00
	if i := strings.IndexByte(text, 'T'); i == 10 {
		return text[:i], text[i+1:]
	}
	return text, ""
}

func (l *Locale) parseDatePart(s string) (y, m, d int, err error) {
	s = strings.TrimSuffix(s, ".")
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '.' || r == '-'
	})
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed date %q", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("malformed date %q", s)
		}
		nums[i] = n
	}

	switch {
	case len(parts[0]) == 4:
		y, m, d = nums[0], nums[1], nums[2]
	case l.DateOrder == OrderMDY:
		m, d, y = nums[0], nums[1], nums[2]
		y = expandYear(y, len(parts[2]))
	case l.DateOrder == OrderYMD:
		y, m, d = nums[0], nums[1], nums[2]
		y = expandYear(y, len(parts[0]))
	default:
		d, m, y = nums[0], nums[1], nums[2]
		y = expandYear(y, len(parts[2]))
	}

	if y == 0 || m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, 0, 0, fmt.Errorf("malformed date %q", s)
	}
	return y, m, d, nil
}

func expandYear(y, digits int) int {
	if digits > 2 {
		return y
	}
	if y < 70 {
		return 2000 + y
	}
	return 1900 + y
}

func parseTimePart(s string) (hh, mm, ss int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("malformed time %q", s)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("malformed time %q", s)
		}
		vals[i] = n
	}
	if vals[0] > 23 || vals[1] > 59 || vals[2] > 59 {
		return 0, 0, 0, fmt.Errorf("malformed time %q", s)
	}
	return vals[0], vals[1], vals[2], nil
}
