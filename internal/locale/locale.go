// Package locale provides the number, date and message conventions of the
// languages fieldmeta renders and parses values for
package locale

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DateOrder is the order of day, month and year in a local date
type DateOrder int

const (
	OrderDMY DateOrder = iota
	OrderMDY
	OrderYMD
)

// String returns the string representation of the date order
func (o DateOrder) String() string {
	switch o {
	case OrderDMY:
		return "dmy"
	case OrderMDY:
		return "mdy"
	case OrderYMD:
		return "ymd"
	default:
		return "unknown"
	}
}

// Locale holds the formatting conventions of one language
type Locale struct {
	Tag           language.Tag
	DecimalSep    string
	GroupSep      string
	DateOrder     DateOrder
	DateSep       string
	ListDelimiter string

	printer *message.Printer
}

var supported = []language.Tag{
	language.English,
	language.BritishEnglish,
	language.French,
	language.German,
	language.Czech,
}

var matcher = language.NewMatcher(supported)

// Lookup returns the locale best matching tag. Unknown or malformed tags
// fall back to English
func Lookup(tag string) *Locale {
	t, err := language.Parse(tag)
	if err != nil {
		t = language.English
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		idx = 0
	}
	return New(supported[idx])
}

// New returns the locale preset for tag. Tags without a preset get the
// English conventions but keep their own tag for translations
func New(tag language.Tag) *Locale {
	l := &Locale{
		Tag:           tag,
		DecimalSep:    ".",
		GroupSep:      ",",
		DateOrder:     OrderMDY,
		DateSep:       "/",
		ListDelimiter: ", ",
	}

	switch tag {
	case language.BritishEnglish:
		l.DateOrder = OrderDMY
	case language.French:
		l.DecimalSep = ","
		l.GroupSep = " "
		l.DateOrder = OrderDMY
	case language.German:
		l.DecimalSep = ","
		l.GroupSep = "."
		l.DateOrder = OrderDMY
		l.DateSep = "."
	case language.Czech:
		l.DecimalSep = ","
		l.GroupSep = " "
		l.DateOrder = OrderDMY
		l.DateSep = "."
	}

	l.printer = message.NewPrinter(tag, message.Catalog(Catalog()))
	return l
}

// Translate looks key up in the message catalog and formats it with args.
// Keys without a translation are used as the format itself
func (l *Locale) Translate(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Yes returns the localized word for true
func (l *Locale) Yes() string {
	return l.Translate(MsgYes)
}

// No returns the localized word for false
func (l *Locale) No() string {
	return l.Translate(MsgNo)
}

// ParseBool recognizes the common boolean tokens and the localized yes/no
// words. The second result is false when token is not a boolean
func (l *Locale) ParseBool(token string) (value bool, ok bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	switch t {
	case "1", "true", "yes", "on", "y", "t":
		return true, true
	case "0", "false", "no", "off", "n", "f", "":
		return false, true
	}
	if t == strings.ToLower(l.Yes()) {
		return true, true
	}
	if t == strings.ToLower(l.No()) {
		return false, true
	}
	return false, false
}

// Title upper-cases the first letter of every word and leaves the rest alone
func (l *Locale) Title(s string) string {
	return cases.Title(l.Tag, cases.NoLower).String(s)
}

// Upper upper-cases s using the rules of the locale's language
func (l *Locale) Upper(s string) string {
	return cases.Upper(l.Tag).String(s)
}
