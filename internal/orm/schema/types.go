// Package schema defines field descriptors, the metadata that drives
// validation, HTML rendering and SQL predicate generation for a field, and
// the registry that holds them
package schema

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Class is the semantic type of a field's value
type Class int

const (
	// ClassNone means the class is unspecified
	ClassNone Class = iota
	ClassID
	ClassInt
	ClassText
	ClassDate
	ClassCents
	ClassBool
	ClassEnum
	ClassSet
	ClassFile
)

// String returns the string representation of the class
func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassID:
		return "id"
	case ClassInt:
		return "int"
	case ClassText:
		return "text"
	case ClassDate:
		return "date"
	case ClassCents:
		return "cents"
	case ClassBool:
		return "bool"
	case ClassEnum:
		return "enum"
	case ClassSet:
		return "set"
	case ClassFile:
		return "file"
	default:
		return "unknown"
	}
}

// ParseClass converts a string to a Class
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ClassNone, nil
	case "id":
		return ClassID, nil
	case "int":
		return ClassInt, nil
	case "text":
		return ClassText, nil
	case "date":
		return ClassDate, nil
	case "cents":
		return ClassCents, nil
	case "bool":
		return ClassBool, nil
	case "enum":
		return ClassEnum, nil
	case "set":
		return ClassSet, nil
	case "file":
		return ClassFile, nil
	default:
		return ClassNone, fmt.Errorf("unknown field class: %s", s)
	}
}

// IsArithmetical reports whether values of the class are numbers
func (c Class) IsArithmetical() bool {
	return c == ClassInt || c == ClassCents
}

// IsDate reports whether values of the class are dates
func (c Class) IsDate() bool {
	return c == ClassDate
}

// IsTextual reports whether values of the class are free text
func (c Class) IsTextual() bool {
	return c == ClassText
}

// MarshalText implements encoding.TextMarshaler
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Class) UnmarshalText(text []byte) error {
	parsed, err := ParseClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (c *Class) UnmarshalYAML(value *yaml.Node) error {
	return c.UnmarshalText([]byte(value.Value))
}

// Flag is a bit set selecting variant behaviors within a class
type Flag uint32

const (
	FlagAsIs Flag = 1 << iota
	FlagAbbr
	FlagTextarea
	FlagPassword
	FlagEmail
	FlagURL
	FlagTel
	FlagUcfirst
	FlagUppercase
	FlagDatetime
	FlagRadio
	FlagHideDecimal
	FlagShowCompact
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagAsIs, "asis"},
	{FlagAbbr, "abbr"},
	{FlagTextarea, "textarea"},
	{FlagPassword, "password"},
	{FlagEmail, "email"},
	{FlagURL, "url"},
	{FlagTel, "tel"},
	{FlagUcfirst, "ucfirst"},
	{FlagUppercase, "uppercase"},
	{FlagDatetime, "datetime"},
	{FlagRadio, "radio"},
	{FlagHideDecimal, "hide_decimal"},
	{FlagShowCompact, "show_compact"},
}

// Has reports whether every bit of x is set in f
func (f Flag) Has(x Flag) bool {
	return x != 0 && f&x == x
}

// Names returns the names of the set flags in declaration order
func (f Flag) Names() []string {
	names := make([]string, 0)
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

// String returns the set flags joined by '|'
func (f Flag) String() string {
	return strings.Join(f.Names(), "|")
}

// ParseFlags converts flag names to a Flag
func ParseFlags(names ...string) (Flag, error) {
	var f Flag
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		found := false
		for _, fn := range flagNames {
			if fn.name == name {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown field flag: %s", name)
		}
	}
	return f, nil
}

// UnmarshalYAML accepts an integer, a list of names or a '|' separated string
func (f *Flag) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		parsed, err := ParseFlags(names...)
		if err != nil {
			return err
		}
		*f = parsed
		return nil
	case yaml.ScalarNode:
		var n uint32
		if err := value.Decode(&n); err == nil {
			*f = Flag(n)
			return nil
		}
		parsed, err := ParseFlags(strings.Split(value.Value, "|")...)
		if err != nil {
			return err
		}
		*f = parsed
		return nil
	default:
		return fmt.Errorf("line %d: flags must be a number or a list of names", value.Line)
	}
}

// MarshalJSON encodes the flags as a list of names
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Names())
}

// UnmarshalJSON accepts an integer or a list of names
func (f *Flag) UnmarshalJSON(data []byte) error {
	var n uint32
	if err := json.Unmarshal(data, &n); err == nil {
		*f = Flag(n)
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("flags must be a number or a list of names: %w", err)
	}
	parsed, err := ParseFlags(names...)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
