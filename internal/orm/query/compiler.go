package query

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/fieldmeta/internal/locale"
	"github.com/conduit-lang/fieldmeta/internal/orm/coerce"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
)

var (
	// ErrMalformed reports a filter value that does not fit its field's
	// class. Callers must surface it instead of dropping the predicate
	ErrMalformed = errors.New("malformed filter value")

	// ErrUnsupported reports a field class no predicate exists for
	ErrUnsupported = errors.New("class cannot be filtered")

	// ErrUnknownField reports a field neither registered nor described
	ErrUnknownField = errors.New("unknown field")

	// ErrIdentifier reports a field name unusable as a column name
	ErrIdentifier = errors.New("invalid column name")
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Compiler compiles filter values of registered fields. Every AsSQL method
// returns an empty predicate and a nil error when the value asks for no
// constraint
type Compiler struct {
	registry *schema.Registry
	locale   *locale.Locale
	dialect  Dialect
	logger   *zap.Logger
}

// Option configures a Compiler
type Option func(*Compiler)

// WithLogger sets the logger used to report malformed values
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDialect selects the SQL dialect literals are quoted for. The default
// is MySQL
func WithDialect(d Dialect) Option {
	return func(c *Compiler) {
		if d != nil {
			c.dialect = d
		}
	}
}

// NewCompiler creates a compiler parsing dates and numbers the way loc
// writes them. A nil locale means English
func NewCompiler(reg *schema.Registry, loc *locale.Locale, opts ...Option) *Compiler {
	if loc == nil {
		loc = locale.Lookup("en")
	}
	c := &Compiler{
		registry: reg,
		locale:   loc,
		dialect:  MySQL,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dialect returns the dialect literals are quoted for
func (c *Compiler) Dialect() Dialect {
	return c.dialect
}

func (c *Compiler) malformed(name string, value any, reason string) error {
	c.logger.Debug("malformed filter value",
		zap.String("field", name),
		zap.Any("value", value),
		zap.String("reason", reason),
	)
	return fmt.Errorf("%w for %s: %s", ErrMalformed, name, reason)
}

func checkIdentifier(name string) error {
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrIdentifier, name)
	}
	return nil
}

// AsSQL compiles value with the compiler matching the class of field
// name. Sets match any of the given members
func (c *Compiler) AsSQL(name string, value any, override *schema.Descriptor) (string, error) {
	var desc *schema.Descriptor
	if c.registry != nil {
		desc, _ = c.registry.Get(name, override)
	}
	if desc == nil {
		if override == nil {
			return "", fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		desc = schema.Merge(nil, override)
	}

	switch desc.Class {
	case schema.ClassID, schema.ClassInt:
		return c.AsSQLInt(name, value)
	case schema.ClassCents:
		return c.asSQLCents(name, value)
	case schema.ClassBool:
		return c.AsSQLBool(name, value)
	case schema.ClassText, schema.ClassEnum:
		return c.AsSQLText(name, value)
	case schema.ClassSet:
		return c.AsSQLSet(name, value, false)
	case schema.ClassDate:
		return c.AsSQLDate(name, value, desc.HasFlag(schema.FlagDatetime))
	case schema.ClassFile, schema.ClassNone:
		return "", fmt.Errorf("%w: %s is %s", ErrUnsupported, name, desc.Class)
	default:
		return "", fmt.Errorf("%w: %s has unknown class %d", ErrUnsupported, name, int(desc.Class))
	}
}

// AsSQLInt compiles an integer equality
func (c *Compiler) AsSQLInt(name string, value any) (string, error) {
	if err := checkIdentifier(name); err != nil {
		return "", err
	}
	if coerce.IsEmpty(value) {
		return "", nil
	}

	n, ok := coerce.Int64(value)
	if !ok {
		s, isString := value.(string)
		if !isString {
			return "", c.malformed(name, value, "not an integer")
		}
		parsed, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return "", c.malformed(name, value, "not an integer")
		}
		n = parsed
	}

	cond := Condition{Column: name, Operator: OpEqual, Values: []string{strconv.FormatInt(n, 10)}}
	return cond.SQL(), nil
}

// asSQLCents compiles an amount typed as a decimal number against a column
// holding minor units. Strings are read in the locale's notation, numbers
// as they are; both are amounts, not minor units
func (c *Compiler) asSQLCents(name string, value any) (string, error) {
	if err := checkIdentifier(name); err != nil {
		return "", err
	}
	if coerce.IsEmpty(value) {
		return "", nil
	}

	f, ok := coerce.Float64(value)
	if s, isString := value.(string); isString {
		parsed, err := c.locale.ParseDecimal(s)
		f, ok = parsed, err == nil
	}
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", c.malformed(name, value, "not a number")
	}

	cents := math.Round(f * 100)
	if cents > math.MaxInt64 || cents < math.MinInt64 {
		return "", c.malformed(name, value, "out of range")
	}
	return c.AsSQLInt(name, int64(cents))
}

// AsSQLBool compiles a boolean column test
func (c *Compiler) AsSQLBool(name string, value any) (string, error) {
	if err := checkIdentifier(name); err != nil {
		return "", err
	}
	if coerce.IsEmpty(value) {
		return "", nil
	}

	truth := coerce.Truthy(value)
	if s, ok := value.(string); ok {
		b, known := c.locale.ParseBool(s)
		if !known {
			return "", c.malformed(name, value, "not a boolean")
		}
		truth = b
	}

	if truth {
		return name, nil
	}
	return "not " + name, nil
}

// AsSQLText compiles a string equality
func (c *Compiler) AsSQLText(name string, value any) (string, error) {
	if err := checkIdentifier(name); err != nil {
		return "", err
	}
	if coerce.IsEmpty(value) {
		return "", nil
	}

	s, ok := coerce.String(value)
	if !ok {
		return "", c.malformed(name, value, "not a scalar")
	}

	cond := Condition{Column: name, Operator: OpEqual, Values: []string{c.dialect.QuoteLiteral(s)}}
	return cond.SQL(), nil
}

// AsSQLSet compiles a membership test of a comma separated column. Several
// members are combined with "and" when matchAll is set, with "or"
// otherwise
func (c *Compiler) AsSQLSet(name string, value any, matchAll bool) (string, error) {
	if err := checkIdentifier(name); err != nil {
		return "", err
	}
	if coerce.IsEmpty(value) {
		return "", nil
	}

	members, ok := coerce.Members(value)
	if !ok {
		return "", c.malformed(name, value, "not a list of members")
	}

	predicates := make([]string, 0, len(members))
	for _, m := range members {
		if strings.Contains(m, ",") {
			return "", c.malformed(name, value, "member contains a comma")
		}
		predicates = append(predicates, c.dialect.FindInSet(c.dialect.QuoteLiteral(m), name))
	}
	return group(predicates, !matchAll), nil
}

var rangeSep = regexp.MustCompile(`\s+-\s+`)

// AsSQLDate compiles a date filter. value is a date, a date preceded by a
// comparison operator, or a range "A - B" whose ends may be left open.
// With withTime set, dates without a time cover their whole day
func (c *Compiler) AsSQLDate(name string, value any, withTime bool) (string, error) {
	if err := checkIdentifier(name); err != nil {
		return "", err
	}

	var text string
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return "", nil
		}
		if withTime {
			text = v.Format(locale.DateTimeLayout)
		} else {
			text = v.Format(locale.DateLayout)
		}
	default:
		s, ok := coerce.String(value)
		if !ok {
			return "", c.malformed(name, value, "not a date")
		}
		text = strings.TrimSpace(s)
	}
	if text == "" || strings.HasPrefix(text, "0000-00-00") {
		return "", nil
	}

	cond, err := c.dateCondition(name, text, withTime)
	if err != nil {
		return "", c.malformed(name, value, err.Error())
	}
	return cond.SQL(), nil
}

func (c *Compiler) dateCondition(name, text string, withTime bool) (*Condition, error) {
	switch {
	case text == "-":
		return nil, errors.New("empty range")
	case strings.HasPrefix(text, "- "):
		upper, err := c.bound(strings.TrimSpace(text[2:]), withTime, true)
		if err != nil {
			return nil, err
		}
		return &Condition{Column: name, Operator: OpLessThanOrEqual, Values: []string{upper}}, nil
	case strings.HasSuffix(text, " -"):
		lower, err := c.bound(strings.TrimSpace(text[:len(text)-2]), withTime, false)
		if err != nil {
			return nil, err
		}
		return &Condition{Column: name, Operator: OpGreaterThanOrEqual, Values: []string{lower}}, nil
	}

	if parts := rangeSep.Split(text, 2); len(parts) == 2 {
		lower, err := c.bound(parts[0], withTime, false)
		if err != nil {
			return nil, err
		}
		upper, err := c.bound(parts[1], withTime, true)
		if err != nil {
			return nil, err
		}
		return &Condition{Column: name, Operator: OpBetween, Values: []string{lower, upper}}, nil
	}

	op, rest := leadingOperator(text)
	if op != OpEqual || !withTime {
		// > and <= reach past the whole day, >= and < start at its beginning
		upper := op == OpGreaterThan || op == OpLessThanOrEqual
		v, err := c.bound(rest, withTime, upper)
		if err != nil {
			return nil, err
		}
		return &Condition{Column: name, Operator: op, Values: []string{v}}, nil
	}

	t, hasTime, err := c.locale.ParseLocalDate(rest, true)
	if err != nil {
		return nil, err
	}
	if hasTime {
		return &Condition{Column: name, Operator: OpEqual, Values: []string{c.literal(t, true)}}, nil
	}
	return &Condition{Column: name, Operator: OpBetween, Values: []string{
		c.literal(t, true),
		c.literal(endOfDay(t), true),
	}}, nil
}

// bound parses one end of a date comparison. Upper bounds without a time
// part stand for the last second of their day
func (c *Compiler) bound(text string, withTime, upper bool) (string, error) {
	t, hasTime, err := c.locale.ParseLocalDate(text, withTime)
	if err != nil {
		return "", err
	}
	if withTime && upper && !hasTime {
		t = endOfDay(t)
	}
	return c.literal(t, withTime), nil
}

func (c *Compiler) literal(t time.Time, withTime bool) string {
	if withTime {
		return c.dialect.QuoteLiteral(t.Format(locale.DateTimeLayout))
	}
	return c.dialect.QuoteLiteral(t.Format(locale.DateLayout))
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
