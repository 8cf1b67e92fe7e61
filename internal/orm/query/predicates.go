// Package query compiles field filter values into SQL predicates. Values are
// inlined as escaped literals so a predicate can be dropped into any WHERE
// clause
package query

import (
	"strings"
)

// Operator represents a comparison operator
type Operator int

const (
	OpEqual Operator = iota
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpBetween
)

// String returns the string representation of the operator
func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return ">="
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "<="
	case OpBetween:
		return "between"
	default:
		return "unknown"
	}
}

// leadingOperator splits a comparison operator off the front of s. Values
// without one compare for equality
func leadingOperator(s string) (Operator, string) {
	for _, candidate := range []struct {
		prefix string
		op     Operator
	}{
		{">=", OpGreaterThanOrEqual},
		{"<=", OpLessThanOrEqual},
		{">", OpGreaterThan},
		{"<", OpLessThan},
		{"=", OpEqual},
	} {
		if strings.HasPrefix(s, candidate.prefix) {
			return candidate.op, strings.TrimSpace(s[len(candidate.prefix):])
		}
	}
	return OpEqual, s
}

// Condition is one comparison of a column against quoted literals
type Condition struct {
	Column   string
	Operator Operator
	Values   []string
}

// SQL renders the condition in the compact form used throughout the
// package: no blanks around operators, quotes delimiting the literals
func (c *Condition) SQL() string {
	if c.Operator == OpBetween && len(c.Values) == 2 {
		return c.Column + " between" + c.Values[0] + "and" + c.Values[1]
	}
	if len(c.Values) == 0 {
		return ""
	}
	return c.Column + c.Operator.String() + c.Values[0]
}

// group joins predicates with a connector, parenthesized when there is more
// than one
func group(predicates []string, or bool) string {
	switch len(predicates) {
	case 0:
		return ""
	case 1:
		return predicates[0]
	}
	connector := "and "
	if or {
		connector = "or "
	}
	return "(" + strings.Join(predicates, connector) + ")"
}
