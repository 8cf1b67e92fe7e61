package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FilterError names the fields a filter could not be built for
type FilterError struct {
	Unknown   []string
	Malformed map[string]error
}

// Fields returns every rejected field, sorted
func (e *FilterError) Fields() []string {
	fields := append([]string(nil), e.Unknown...)
	for field := range e.Malformed {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Error implements the error interface
func (e *FilterError) Error() string {
	var parts []string
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("invalid filter fields: %s", strings.Join(e.Unknown, ", ")))
	}
	if len(e.Malformed) > 0 {
		fields := make([]string, 0, len(e.Malformed))
		for field := range e.Malformed {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		parts = append(parts, fmt.Sprintf("malformed filter values: %s", strings.Join(fields, ", ")))
	}
	return strings.Join(parts, "; ")
}

// Is lets errors.Is match ErrUnknownField and the causes of malformed
// fields
func (e *FilterError) Is(target error) bool {
	if target == ErrUnknownField {
		return len(e.Unknown) > 0
	}
	for _, err := range e.Malformed {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Filter compiles a map of field name to filter value into one WHERE
// clause body, predicates joined with "and" in field name order. Fields
// asking for no constraint are left out; an empty result means no
// constraint at all. Only registered fields may be filtered on
func (c *Compiler) Filter(filters map[string]any) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	ferr := &FilterError{Malformed: make(map[string]error)}
	var conditions []string
	for _, field := range keys {
		if c.registry == nil || !c.registry.Exists(field) {
			ferr.Unknown = append(ferr.Unknown, field)
			continue
		}
		predicate, err := c.AsSQL(field, filters[field], nil)
		if err != nil {
			ferr.Malformed[field] = err
			continue
		}
		if predicate != "" {
			conditions = append(conditions, predicate)
		}
	}

	if len(ferr.Unknown) > 0 || len(ferr.Malformed) > 0 {
		return "", ferr
	}
	return strings.Join(conditions, " and "), nil
}
