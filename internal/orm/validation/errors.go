package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Kind classifies a validation failure
type Kind int

const (
	KindRequired Kind = iota + 1
	KindTypeMismatch
	KindRangeViolation
	KindFormatViolation
	KindOptionViolation
	KindUploadError
	KindCustomValidation
)

var kindCodes = map[Kind]string{
	KindRequired:         "required",
	KindTypeMismatch:     "invalid_type",
	KindRangeViolation:   "out_of_range",
	KindFormatViolation:  "invalid_format",
	KindOptionViolation:  "invalid_option",
	KindUploadError:      "upload_error",
	KindCustomValidation: "custom",
}

// String returns the stable code of the kind
func (k Kind) String() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind as its code
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from its code
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, code := range kindCodes {
		if code == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown validation error code %q", text)
}

// FieldError represents a validation error on a specific field. Message is
// already localized and names the field's label
type FieldError struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (fe FieldError) Error() string {
	return fe.Message
}

// NewFieldError creates a new FieldError
func NewFieldError(field string, kind Kind, message string) FieldError {
	return FieldError{
		Field:   field,
		Kind:    kind,
		Message: message,
	}
}

// Result is the outcome of one validation run. Values holds the normalized
// value of every field that produced no error; a nil value stands for an
// empty field. Errors keeps the order in which fields were checked
type Result struct {
	Values map[string]any `json:"values"`
	Errors []FieldError   `json:"errors"`
}

func newResult() *Result {
	return &Result{
		Values: make(map[string]any),
		Errors: []FieldError{},
	}
}

// Add records err
func (r *Result) Add(err FieldError) {
	r.Errors = append(r.Errors, err)
}

// Valid reports whether no field failed
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Messages returns the error messages in order
func (r *Result) Messages() []string {
	messages := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		messages[i] = err.Message
	}
	return messages
}

// ForField returns the errors recorded for one field
func (r *Result) ForField(name string) []FieldError {
	var errs []FieldError
	for _, err := range r.Errors {
		if err.Field == name {
			errs = append(errs, err)
		}
	}
	return errs
}

// Err returns the failures as a *ValidationErrors, or nil when valid
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	errs := NewValidationErrors()
	for _, err := range r.Errors {
		errs.AddFieldError(err)
	}
	return errs
}

// ValidationErrors groups validation messages by field
type ValidationErrors struct {
	Fields map[string][]string `json:"fields"`
}

// NewValidationErrors creates a new ValidationErrors instance
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Fields: make(map[string][]string),
	}
}

// Add adds a validation error for a specific field
func (ve *ValidationErrors) Add(field, message string) {
	if ve.Fields == nil {
		ve.Fields = make(map[string][]string)
	}
	ve.Fields[field] = append(ve.Fields[field], message)
}

// AddFieldError adds a FieldError to the validation errors
func (ve *ValidationErrors) AddFieldError(err FieldError) {
	ve.Add(err.Field, err.Message)
}

// HasErrors returns true if there are any validation errors
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Fields) > 0
}

// Count returns the total number of validation errors across all fields
func (ve *ValidationErrors) Count() int {
	count := 0
	for _, messages := range ve.Fields {
		count += len(messages)
	}
	return count
}

// Error implements the error interface. Fields are listed by name
func (ve *ValidationErrors) Error() string {
	if !ve.HasErrors() {
		return "validation failed"
	}

	fields := make([]string, 0, len(ve.Fields))
	for field := range ve.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var messages []string
	for _, field := range fields {
		messages = append(messages, ve.Fields[field]...)
	}

	if len(messages) == 1 {
		return fmt.Sprintf("validation failed: %s", messages[0])
	}

	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(messages, "\n  - "))
}

// MarshalJSON implements json.Marshaler for custom JSON serialization
func (ve *ValidationErrors) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error  string              `json:"error"`
		Fields map[string][]string `json:"fields"`
	}{
		Error:  "validation_failed",
		Fields: ve.Fields,
	})
}
