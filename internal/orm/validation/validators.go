package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validator checks one already normalized value
type Validator interface {
	Validate(value string) error
}

// MaxLengthValidator limits the number of characters of a text
type MaxLengthValidator struct {
	MaxLength int
}

// Validate implements the Validator interface
func (v *MaxLengthValidator) Validate(value string) error {
	if v.MaxLength > 0 && utf8.RuneCountInString(value) > v.MaxLength {
		return fmt.Errorf("must be at most %d characters", v.MaxLength)
	}
	return nil
}

// PatternValidator validates string values against a regex pattern
type PatternValidator struct {
	Pattern *regexp.Regexp
}

// Validate implements the Validator interface
func (v *PatternValidator) Validate(value string) error {
	if !v.Pattern.MatchString(value) {
		return fmt.Errorf("does not match required pattern")
	}
	return nil
}

// EmailValidator validates bare e-mail addresses. Display names such as
// "Jane <jane@example.com>" are rejected
type EmailValidator struct{}

// Validate implements the Validator interface
func (v *EmailValidator) Validate(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("email address cannot be empty")
	}

	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Name != "" || addr.Address != value {
		return fmt.Errorf("must be a valid email address")
	}

	return nil
}

// URLValidator validates absolute URLs
type URLValidator struct{}

// Validate implements the Validator interface
func (v *URLValidator) Validate(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsedURL, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("must be a valid URL")
	}

	if parsedURL.Scheme == "" {
		return fmt.Errorf("URL must include a scheme (http, https, etc.)")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}

// RangeValidator bounds a number, both ends included
type RangeValidator struct {
	Min float64
	Max float64
}

// Check reports an error when f falls outside the range
func (v *RangeValidator) Check(f float64) error {
	if f < v.Min || f > v.Max {
		return fmt.Errorf("must be between %g and %g", v.Min, v.Max)
	}
	return nil
}
