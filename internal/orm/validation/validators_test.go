package validation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conduit-lang/fieldmeta/internal/locale"
)

func TestMaxLengthValidator(t *testing.T) {
	v := &MaxLengthValidator{MaxLength: 3}
	assert.NoError(t, v.Validate("abc"))
	assert.NoError(t, v.Validate("žlu"))
	assert.Error(t, v.Validate("abcd"))
	assert.NoError(t, (&MaxLengthValidator{}).Validate("unbounded"))
}

func TestPatternValidator(t *testing.T) {
	v := &PatternValidator{Pattern: regexp.MustCompile(`^\d+$`)}
	assert.NoError(t, v.Validate("123"))
	assert.Error(t, v.Validate("12a"))
}

func TestEmailValidator(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"user@example.com", false},
		{"first.last+tag@sub.example.org", false},
		{"", true},
		{"no-at-sign", true},
		{"Jane <jane@example.com>", true},
		{"user@", true},
	}

	v := &EmailValidator{}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := v.Validate(tt.value)
			assert.Equal(t, tt.wantErr, err != nil, "value %q", tt.value)
		})
	}
}

func TestURLValidator(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"https://example.com", false},
		{"http://example.com/path?q=1", false},
		{"example.com", true},
		{"https://", true},
		{"", true},
		{"://bad", true},
	}

	v := &URLValidator{}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := v.Validate(tt.value)
			assert.Equal(t, tt.wantErr, err != nil, "value %q", tt.value)
		})
	}
}

func TestPct100(t *testing.T) {
	en := locale.Lookup("en")
	fr := locale.Lookup("fr")

	tests := []struct {
		name  string
		value any
		loc   *locale.Locale
		ok    bool
	}{
		{"zero", 0, en, true},
		{"hundred", 100, en, true},
		{"fraction string", "99.5", en, true},
		{"french decimal", "12,5", fr, true},
		{"negative", -1, en, false},
		{"too large", 100.01, en, false},
		{"text", "lots", en, false},
		{"nan", "NaN", en, false},
		{"list", []int{1}, en, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Pct100(tt.value, "Share", tt.loc)
			if tt.ok {
				assert.Empty(t, msg)
				return
			}
			assert.Contains(t, msg, "Share")
		})
	}

	assert.Equal(t, "Share: must be between 0 and 100", Pct100(200, "Share", nil))
	assert.Contains(t, Callbacks(), "pct100")
}
