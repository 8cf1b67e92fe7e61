package validation

import (
	"regexp"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/conduit-lang/fieldmeta/internal/locale"
	"github.com/conduit-lang/fieldmeta/internal/orm/coerce"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
)

// Engine validates and normalizes raw input against field descriptors. An
// Engine holds no per-call state and may be shared between goroutines
type Engine struct {
	registry *schema.Registry
	locale   *locale.Locale
	logger   *zap.Logger

	patterns sync.Map // string -> *regexp.Regexp or error
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used to report rejected fields
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine reading descriptors from reg and producing
// messages for loc. A nil locale means English
func New(reg *schema.Registry, loc *locale.Locale, opts ...Option) *Engine {
	if loc == nil {
		loc = locale.Lookup("en")
	}
	e := &Engine{
		registry: reg,
		locale:   loc,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Locale returns the locale messages are produced for
func (e *Engine) Locale() *locale.Locale {
	return e.locale
}

// Validate checks raw input for every field named in fields. The
// descriptor given for a field overrides its registered one attribute by
// attribute and may be nil. A field missing from raw counts as empty
func (e *Engine) Validate(fields map[string]*schema.Descriptor, raw map[string]any) *Result {
	return e.ValidateWithUploads(fields, raw, nil)
}

// ValidateWithUploads is Validate for forms carrying files. File fields
// read their value from uploads rather than from raw
func (e *Engine) ValidateWithUploads(fields map[string]*schema.Descriptor, raw map[string]any, uploads UploadSource) *Result {
	result := newResult()

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		desc := e.describe(name, fields[name])

		value := raw[name]
		if desc.Class == schema.ClassFile {
			value = fileValue(name, value, uploads)
		}

		normalized, ferr := e.validateField(name, desc, value)
		if ferr != nil {
			e.logger.Debug("field rejected",
				zap.String("field", name),
				zap.Stringer("kind", ferr.Kind),
				zap.String("class", desc.Class.String()),
			)
			result.Add(*ferr)
			continue
		}
		result.Values[name] = normalized
	}

	return result
}

// ValidateValue checks a single value of a registered or ad hoc field
func (e *Engine) ValidateValue(name string, override *schema.Descriptor, value any) (any, *FieldError) {
	return e.validateField(name, e.describe(name, override), value)
}

// describe resolves the descriptor a field is validated with. Fields known
// neither to the registry nor to the caller are plain scalars
func (e *Engine) describe(name string, override *schema.Descriptor) *schema.Descriptor {
	if e.registry != nil {
		if desc, ok := e.registry.Get(name, override); ok {
			return desc
		}
	}
	if override != nil {
		return schema.Merge(nil, override)
	}
	return &schema.Descriptor{}
}

func (e *Engine) validateField(name string, desc *schema.Descriptor, value any) (any, *FieldError) {
	label := desc.Label
	if label == "" {
		label = name
	}
	fail := func(kind Kind, key string, args ...any) (any, *FieldError) {
		err := NewFieldError(name, kind, e.locale.Translate(key, append([]any{label}, args...)...))
		return nil, &err
	}

	if isBlank(desc.Class, value) {
		if desc.Required {
			return fail(KindRequired, locale.MsgRequired)
		}
		if desc.Class == schema.ClassBool {
			return int64(0), nil
		}
		return nil, nil
	}

	normalized, ferr := e.normalize(name, label, desc, value)
	if ferr != nil {
		return nil, ferr
	}
	if normalized == nil {
		if desc.Required {
			return fail(KindRequired, locale.MsgRequired)
		}
		return nil, nil
	}

	if desc.ValidateRegexp != "" {
		text, _ := coerce.String(normalized)
		re, err := e.pattern(desc.ValidateRegexp)
		if err != nil {
			e.logger.Warn("invalid validate_regexp",
				zap.String("field", name),
				zap.String("pattern", desc.ValidateRegexp),
				zap.Error(err),
			)
			return fail(KindCustomValidation, locale.MsgInvalidFormat)
		}
		if err := (&PatternValidator{Pattern: re}).Validate(text); err != nil {
			return fail(KindCustomValidation, locale.MsgInvalidFormat)
		}
	}

	if desc.ValidateCallback != nil {
		if msg := desc.ValidateCallback(normalized, label, e.locale); msg != "" {
			err := NewFieldError(name, KindCustomValidation, msg)
			return nil, &err
		}
	}

	return normalized, nil
}

// pattern compiles expr once per engine
func (e *Engine) pattern(expr string) (*regexp.Regexp, error) {
	if cached, ok := e.patterns.Load(expr); ok {
		if re, ok := cached.(*regexp.Regexp); ok {
			return re, nil
		}
		return nil, cached.(error)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		e.patterns.Store(expr, err)
		return nil, err
	}
	e.patterns.Store(expr, re)
	return re, nil
}

// isBlank reports whether value carries no input for a field of class c
func isBlank(c schema.Class, value any) bool {
	switch v := value.(type) {
	case schema.Upload:
		return v.Error == schema.UploadErrNoFile || (v.Name == "" && v.Error == schema.UploadErrNone)
	case *schema.Upload:
		return v == nil || isBlank(c, *v)
	case string:
		if c == schema.ClassDate && isZeroDate(v) {
			return true
		}
	}
	return coerce.IsEmpty(value)
}
