package schema

import (
	"github.com/conduit-lang/fieldmeta/internal/locale"
)

// Callback narrows the accepted values of a field. It returns an empty
// string to accept value, or the error message to report
type Callback func(value any, label string, loc *locale.Locale) string

// Descriptor is the metadata of one logical field. The zero value of every
// attribute means "unspecified", which lets a partial descriptor override a
// registered one attribute by attribute
type Descriptor struct {
	Class      Class  `yaml:"class" json:"class,omitempty"`
	Label      string `yaml:"label" json:"label,omitempty"`
	LabelShort string `yaml:"label_short" json:"label_short,omitempty"`
	LabelLong  string `yaml:"label_long" json:"label_long,omitempty"`
	Width      int    `yaml:"width" json:"width,omitempty"`
	Flags      Flag   `yaml:"flags" json:"flags,omitempty"`
	Required   bool   `yaml:"required" json:"required,omitempty"`

	Items      Items  `yaml:"items" json:"items,omitempty"`
	ItemsShort Items  `yaml:"items_short" json:"items_short,omitempty"`
	ItemsLong  Items  `yaml:"items_long" json:"items_long,omitempty"`
	ItemBlank  string `yaml:"item_blank" json:"item_blank,omitempty"`
	ItemDelim  string `yaml:"item_delim" json:"item_delim,omitempty"`

	ValidateRegexp   string   `yaml:"validate_regexp" json:"validate_regexp,omitempty"`
	ValidateCallback Callback `yaml:"-" json:"-"`
	// CallbackName names a built-in callback in package files
	CallbackName string `yaml:"validate_callback" json:"validate_callback,omitempty"`

	// Alias forwards every lookup of this name to another field
	Alias string `yaml:"alias" json:"alias,omitempty"`
}

// IsAlias reports whether d only forwards to another field
func (d *Descriptor) IsAlias() bool {
	return d != nil && d.Alias != ""
}

// HasFlag reports whether flag f is set
func (d *Descriptor) HasFlag(f Flag) bool {
	return d != nil && d.Flags.Has(f)
}

// hasAttributes reports whether anything besides Alias is set
func (d *Descriptor) hasAttributes() bool {
	stripped := *d
	stripped.Alias = ""
	return !stripped.isZero()
}

func (d *Descriptor) isZero() bool {
	return d.Class == ClassNone && d.Label == "" && d.LabelShort == "" && d.LabelLong == "" &&
		d.Width == 0 && d.Flags == 0 && !d.Required && len(d.Items) == 0 &&
		len(d.ItemsShort) == 0 && len(d.ItemsLong) == 0 && d.ItemBlank == "" &&
		d.ItemDelim == "" && d.ValidateRegexp == "" && d.ValidateCallback == nil &&
		d.CallbackName == "" && d.Alias == ""
}

// Clone returns a copy of d that shares nothing mutable with it
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	c := *d
	c.Items = d.Items.clone()
	c.ItemsShort = d.ItemsShort.clone()
	c.ItemsLong = d.ItemsLong.clone()
	return &c
}

// Merge returns base with every attribute override specifies replaced.
// Neither argument is modified. The result never carries an alias
func Merge(base, override *Descriptor) *Descriptor {
	if base == nil && override == nil {
		return nil
	}

	merged := base.Clone()
	if merged == nil {
		merged = &Descriptor{}
	}
	merged.Alias = ""
	if override == nil {
		return merged
	}

	if override.Class != ClassNone {
		merged.Class = override.Class
	}
	if override.Label != "" {
		merged.Label = override.Label
	}
	if override.LabelShort != "" {
		merged.LabelShort = override.LabelShort
	}
	if override.LabelLong != "" {
		merged.LabelLong = override.LabelLong
	}
	if override.Width != 0 {
		merged.Width = override.Width
	}
	if override.Flags != 0 {
		merged.Flags = override.Flags
	}
	if override.Required {
		merged.Required = true
	}
	if len(override.Items) > 0 {
		merged.Items = override.Items.clone()
	}
	if len(override.ItemsShort) > 0 {
		merged.ItemsShort = override.ItemsShort.clone()
	}
	if len(override.ItemsLong) > 0 {
		merged.ItemsLong = override.ItemsLong.clone()
	}
	if override.ItemBlank != "" {
		merged.ItemBlank = override.ItemBlank
	}
	if override.ItemDelim != "" {
		merged.ItemDelim = override.ItemDelim
	}
	if override.ValidateRegexp != "" {
		merged.ValidateRegexp = override.ValidateRegexp
	}
	if override.ValidateCallback != nil {
		merged.ValidateCallback = override.ValidateCallback
		merged.CallbackName = override.CallbackName
	}
	return merged
}

// LabelKind selects one of a field's labels
type LabelKind int

const (
	LabelDefault LabelKind = iota
	LabelShort
	LabelLong
)

// LabelFor returns the label of the given kind. Short and long labels fall
// back to the default label
func (d *Descriptor) LabelFor(kind LabelKind) string {
	if d == nil {
		return ""
	}
	switch kind {
	case LabelShort:
		if d.LabelShort != "" {
			return d.LabelShort
		}
	case LabelLong:
		if d.LabelLong != "" {
			return d.LabelLong
		}
	}
	return d.Label
}

// ItemsKind selects one of a field's option lists
type ItemsKind int

const (
	ItemsDefault ItemsKind = iota
	ItemsShort
	ItemsLong
)

// ItemsFor returns the option list of the given kind, nil when undefined
func (d *Descriptor) ItemsFor(kind ItemsKind) Items {
	if d == nil {
		return nil
	}
	switch kind {
	case ItemsShort:
		return d.ItemsShort
	case ItemsLong:
		return d.ItemsLong
	default:
		return d.Items
	}
}

// ParamKey names a descriptor attribute for generic lookups
type ParamKey int

const (
	ParamClass ParamKey = iota
	ParamLabel
	ParamLabelShort
	ParamLabelLong
	ParamWidth
	ParamFlags
	ParamRequired
	ParamItems
	ParamItemsShort
	ParamItemsLong
	ParamItemBlank
	ParamItemDelim
	ParamValidateRegexp
	ParamValidateCallback
)

// Param returns the attribute named by key and whether it is defined
func (d *Descriptor) Param(key ParamKey) (any, bool) {
	if d == nil {
		return nil, false
	}
	switch key {
	case ParamClass:
		return d.Class, d.Class != ClassNone
	case ParamLabel:
		return d.Label, d.Label != ""
	case ParamLabelShort:
		return d.LabelShort, d.LabelShort != ""
	case ParamLabelLong:
		return d.LabelLong, d.LabelLong != ""
	case ParamWidth:
		return d.Width, d.Width != 0
	case ParamFlags:
		return d.Flags, d.Flags != 0
	case ParamRequired:
		return d.Required, d.Required
	case ParamItems:
		return d.Items, len(d.Items) > 0
	case ParamItemsShort:
		return d.ItemsShort, len(d.ItemsShort) > 0
	case ParamItemsLong:
		return d.ItemsLong, len(d.ItemsLong) > 0
	case ParamItemBlank:
		return d.ItemBlank, d.ItemBlank != ""
	case ParamItemDelim:
		return d.ItemDelim, d.ItemDelim != ""
	case ParamValidateRegexp:
		return d.ValidateRegexp, d.ValidateRegexp != ""
	case ParamValidateCallback:
		return d.ValidateCallback, d.ValidateCallback != nil
	default:
		return nil, false
	}
}
