package render

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/conduit-lang/fieldmeta/internal/orm/coerce"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
	"github.com/conduit-lang/fieldmeta/internal/web/markup"
)

// defaultDelim separates radio buttons and checkboxes when the field sets
// no item_delim
const defaultDelim = "\n"

// AsHTMLInput renders a form control editing value. attrs are merged over
// the attributes derived from the field; an explicit "type" wins over the
// class default
func (r *Renderer) AsHTMLInput(name string, value any, attrs markup.Attrs, override *schema.Descriptor) string {
	desc := r.describe(name, override)
	if coerce.IsEmpty(value) {
		value = nil
	}
	base := markup.Attrs{"name": name}

	switch desc.Class {
	case schema.ClassText:
		return r.textInput(desc, base, value, attrs)

	case schema.ClassDate:
		withTime := desc.HasFlag(schema.FlagDatetime)
		base["type"] = "text"
		t, ok := storedTime(value)
		switch typ := attrs["type"]; typ {
		case "date", "datetime", "datetime-local":
			if ok {
				base["value"] = r.locale.FormatDateRFC(t, typ != "date")
			}
		default:
			if ok {
				base["value"] = r.locale.FormatDate(t, withTime)
			}
		}
		return markup.BuildTag("input", base.Merge(attrs))

	case schema.ClassEnum:
		if desc.HasFlag(schema.FlagRadio) {
			return r.radioGroup(desc, base.Merge(attrs), value)
		}
		return r.selectInput(desc, base.Merge(attrs), value)

	case schema.ClassSet:
		return r.checkboxGroup(desc, base.Merge(attrs), value)

	case schema.ClassID, schema.ClassInt:
		base["type"] = "number"
		if n, ok := storedInt(value); ok {
			base["value"] = strconv.FormatInt(n, 10)
		}
		return markup.BuildTag("input", base.Merge(attrs))

	case schema.ClassCents:
		base["type"] = "number"
		base["step"] = "0.01"
		if cents, ok := storedInt(value); ok {
			base["value"] = r.locale.FormatDecimal(float64(cents)/100, 2, false)
		}
		return markup.BuildTag("input", base.Merge(attrs))

	case schema.ClassBool:
		base["type"] = "checkbox"
		base["value"] = "1"
		if value != nil && coerce.Truthy(value) {
			base["checked"] = "checked"
		}
		box := markup.Element("input", base.Merge(attrs))
		label := r.itemNode(r.boolLabel(desc, true), desc)
		return markup.Render(markup.Element("label", nil, box, label))

	case schema.ClassFile:
		base["type"] = "file"
		return markup.BuildTag("input", base.Merge(attrs))

	default:
		base["type"] = "text"
		if s, ok := coerce.String(value); ok && value != nil {
			base["value"] = s
		}
		return markup.BuildTag("input", base.Merge(attrs))
	}
}

func (r *Renderer) textInput(desc *schema.Descriptor, base markup.Attrs, value any, attrs markup.Attrs) string {
	text, _ := coerce.String(value)
	if value == nil {
		text = ""
	}
	if desc.Width > 0 {
		base["maxlength"] = strconv.Itoa(desc.Width)
	}

	if desc.HasFlag(schema.FlagTextarea) && attrs["type"] == "" {
		return markup.BuildTag("textarea", base.Merge(attrs), markup.Text(text))
	}

	switch {
	case desc.HasFlag(schema.FlagPassword):
		base["type"] = "password"
	case desc.HasFlag(schema.FlagEmail):
		base["type"] = "email"
	case desc.HasFlag(schema.FlagTel):
		base["type"] = "tel"
	case desc.HasFlag(schema.FlagURL):
		base["type"] = "url"
	default:
		base["type"] = "text"
	}
	if desc.Width > 0 {
		base["size"] = strconv.Itoa(min(desc.Width, 60))
	}
	if text != "" && !desc.HasFlag(schema.FlagPassword) {
		base["value"] = text
	}
	return markup.BuildTag("input", base.Merge(attrs))
}

func (r *Renderer) selectInput(desc *schema.Descriptor, attrs markup.Attrs, value any) string {
	current, _ := coerce.String(value)
	if value == nil {
		current = ""
	}

	var options []*html.Node
	if desc.ItemBlank != "" {
		options = append(options, markup.Element("option", markup.Attrs{"value": ""}, r.itemNode(desc.ItemBlank, desc)))
	}
	for _, item := range desc.Items {
		optAttrs := markup.Attrs{"value": item.Key}
		if value != nil && item.Key == current {
			optAttrs["selected"] = "selected"
		}
		options = append(options, markup.Element("option", optAttrs, r.itemNode(item.Label, desc)))
	}
	return markup.BuildTag("select", attrs, options...)
}

func (r *Renderer) radioGroup(desc *schema.Descriptor, attrs markup.Attrs, value any) string {
	current, _ := coerce.String(value)

	buttons := make([]string, 0, len(desc.Items))
	for _, item := range desc.Items {
		input := attrs.Merge(markup.Attrs{"type": "radio", "value": item.Key})
		if typ := attrs["type"]; typ != "" {
			input["type"] = typ
		}
		if id, ok := attrs["id"]; ok {
			input["id"] = id + "_" + item.Key
		}
		if value != nil && item.Key == current {
			input["checked"] = "checked"
		}
		button := markup.Element("label", nil, markup.Element("input", input), r.itemNode(item.Label, desc))
		buttons = append(buttons, markup.Render(button))
	}
	return strings.Join(buttons, r.delim(desc))
}

func (r *Renderer) checkboxGroup(desc *schema.Descriptor, attrs markup.Attrs, value any) string {
	members, _ := coerce.Members(value)
	chosen := make(map[string]bool, len(members))
	for _, m := range members {
		chosen[m] = true
	}

	name := attrs["name"]
	boxes := make([]string, 0, len(desc.Items))
	for _, item := range desc.Items {
		input := attrs.Merge(markup.Attrs{
			"type":  "checkbox",
			"name":  name + "[" + item.Key + "]",
			"value": "1",
		})
		if typ := attrs["type"]; typ != "" {
			input["type"] = typ
		}
		if id, ok := attrs["id"]; ok {
			input["id"] = id + "_" + item.Key
		}
		if chosen[item.Key] {
			input["checked"] = "checked"
		}
		box := markup.Element("label", nil, markup.Element("input", input), r.itemNode(item.Label, desc))
		boxes = append(boxes, markup.Render(box))
	}
	return strings.Join(boxes, r.delim(desc))
}

// itemNode renders an option label, verbatim for F_ASIS fields
func (r *Renderer) itemNode(label string, desc *schema.Descriptor) *html.Node {
	if desc.HasFlag(schema.FlagAsIs) {
		return markup.Raw(label)
	}
	return markup.Text(label)
}

func (r *Renderer) delim(desc *schema.Descriptor) string {
	if desc.ItemDelim != "" {
		return desc.ItemDelim
	}
	return defaultDelim
}
