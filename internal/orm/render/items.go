package render

import (
	"strings"

	"github.com/conduit-lang/fieldmeta/internal/orm/coerce"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
	"github.com/conduit-lang/fieldmeta/internal/web/markup"
)

// EnumToString returns the label of key in items, escaped when encode is
// set. Unknown keys give an empty string
func (r *Renderer) EnumToString(key any, items schema.Items, encode bool) string {
	k, ok := coerce.String(key)
	if !ok {
		return ""
	}
	label, ok := items.Lookup(strings.TrimSpace(k))
	if !ok {
		return ""
	}
	if encode {
		return markup.Escape(label)
	}
	return label
}

// SetToString returns the labels of the members of value joined by the
// locale's list delimiter. Members missing from items are skipped
func (r *Renderer) SetToString(value any, items schema.Items, encode bool) string {
	members, ok := coerce.Members(value)
	if !ok {
		return ""
	}
	labels := make([]string, 0, len(members))
	for _, m := range members {
		if label := r.EnumToString(m, items, encode); label != "" {
			labels = append(labels, label)
		}
	}
	return strings.Join(labels, r.locale.ListDelimiter)
}
