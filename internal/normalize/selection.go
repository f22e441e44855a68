package normalize

import (
	"strconv"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
)

func selection(r *resolver, kind string, defaults []form.Choice) form.Selection {
	return form.Selection{
		Enabled:  orDefault(r, SelectionField(kind, "enabled"), false, boolean),
		Required: orDefault(r, SelectionField(kind, "required"), false, boolean),
		Options:  orDefault(r, SelectionField(kind, "options"), defaults, choices),
		Metadata: orDefault(r, SelectionField(kind, "metadata"), nil, metadata),
	}
}

// choices accepts {value,label} objects or bare strings. A missing value
// or label copies the other one; entries with neither are dropped.
func choices(c candidate) ([]form.Choice, bool) {
	list, ok := asList(c.value)
	if !ok {
		return nil, false
	}
	out := []form.Choice{}
	for _, item := range list {
		var ch form.Choice
		if s, ok := asString(item); ok {
			ch = form.Choice{Value: s, Label: s}
		} else if m, ok := asMap(item); ok {
			ch.Value, _ = stringField(m, "value", "id")
			ch.Label, _ = stringField(m, "label", "name")
		}
		if ch.Value == "" {
			ch.Value = ch.Label
		}
		if ch.Label == "" {
			ch.Label = ch.Value
		}
		if ch.Value == "" {
			continue
		}
		out = append(out, ch)
	}
	return out, true
}

// metadata keeps scalar entries as strings. An empty map resolves to nil.
func metadata(c candidate) (map[string]string, bool) {
	m, ok := asMap(c.value)
	if !ok {
		return nil, false
	}
	out := map[string]string{}
	for k, v := range m {
		if s, ok := asString(v); ok {
			out[k] = s
		} else if b, ok := v.(bool); ok {
			out[k] = strconv.FormatBool(b)
		}
	}
	if len(out) == 0 {
		return nil, true
	}
	return out, true
}
