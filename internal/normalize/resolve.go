package normalize

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// candidate is one value found for a field in one source.
type candidate struct {
	source string
	path   string
	value  any
}

// Report records which source supplied each resolved field.
type Report map[Field]string

// Fields returns the resolved fields in sorted order.
func (r Report) Fields() []Field {
	fields := make([]Field, 0, len(r))
	for f := range r {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

type resolver struct {
	record  map[string]any
	sources []Source
	report  Report
}

// candidates lists the present values for f in priority order.
// A JSON null counts as absent.
func (r *resolver) candidates(f Field) []candidate {
	var out []candidate
	for _, src := range r.sources {
		for _, path := range src.Paths[f] {
			if v, ok := lookupPath(r.record, path); ok && v != nil {
				out = append(out, candidate{source: src.Name, path: path, value: v})
			}
		}
	}
	return out
}

// resolve returns the first candidate for f that coerce accepts.
func resolve[T any](r *resolver, f Field, coerce func(candidate) (T, bool)) (T, bool) {
	for _, c := range r.candidates(f) {
		if v, ok := coerce(c); ok {
			r.report[f] = c.source
			return v, true
		}
	}
	var zero T
	return zero, false
}

// orDefault resolves f and falls back to def.
func orDefault[T any](r *resolver, f Field, def T, coerce func(candidate) (T, bool)) T {
	if v, ok := resolve(r, f, coerce); ok {
		return v
	}
	r.report[f] = SourceDefault
	return def
}

func lookupPath(record map[string]any, path string) (any, bool) {
	var cur any = record
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Coercions. Each returns ok=false for values that cannot be used so the
// next candidate is tried.

func cleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// asString accepts strings and integral numbers.
func asString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return cleanText(val), true
	case json.Number:
		if _, err := val.Int64(); err == nil {
			return val.String(), true
		}
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return strconv.FormatInt(int64(val), 10), true
		}
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	}
	return "", false
}

func text(c candidate) (string, bool) {
	return asString(c.value)
}

func nonEmptyText(c candidate) (string, bool) {
	s, ok := asString(c.value)
	return s, ok && s != ""
}

func boolean(c candidate) (bool, bool) {
	return asBool(c.value)
}

func asBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

var numberNoise = strings.NewReplacer(",", "", "¥", "", "円", "", " ", "", "_", "")

// asInt accepts integral numbers and numeric strings such as "¥3,000".
func asInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) || math.Abs(val) > math.MaxInt32 {
			return 0, false
		}
		return int(val), true
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		s := numberNoise.Replace(width.Narrow.String(strings.TrimSpace(val)))
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// count accepts non-negative integers.
func count(c candidate) (int, bool) {
	n, ok := asInt(c.value)
	return n, ok && n >= 0
}

// positive accepts integers above zero.
func positive(c candidate) (int, bool) {
	n, ok := asInt(c.value)
	return n, ok && n > 0
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// color accepts #rgb and #rrggbb and returns upper-case #RRGGBB.
func color(c candidate) (string, bool) {
	s, ok := c.value.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if !hexColor.MatchString(s) {
		return "", false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return "#" + strings.ToUpper(hex), true
}

// endpoint accepts absolute http(s) URLs. An empty string means no webhook.
func endpoint(c candidate) (string, bool) {
	s, ok := asString(c.value)
	if !ok {
		return "", false
	}
	if s == "" {
		return "", true
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return s, true
}

// oneOf builds a coercion accepting only the listed values.
func oneOf[T ~string](allowed ...T) func(candidate) (T, bool) {
	return func(c candidate) (T, bool) {
		var zero T
		s, ok := c.value.(string)
		if !ok {
			return zero, false
		}
		s = strings.ToLower(strings.TrimSpace(s))
		for _, a := range allowed {
			if string(a) == s {
				return a, true
			}
		}
		return zero, false
	}
}

func asList(v any) ([]any, bool) {
	list, ok := v.([]any)
	return list, ok
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// field reads the first present key of m, accepting aliases.
func field(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(m map[string]any, keys ...string) (string, bool) {
	v, ok := field(m, keys...)
	if !ok {
		return "", false
	}
	return asString(v)
}

func intField(m map[string]any, min int, keys ...string) (int, bool) {
	v, ok := field(m, keys...)
	if !ok {
		return 0, false
	}
	n, ok := asInt(v)
	return n, ok && n >= min
}

func boolField(m map[string]any, keys ...string) (bool, bool) {
	v, ok := field(m, keys...)
	if !ok {
		return false, false
	}
	return asBool(v)
}
