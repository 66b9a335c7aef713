package formdata

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Field is one named control of a form as seen by the serializer.
type Field struct {
	Name string
	// Value is the current value of the control.
	Value string
	// Tag is the lower-case element name (input, select, textarea, button).
	Tag string
	// Type is the input type attribute, when Tag is "input".
	Type string
	// Checked reports the checked state of checkbox and radio inputs.
	Checked bool
	// SkipSerialization mirrors data-skip-serialization="True".
	SkipSerialization bool
}

// Checkable reports whether the field only contributes a value when checked.
func (f Field) Checkable() bool {
	if f.Tag != "input" {
		return false
	}
	switch strings.ToLower(f.Type) {
	case "checkbox", "radio":
		return true
	default:
		return false
	}
}

var (
	mapListName = regexp.MustCompile(`^([^\[]+)\[(\w+)\]\[\]$`)
	listName    = regexp.MustCompile(`\[\]$`)
)

// Option customises serialization.
type Option func(*options)

type options struct {
	skipTags  map[string]struct{}
	skipNames map[string]struct{}
}

// WithSkipTags excludes every field whose tag matches one of tags.
func WithSkipTags(tags ...string) Option {
	return func(o *options) {
		for _, tag := range tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if o.skipTags == nil {
				o.skipTags = make(map[string]struct{})
			}
			o.skipTags[tag] = struct{}{}
		}
	}
}

// WithSkipNames excludes every field whose name is one of names. Names are
// matched as written on the control, brackets included.
func WithSkipNames(names ...string) Option {
	return func(o *options) {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if o.skipNames == nil {
				o.skipNames = make(map[string]struct{})
			}
			o.skipNames[name] = struct{}{}
		}
	}
}

// Serialize folds fields into a value map.
//
// Plain names map to strings, the last occurrence winning. "name[]" collects
// values into a list kept under "name[]", brackets included, so a collapsed
// single value and a list reach the server under the same key; "name[key][]"
// collects into a map of lists keyed by "name". Unchecked checkboxes and
// radios, fields flagged SkipSerialization and fields whose tag or name was
// skipped are ignored. Top-level lists holding a single value collapse to
// that value.
func Serialize(fields []Field, opts ...Option) map[string]any {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make(map[string]any)
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" || field.SkipSerialization {
			continue
		}
		if field.Checkable() && !field.Checked {
			continue
		}
		if _, skip := cfg.skipTags[strings.ToLower(field.Tag)]; skip {
			continue
		}
		if _, skip := cfg.skipNames[name]; skip {
			continue
		}

		if match := mapListName.FindStringSubmatch(name); match != nil {
			group, ok := out[match[1]].(map[string]any)
			if !ok {
				group = make(map[string]any)
				out[match[1]] = group
			}
			list, _ := group[match[2]].([]any)
			group[match[2]] = append(list, field.Value)
			continue
		}

		if listName.MatchString(name) {
			list, _ := out[name].([]any)
			out[name] = append(list, field.Value)
			continue
		}

		out[name] = field.Value
	}

	for key, value := range out {
		if list, ok := value.([]any); ok && len(list) == 1 {
			out[key] = list[0]
		}
	}
	return out
}

// Merge copies src over dst (shallow, src wins) and returns dst. A nil dst is
// allocated.
func Merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

// FromValues converts query values into a value map: single values become
// strings, repeated values become lists.
func FromValues(values url.Values) map[string]any {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]any, len(values))
	for key, list := range values {
		switch len(list) {
		case 0:
			continue
		case 1:
			out[key] = list[0]
		default:
			items := make([]any, len(list))
			for i, item := range list {
				items[i] = item
			}
			out[key] = items
		}
	}
	return out
}

// Encode turns a value map into bracket-style form values: lists are emitted
// as "name[]" and maps as "name[key]" (recursively), so the server rebuilds
// the same structure Serialize produced. Keys already ending in "[]" are not
// suffixed again.
func Encode(values map[string]any) url.Values {
	out := url.Values{}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		encodeValue(out, key, values[key])
	}
	return out
}

func encodeValue(out url.Values, key string, value any) {
	switch typed := value.(type) {
	case nil:
		return
	case string:
		out.Add(key, typed)
	case []string:
		for _, item := range typed {
			out.Add(listKey(key), item)
		}
	case []any:
		for _, item := range typed {
			if nested, ok := item.(map[string]any); ok {
				encodeMap(out, listKey(key), nested)
				continue
			}
			if item == nil {
				continue
			}
			out.Add(listKey(key), fmt.Sprint(item))
		}
	case map[string]any:
		encodeMap(out, key, typed)
	case map[string]string:
		for sub, item := range typed {
			out.Add(key+"["+sub+"]", item)
		}
	case fmt.Stringer:
		out.Add(key, typed.String())
	default:
		out.Add(key, fmt.Sprint(typed))
	}
}

func listKey(key string) string {
	if strings.HasSuffix(key, "[]") {
		return key
	}
	return key + "[]"
}

func encodeMap(out url.Values, prefix string, values map[string]any) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		encodeValue(out, prefix+"["+key+"]", values[key])
	}
}
