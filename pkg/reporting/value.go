package reporting

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// node wraps one position in a decoded JSON/YAML tree. Every accessor is
// total: a missing key or an unexpected shape yields an empty node or a
// string rendition, never an error.
type node struct{ v any }

func (n node) get(key string) node {
	switch m := n.v.(type) {
	case map[string]any:
		return node{m[key]}
	case map[any]any:
		return node{m[key]}
	}
	return node{}
}

// first returns the first of keys that holds a non-empty value.
func (n node) first(keys ...string) node {
	for _, k := range keys {
		if v := n.get(k); !v.empty() {
			return v
		}
	}
	return node{}
}

func (n node) isMap() bool {
	switch n.v.(type) {
	case map[string]any, map[any]any:
		return true
	}
	return false
}

// empty reports nil, blank strings, and empty lists or maps.
func (n node) empty() bool {
	switch v := n.v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case map[any]any:
		return len(v) == 0
	}
	return false
}

// list returns the elements of a list. A scalar or map is treated as a
// one-element list; nil as an empty one.
func (n node) list() []node {
	switch v := n.v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]node, 0, len(v))
		for _, e := range v {
			out = append(out, node{e})
		}
		return out
	}
	return []node{n}
}

// str coerces any leaf to its string form.
func (n node) str() string {
	return stringify(n.v)
}

// strOr returns def when the node is empty.
func (n node) strOr(def string) string {
	if n.empty() {
		return def
	}
	return n.str()
}

// strings returns a list of strings, splitting nothing: a single string is a
// one-element list.
func (n node) strings() []string {
	var out []string
	for _, e := range n.list() {
		if s := strings.TrimSpace(e.str()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, stringify(e))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return stringifyMap(len(t), func(yield func(string, any)) {
			for k, v := range t {
				yield(k, v)
			}
		})
	case map[any]any:
		return stringifyMap(len(t), func(yield func(string, any)) {
			for k, v := range t {
				yield(stringify(k), v)
			}
		})
	}
	return fmt.Sprint(v)
}

// stringifyMap renders a map as "k: v" pairs in key order so the output is
// stable between renders.
func stringifyMap(n int, each func(func(string, any))) string {
	keys := make([]string, 0, n)
	vals := make(map[string]any, n)
	each(func(k string, v any) {
		keys = append(keys, k)
		vals[k] = v
	})
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+stringify(vals[k]))
	}
	return strings.Join(parts, "; ")
}
