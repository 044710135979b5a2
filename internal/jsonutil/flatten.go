// internal/jsonutil/flatten.go

// Package jsonutil normalizes event shapes. Inbound events may arrive
// nested, fully flattened with dotted keys (array elements as numeric
// segments, "a.b.0.c"), or a mix. Normalize canonicalizes any of those to
// one nested form so path resolution sees a single shape per event.
package jsonutil

import (
	"sort"
	"strconv"
	"strings"
)

// Flatten converts a nested JSON tree to a single-level map with dotted
// keys. Array elements become numeric segments: {"a":[{"b":1}]} flattens
// to {"a.0.b":1}. Empty objects and arrays are kept as leaf values so the
// round trip preserves them.
func Flatten(event map[string]any, delimiter string) map[string]any {
	flat := make(map[string]any)
	flattenInto(flat, "", event, delimiter)
	return flat
}

func flattenInto(flat map[string]any, prefix string, value any, delimiter string) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 && prefix != "" {
			flat[prefix] = v
			return
		}
		for key, child := range v {
			flattenInto(flat, joinKey(prefix, key, delimiter), child, delimiter)
		}
	case []any:
		if len(v) == 0 && prefix != "" {
			flat[prefix] = v
			return
		}
		for i, child := range v {
			flattenInto(flat, joinKey(prefix, strconv.Itoa(i), delimiter), child, delimiter)
		}
	default:
		if prefix != "" {
			flat[prefix] = v
		}
	}
}

func joinKey(prefix, key, delimiter string) string {
	if prefix == "" {
		return key
	}
	return prefix + delimiter + key
}

// Unflatten rebuilds a nested tree from a flattened map, materializing
// arrays wherever every key at a level is a contiguous run of integers
// starting at zero. The inverse of Flatten up to array/object ambiguity.
func Unflatten(flat map[string]any, delimiter string) map[string]any {
	root := make(map[string]any)
	for key, value := range flat {
		segs := strings.Split(key, delimiter)
		cursor := root
		for _, seg := range segs[:len(segs)-1] {
			next, ok := cursor[seg].(map[string]any)
			if !ok {
				// Scalar collision: deeper key wins, mirroring last-write
				// behavior of the flattening round trip.
				next = make(map[string]any)
				cursor[seg] = next
			}
			cursor = next
		}
		cursor[segs[len(segs)-1]] = value
	}
	// The root stays a map even when its keys are all numeric; only
	// nested levels materialize as arrays.
	for k, v := range root {
		root[k] = listify(v)
	}
	return root
}

// listify converts maps whose keys are exactly 0..n-1 into slices.
func listify(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	for k, v := range m {
		m[k] = listify(v)
	}
	if len(m) == 0 {
		return m
	}
	indices := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return m
		}
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for want, got := range indices {
		if want != got {
			return m
		}
	}
	list := make([]any, len(m))
	for i := range list {
		list[i] = m[strconv.Itoa(i)]
	}
	return list
}

// Normalize flattens then list-unflattens an event, canonicalizing dotted
// keys and numeric segments into one nested shape. Events already nested
// pass through with arrays intact.
func Normalize(event map[string]any) map[string]any {
	if len(event) == 0 {
		return event
	}
	return Unflatten(Flatten(event, "."), ".")
}
