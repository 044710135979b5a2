// internal/fieldpath/analyze.go
package fieldpath

import "strings"

// level records how one path segment was satisfied during the walk.
type level struct {
	key string
	// projected is true when the segment was found by scanning a list of
	// objects for the first element carrying the key. The rebuilt query
	// then indexes the parent segment with [0].
	projected bool
}

// walkResult is the per-level classification of a path against one event.
type walkResult struct {
	levels   []level
	terminal any  // value at the final segment, valid when complete
	complete bool // every segment was satisfied
}

// analyzeLevels walks the path one segment at a time, classifying the
// container met at each level. Objects are descended by key; lists are
// scanned for the first element (an object) that carries the key. A
// scalar met mid-path, or a missing key, ends the walk incomplete.
func analyzeLevels(segments []string, event map[string]any) walkResult {
	var w walkResult
	var cur any = event
	for _, key := range segments {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[key]
			if !ok {
				return w
			}
			w.levels = append(w.levels, level{key: key})
			cur = v
		case []any:
			v, ok := firstWithKey(node, key)
			if !ok {
				return w
			}
			w.levels = append(w.levels, level{key: key, projected: true})
			cur = v
		default:
			return w
		}
	}
	w.terminal = cur
	w.complete = true
	return w
}

// firstWithKey returns the value of key in the first list element that is
// an object carrying it.
func firstWithKey(list []any, key string) (any, bool) {
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			if v, ok := obj[key]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

// rebuildQuery reconstructs a query with explicit indices: every segment
// whose child was satisfied through a list projection gets [0] appended,
// pinning resolution to the first matching element.
func (w walkResult) rebuildQuery() string {
	if len(w.levels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(w.levels))
	for _, lv := range w.levels {
		if lv.projected && len(parts) > 0 {
			parts[len(parts)-1] += "[0]"
		}
		parts = append(parts, lv.key)
	}
	return strings.Join(parts, ".")
}
