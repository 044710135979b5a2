// internal/fieldpath/navigate.go
package fieldpath

import "strings"

// navigateIndexed re-walks the path with a cursor over the concrete
// event, emitting one query segment per step. Whenever the cursor lands
// on a list, the previously emitted segment is indexed with [0] and the
// cursor descends into the first element before the current key is
// applied. The returned query is the joined, fully indexed path; it is
// empty when navigation stalls before the first segment.
func navigateIndexed(segments []string, event map[string]any) string {
	var cur any = event
	parts := make([]string, 0, len(segments))
	for _, key := range segments {
		if list, ok := cur.([]any); ok {
			if len(list) == 0 || len(parts) == 0 {
				return ""
			}
			parts[len(parts)-1] += "[0]"
			cur = list[0]
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		v, ok := obj[key]
		if !ok {
			return ""
		}
		parts = append(parts, key)
		cur = v
	}
	return strings.Join(parts, ".")
}
