// internal/fieldpath/extract.go
package fieldpath

import (
	"iter"

	"github.com/sorsimple/obslayer/internal/types"
)

// ExtractSelected resolves every enabled field spec against the event,
// yielding (key, result) pairs where the key is the final segment of the
// spec's path. Disabled specs are skipped entirely; absent fields are
// yielded with Found=false so callers decide how to surface them.
func ExtractSelected(specs []types.FieldSpec, event map[string]any) iter.Seq2[string, Result] {
	return func(yield func(string, Result) bool) {
		for _, spec := range specs {
			if !spec.Enabled {
				continue
			}
			res, err := Resolve(spec.Path, event)
			if err != nil {
				res = Result{}
			}
			if !yield(spec.Key(), res) {
				return
			}
		}
	}
}
