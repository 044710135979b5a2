// internal/fieldpath/resolve.go
package fieldpath

import (
	"strings"

	"github.com/jmespath/go-jmespath"

	"github.com/sorsimple/obslayer/internal/types"
)

/*
 * Dotted-path resolution over JSON values of unknown shape.
 *
 * Callers write paths without array-index syntax ("a.b.c"); the concrete
 * event may materialize arrays at any depth ("a" may hold a list whose
 * elements carry "b"). Resolution tries three strategies in order,
 * short-circuiting on the first non-null result:
 *
 *   1. Direct: evaluate the path as written (structure matches literally).
 *   2. Structure-aware: walk the path classifying each level, rebuild a
 *      query with explicit [0] indices where lists were projected, and
 *      evaluate the rebuilt query (analyze.go).
 *   3. Manual stepwise indexing: re-walk with a cursor, emitting indexed
 *      segments as arrays are met, and evaluate the joined path
 *      (navigate.go).
 *
 * Tie-break: when several array elements could satisfy a segment, only the
 * first matching element is used. Absence is a Result with Found=false,
 * distinct from a present-but-null value (Found=true, Value=nil).
 */

// Result is the outcome of resolving one path.
type Result struct {
	Value any  // resolved value (nil when absent or explicit null)
	Found bool // true if the path resolved to a value, including null
}

// IsNull reports an explicit null in the data (present, value nil).
func (r Result) IsNull() bool { return r.Found && r.Value == nil }

// Resolve resolves a dotted path against an event of unknown shape.
// Returns ErrPathTooDeep when the path exceeds types.MaxPathDepth; absence
// is never an error.
func Resolve(path string, event map[string]any) (Result, error) {
	if path == "" || len(event) == 0 {
		return Result{}, nil
	}
	segments := strings.Split(path, ".")
	if len(segments) > types.MaxPathDepth {
		return Result{}, types.ErrPathTooDeep
	}

	walk := analyzeLevels(segments, event)
	if !walk.complete {
		// A segment was missing: deeper segments are never touched and no
		// query strategy can recover the field.
		return Result{}, nil
	}

	if v := searchQuiet(path, event); v != nil {
		return Result{Value: v, Found: true}, nil
	}
	if v := searchQuiet(walk.rebuildQuery(), event); v != nil {
		return Result{Value: v, Found: true}, nil
	}
	if v := searchQuiet(navigateIndexed(segments, event), event); v != nil {
		return Result{Value: v, Found: true}, nil
	}

	// All strategies returned null but the walk completed: the path exists
	// and holds an explicit null (or a value the query engine cannot
	// re-derive, in which case the walk's terminal is authoritative).
	return Result{Value: walk.terminal, Found: true}, nil
}

// searchQuiet evaluates a JMESPath query, treating every failure as a
// null result so the next strategy can run.
func searchQuiet(query string, event map[string]any) any {
	if query == "" {
		return nil
	}
	v, err := jmespath.Search(query, event)
	if err != nil {
		return nil
	}
	return v
}
