// internal/fieldpath/resolve_test.go
package fieldpath

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sorsimple/obslayer/internal/types"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		event map[string]any
		want  any
		found bool
	}{
		{
			name:  "direct nested objects",
			path:  "a.b.c",
			event: map[string]any{"a": map[string]any{"b": map[string]any{"c": float64(1)}}},
			want:  float64(1),
			found: true,
		},
		{
			name: "list projection first element wins",
			path: "a.b.c",
			event: map[string]any{"a": map[string]any{"b": []any{
				map[string]any{"c": float64(1)},
				map[string]any{"c": float64(2)},
			}}},
			want:  float64(1),
			found: true,
		},
		{
			name: "list at top level",
			path: "items.id",
			event: map[string]any{"items": []any{
				map[string]any{"id": "first"},
				map[string]any{"id": "second"},
			}},
			want:  "first",
			found: true,
		},
		{
			name: "first matching element when earlier elements lack the key",
			path: "a.b",
			event: map[string]any{"a": []any{
				map[string]any{"x": "no"},
				map[string]any{"b": "yes"},
				map[string]any{"b": "later"},
			}},
			want:  "yes",
			found: true,
		},
		{
			name: "nested lists at several levels",
			path: "a.b.c",
			event: map[string]any{"a": []any{
				map[string]any{"b": []any{map[string]any{"c": "deep"}}},
			}},
			want:  "deep",
			found: true,
		},
		{
			name:  "missing leaf",
			path:  "a.b.z",
			event: map[string]any{"a": map[string]any{"b": map[string]any{"c": float64(1)}}},
			found: false,
		},
		{
			name:  "missing intermediate segment",
			path:  "a.z.c",
			event: map[string]any{"a": map[string]any{"b": map[string]any{"c": float64(1)}}},
			found: false,
		},
		{
			name:  "scalar met mid path",
			path:  "a.b.c",
			event: map[string]any{"a": map[string]any{"b": "leaf"}},
			found: false,
		},
		{
			name:  "explicit null is found",
			path:  "a.b",
			event: map[string]any{"a": map[string]any{"b": nil}},
			want:  nil,
			found: true,
		},
		{
			name:  "empty path",
			path:  "",
			event: map[string]any{"a": float64(1)},
			found: false,
		},
		{
			name:  "empty event",
			path:  "a.b",
			event: map[string]any{},
			found: false,
		},
		{
			name:  "list of scalars cannot satisfy a key",
			path:  "a.b",
			event: map[string]any{"a": []any{"x", "y"}},
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.path, tt.event)
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.path, err)
			}
			if got.Found != tt.found {
				t.Fatalf("Resolve(%q) found = %v, want %v", tt.path, got.Found, tt.found)
			}
			if !tt.found {
				return
			}
			if !equalValue(got.Value, tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.path, got.Value, tt.want)
			}
		})
	}
}

func TestResolvePathTooDeep(t *testing.T) {
	path := strings.Repeat("a.", types.MaxPathDepth) + "a"
	_, err := Resolve(path, map[string]any{"a": float64(1)})
	if !errors.Is(err, types.ErrPathTooDeep) {
		t.Fatalf("expected ErrPathTooDeep, got %v", err)
	}
}

func TestResolveNullDistinctFromAbsent(t *testing.T) {
	event := map[string]any{"a": map[string]any{"present": nil}}

	got, err := Resolve("a.present", event)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsNull() {
		t.Errorf("explicit null: got %+v, want found null", got)
	}

	got, err = Resolve("a.absent", event)
	if err != nil {
		t.Fatal(err)
	}
	if got.Found {
		t.Errorf("absent field: got %+v, want not found", got)
	}
}

func TestExtractSelected(t *testing.T) {
	event := map[string]any{
		"jsonPayload": map[string]any{
			"dataObject": map[string]any{
				"consumer": map[string]any{"id": "chan-01"},
				"messages": []any{map[string]any{"idService": "svc-9"}},
			},
		},
	}
	specs := []types.FieldSpec{
		{Path: "jsonPayload.dataObject.consumer.id", Enabled: true},
		{Path: "jsonPayload.dataObject.messages.idService", Enabled: true},
		{Path: "jsonPayload.dataObject.skipped", Enabled: false},
		{Path: "jsonPayload.dataObject.missing", Enabled: true},
	}

	got := map[string]Result{}
	for key, res := range ExtractSelected(specs, event) {
		got[key] = res
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 extracted fields, got %d: %v", len(got), got)
	}
	if v := got["id"]; !v.Found || v.Value != "chan-01" {
		t.Errorf("id = %+v", v)
	}
	if v := got["idService"]; !v.Found || v.Value != "svc-9" {
		t.Errorf("idService = %+v", v)
	}
	if v := got["missing"]; v.Found {
		t.Errorf("missing = %+v, want not found", v)
	}
	if _, ok := got["skipped"]; ok {
		t.Error("disabled spec was extracted")
	}
}

func TestExtractSelectedEarlyStop(t *testing.T) {
	specs := []types.FieldSpec{
		{Path: "a", Enabled: true},
		{Path: "b", Enabled: true},
	}
	event := map[string]any{"a": float64(1), "b": float64(2)}

	n := 0
	for range ExtractSelected(specs, event) {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("expected early stop after 1, got %d", n)
	}
}

// Planting a value at a random path inside nested objects, optionally
// wrapping levels in single-element lists, must always resolve back to
// the planted value.
func TestResolveProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genKeys := gen.SliceOfN(4, gen.RegexMatch(`[a-z]{1,8}`))

	properties.Property("planted value resolves through objects", prop.ForAll(
		func(keys []string, value string) bool {
			event := plant(keys, value, nil)
			res, err := Resolve(strings.Join(keys, "."), event)
			return err == nil && res.Found && res.Value == value
		},
		genKeys, gen.AlphaString(),
	))

	properties.Property("planted value resolves through list wrapping", prop.ForAll(
		func(keys []string, value string, wrapMask int) bool {
			wrapped := make([]bool, len(keys))
			for i := range wrapped {
				wrapped[i] = wrapMask&(1<<i) != 0
			}
			event := plant(keys, value, wrapped)
			res, err := Resolve(strings.Join(keys, "."), event)
			return err == nil && res.Found && res.Value == value
		},
		genKeys, gen.AlphaString(), gen.IntRange(0, 15),
	))

	properties.Property("never panics on arbitrary shapes", prop.ForAll(
		func(path string, depth int) bool {
			event := map[string]any{"a": map[string]any{"b": []any{"s", float64(1), nil}}}
			for i := 0; i < depth; i++ {
				event = map[string]any{"n": event}
			}
			_, err := Resolve(path, event)
			return err == nil || errors.Is(err, types.ErrPathTooDeep)
		},
		gen.RegexMatch(`[a-z.]{0,20}`), gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}

// plant builds a nested event holding value at the given key path. When
// wrapped[i] is true, the container at level i is placed inside a
// single-element list.
func plant(keys []string, value string, wrapped []bool) map[string]any {
	var cur any = value
	for i := len(keys) - 1; i >= 0; i-- {
		node := map[string]any{keys[i]: cur}
		if wrapped != nil && wrapped[i] && i > 0 {
			cur = []any{node}
		} else {
			cur = node
		}
	}
	return cur.(map[string]any)
}

func equalValue(got, want any) bool {
	if got == nil || want == nil {
		return got == want
	}
	return got == want
}
