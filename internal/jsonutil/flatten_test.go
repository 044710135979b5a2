// internal/jsonutil/flatten_test.go
package jsonutil

import (
	"reflect"
	"testing"
)

func TestFlatten(t *testing.T) {
	event := map[string]any{
		"a": map[string]any{
			"b": []any{
				map[string]any{"c": float64(1)},
				map[string]any{"c": float64(2)},
			},
		},
		"top": "x",
	}

	got := Flatten(event, ".")
	want := map[string]any{
		"a.b.0.c": float64(1),
		"a.b.1.c": float64(2),
		"top":     "x",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten = %v, want %v", got, want)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		event map[string]any
		want  map[string]any
	}{
		{
			name: "dotted keys re-nest",
			event: map[string]any{
				"jsonPayload.dataObject.operation": "transfer",
				"jsonPayload.dataObject.amount":    float64(10),
			},
			want: map[string]any{
				"jsonPayload": map[string]any{
					"dataObject": map[string]any{
						"operation": "transfer",
						"amount":    float64(10),
					},
				},
			},
		},
		{
			name: "numeric segments become arrays",
			event: map[string]any{
				"msgs.0.id": "a",
				"msgs.1.id": "b",
			},
			want: map[string]any{
				"msgs": []any{
					map[string]any{"id": "a"},
					map[string]any{"id": "b"},
				},
			},
		},
		{
			name: "nested input passes through",
			event: map[string]any{
				"a": map[string]any{"b": []any{map[string]any{"c": float64(1)}}},
			},
			want: map[string]any{
				"a": map[string]any{"b": []any{map[string]any{"c": float64(1)}}},
			},
		},
		{
			name: "non-contiguous numeric keys stay a map",
			event: map[string]any{
				"m.0.id": "a",
				"m.2.id": "b",
			},
			want: map[string]any{
				"m": map[string]any{
					"0": map[string]any{"id": "a"},
					"2": map[string]any{"id": "b"},
				},
			},
		},
		{
			name:  "empty containers survive",
			event: map[string]any{"a": map[string]any{}, "b": []any{}},
			want:  map[string]any{"a": map[string]any{}, "b": []any{}},
		},
		{
			name:  "empty event",
			event: map[string]any{},
			want:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.event); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	event := map[string]any{
		"jsonPayload": map[string]any{
			"dataObject": map[string]any{
				"messages": []any{
					map[string]any{"idService": "svc-1", "tags": []any{"a", "b"}},
				},
				"consumer": map[string]any{"appConsumer": map[string]any{"id": "c1"}},
			},
		},
	}

	got := Unflatten(Flatten(event, "."), ".")
	if !reflect.DeepEqual(got, event) {
		t.Errorf("round trip = %v, want %v", got, event)
	}
}
