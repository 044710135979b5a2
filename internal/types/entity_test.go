package types

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestEntityRoundTrip(t *testing.T) {
	in := Entity{
		EntityNames:   []string{"payments", "audits"},
		SessionID:     "sess-9",
		CorrelationID: "DNI-123",
		Data: EntityData{
			IDService: "svc-1",
			Timestamp: "2026-02-01T12:00:00Z",
			Service:   map[string]any{"operation": "transfer", "amount": float64(10)},
			Rules:     map[string]any{"movement": "out"},
		},
	}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out Entity
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip changed entity:\n in  %+v\n out %+v", in, out)
	}
}

func TestEntityDataField(t *testing.T) {
	d := EntityData{
		IDService: "svc-1",
		Timestamp: "2026-02-01T12:00:00Z",
		Service:   map[string]any{"operation": "transfer", "movement": "in"},
		Rules:     map[string]any{"movement": "out"},
	}

	tests := []struct {
		name  string
		want  any
		found bool
	}{
		{"movement", "out", true}, // rule-derived shadows service
		{"operation", "transfer", true},
		{"id_service", "svc-1", true},
		{"timestamp", "2026-02-01T12:00:00Z", true},
		{"absent", nil, false},
	}
	for _, tc := range tests {
		got, ok := d.Field(tc.name)
		if ok != tc.found || got != tc.want {
			t.Errorf("Field(%q) = (%v, %v), want (%v, %v)", tc.name, got, ok, tc.want, tc.found)
		}
	}

	if _, ok := (EntityData{}).Field("id_service"); ok {
		t.Error("empty id_service reported as present")
	}
}

func TestEntityDataMerged(t *testing.T) {
	d := EntityData{
		IDService: "svc-1",
		Service:   map[string]any{"movement": "in", "operation": "transfer"},
		Rules:     map[string]any{"movement": "out"},
	}
	got := d.Merged()
	want := map[string]any{
		"id_service": "svc-1",
		"movement":   "out",
		"operation":  "transfer",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merged() = %v, want %v", got, want)
	}
}

func TestEntityName(t *testing.T) {
	if n := (&Entity{}).Name(); n != "" {
		t.Errorf("empty entity Name() = %q", n)
	}
	e := &Entity{EntityNames: []string{"payments", "audits"}}
	if n := e.Name(); n != "payments" {
		t.Errorf("Name() = %q", n)
	}
}
