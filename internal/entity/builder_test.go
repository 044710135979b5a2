// internal/entity/builder_test.go
package entity

import (
	"context"
	"errors"
	"testing"

	"github.com/sorsimple/obslayer/internal/rules"
	"github.com/sorsimple/obslayer/internal/types"
)

type stubLookup struct {
	id  string
	err error

	gotSession string
}

func (s *stubLookup) FindCorrelationID(_ context.Context, sessionID, _ string) (string, error) {
	s.gotSession = sessionID
	return s.id, s.err
}

func testEvent() map[string]any {
	return map[string]any{
		"timestamp": "2026-02-01T12:00:00Z",
		"jsonPayload": map[string]any{
			"dataObject": map[string]any{
				"consumer": map[string]any{
					"appConsumer": map[string]any{"id": "chan-1", "sessionId": " sess-9 "},
				},
				"messages": []any{
					map[string]any{"idService": "svc-1"},
				},
				"documento": map[string]any{"tipo": "DNI", "numero": "123"},
				"operation": "transfer",
			},
		},
	}
}

func testConfig() []types.ConsumerConfig {
	return []types.ConsumerConfig{{
		ID: "chan-1",
		Services: []types.ServiceConfig{{
			IDService: "svc-1",
			Entity:    []string{"payments"},
			Paths: []types.FieldSpec{
				{Path: "jsonPayload.dataObject.operation", Enabled: true},
				{Path: "jsonPayload.dataObject.absent", Enabled: true},
				{Path: "jsonPayload.dataObject.consumer.appConsumer.id", Enabled: false},
			},
		}},
	}}
}

func TestBuilderFullAssembly(t *testing.T) {
	ruleSet := []types.Rule{{
		ID:       "r1",
		Priority: 1,
		Conditions: []types.Condition{
			{Operator: "equals", Field: "jsonPayload.dataObject.operation", Value: "transfer"},
		},
		Actions: []types.Action{
			{Field: "movement", Kind: "set_fixed_value", Value: "out"},
		},
	}}

	b := NewBuilder(nil).WithEvent(testEvent())
	if err := b.WithSessionData(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if err := b.WithServiceData(testConfig()); err != nil {
		t.Fatal(err)
	}
	ent, err := b.WithRules(rules.NewEngine(ruleSet, nil, nil, nil)).Build()
	if err != nil {
		t.Fatal(err)
	}

	if ent.SessionID != "sess-9" {
		t.Errorf("SessionID = %q, want trimmed sess-9", ent.SessionID)
	}
	if ent.CorrelationID != "DNI-123" {
		t.Errorf("CorrelationID = %q", ent.CorrelationID)
	}
	if ent.Name() != "payments" {
		t.Errorf("entity names = %v", ent.EntityNames)
	}
	if ent.Data.IDService != "svc-1" || ent.Data.Timestamp != "2026-02-01T12:00:00Z" {
		t.Errorf("data = %+v", ent.Data)
	}
	if ent.Data.Service["operation"] != "transfer" {
		t.Errorf("service data = %v", ent.Data.Service)
	}
	if _, ok := ent.Data.Service["absent"]; ok {
		t.Error("absent field was recorded in service data")
	}
	if _, ok := ent.Data.Service["id"]; ok {
		t.Error("disabled path was extracted")
	}
	if ent.Data.Rules["movement"] != "out" {
		t.Errorf("rules data = %v", ent.Data.Rules)
	}
}

func TestBuilderStageOrder(t *testing.T) {
	b := NewBuilder(nil)

	if err := b.WithSessionData(context.Background(), nil); !errors.Is(err, types.ErrEventRequired) {
		t.Errorf("WithSessionData before WithEvent: err = %v", err)
	}
	if err := b.WithServiceData(testConfig()); !errors.Is(err, types.ErrEventRequired) {
		t.Errorf("WithServiceData before WithEvent: err = %v", err)
	}
}

func TestBuilderMissingSessionID(t *testing.T) {
	event := testEvent()
	consumer := event["jsonPayload"].(map[string]any)["dataObject"].(map[string]any)["consumer"].(map[string]any)
	delete(consumer["appConsumer"].(map[string]any), "sessionId")

	err := NewBuilder(nil).WithEvent(event).WithSessionData(context.Background(), nil)
	if !types.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestBuilderCorrelationLookupFallback(t *testing.T) {
	event := testEvent()
	data := event["jsonPayload"].(map[string]any)["dataObject"].(map[string]any)
	delete(data, "documento")

	t.Run("lookup provides the id", func(t *testing.T) {
		lookup := &stubLookup{id: "CE-77"}
		b := NewBuilder(nil).WithEvent(event)
		if err := b.WithSessionData(context.Background(), lookup); err != nil {
			t.Fatal(err)
		}
		if lookup.gotSession != "sess-9" {
			t.Errorf("lookup session = %q", lookup.gotSession)
		}
		if err := b.WithServiceData(testConfig()); err != nil {
			t.Fatal(err)
		}
		ent, err := b.WithRules(nil).Build()
		if err != nil {
			t.Fatal(err)
		}
		if ent.CorrelationID != "CE-77" {
			t.Errorf("CorrelationID = %q", ent.CorrelationID)
		}
	})

	t.Run("lookup failure leaves it unset", func(t *testing.T) {
		lookup := &stubLookup{err: errors.New("db down")}
		b := NewBuilder(nil).WithEvent(event)
		if err := b.WithSessionData(context.Background(), lookup); err != nil {
			t.Fatal(err)
		}
		if err := b.WithServiceData(testConfig()); err != nil {
			t.Fatal(err)
		}
		ent, err := b.WithRules(nil).Build()
		if err != nil {
			t.Fatal(err)
		}
		if ent.CorrelationID != "" {
			t.Errorf("CorrelationID = %q, want empty", ent.CorrelationID)
		}
	})
}

func TestBuilderWorkflowEntityNameFallback(t *testing.T) {
	event := testEvent()
	data := event["jsonPayload"].(map[string]any)["dataObject"].(map[string]any)
	data["messages"] = []any{map[string]any{
		"idService": "svc-wf",
		"transaction": map[string]any{
			"transactionName": "onboarding",
		},
	}}

	b := NewBuilder(nil).WithEvent(event)
	if err := b.WithSessionData(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	// svc-wf is not in the catalog: the transaction name must fill in.
	if err := b.WithServiceData(testConfig()); err != nil {
		t.Fatal(err)
	}
	ent, err := b.WithRules(nil).Build()
	if err != nil {
		t.Fatal(err)
	}
	if ent.Name() != "onboarding" {
		t.Errorf("entity names = %v, want [onboarding]", ent.EntityNames)
	}
}

func TestBuilderRejectsUnnamedEntity(t *testing.T) {
	event := testEvent()
	data := event["jsonPayload"].(map[string]any)["dataObject"].(map[string]any)
	data["messages"] = []any{map[string]any{"idService": "svc-unknown"}}

	b := NewBuilder(nil).WithEvent(event)
	if err := b.WithSessionData(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if err := b.WithServiceData(testConfig()); err != nil {
		t.Fatal(err)
	}
	if _, err := b.WithRules(nil).Build(); !types.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestBuilderNormalizesFlattenedEvents(t *testing.T) {
	flat := map[string]any{
		"timestamp": "2026-02-01T12:00:00Z",
		"jsonPayload.dataObject.consumer.appConsumer.id":        "chan-1",
		"jsonPayload.dataObject.consumer.appConsumer.sessionId": "sess-9",
		"jsonPayload.dataObject.messages.0.idService":           "svc-1",
		"jsonPayload.dataObject.operation":                      "transfer",
		"jsonPayload.dataObject.documento.tipo":                 "DNI",
		"jsonPayload.dataObject.documento.numero":               "123",
	}

	b := NewBuilder(nil).WithEvent(flat)
	if err := b.WithSessionData(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if err := b.WithServiceData(testConfig()); err != nil {
		t.Fatal(err)
	}
	ent, err := b.WithRules(nil).Build()
	if err != nil {
		t.Fatal(err)
	}
	if ent.Data.IDService != "svc-1" || ent.Data.Service["operation"] != "transfer" {
		t.Errorf("flattened event not normalized: %+v", ent.Data)
	}
}

func TestBuilderReset(t *testing.T) {
	b := NewBuilder(nil).WithEvent(testEvent())
	if err := b.WithSessionData(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	b.Reset()
	if err := b.WithSessionData(context.Background(), nil); !errors.Is(err, types.ErrEventRequired) {
		t.Errorf("after Reset: err = %v, want ErrEventRequired", err)
	}
}
