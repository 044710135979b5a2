// internal/entity/builder.go
package entity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sorsimple/obslayer/internal/fieldpath"
	"github.com/sorsimple/obslayer/internal/jsonutil"
	"github.com/sorsimple/obslayer/internal/logging"
	"github.com/sorsimple/obslayer/internal/rules"
	"github.com/sorsimple/obslayer/internal/strategy"
	"github.com/sorsimple/obslayer/internal/types"
)

/*
 * Staged entity construction.
 *
 * An entity is assembled from one event in fixed stages:
 *
 *   WithEvent -> WithSessionData -> WithServiceData -> WithRules -> Build
 *
 * WithEvent normalizes the inbound shape (flattened or nested) once, so
 * every later stage resolves paths against the same canonical tree.
 * Stages requiring the event fail with ErrEventRequired when run early.
 * Build validates the completed entity; nothing partial ever leaves the
 * builder.
 */

// Event paths consumed during assembly.
const (
	pathSessionID   = "jsonPayload.dataObject.consumer.appConsumer.sessionId"
	pathConsumerID  = "jsonPayload.dataObject.consumer.appConsumer.id"
	pathIDService   = "jsonPayload.dataObject.messages.idService"
	pathWorkflow    = "jsonPayload.dataObject.messages.transaction.transactionName"
	pathTimestamp   = "timestamp"
	correlationDate = "20060102"
)

// CorrelationLookup resolves a session's correlation identifier from
// prior events when the current event carries no document block.
type CorrelationLookup interface {
	FindCorrelationID(ctx context.Context, sessionID, date string) (string, error)
}

// Builder assembles one entity from one event. Not safe for concurrent
// use; Reset allows reuse between events.
type Builder struct {
	log   *logging.Logger
	event map[string]any
	ent   types.Entity
}

// NewBuilder returns a builder in its initial state.
func NewBuilder(log *logging.Logger) *Builder {
	if log == nil {
		log = logging.Default()
	}
	b := &Builder{log: log}
	return b.Reset()
}

// Reset clears all accumulated state.
func (b *Builder) Reset() *Builder {
	b.event = nil
	b.ent = types.Entity{
		Data: types.EntityData{
			Service: map[string]any{},
			Rules:   map[string]any{},
		},
	}
	return b
}

// WithEvent sets and normalizes the base event.
func (b *Builder) WithEvent(event map[string]any) *Builder {
	b.event = jsonutil.Normalize(event)
	return b
}

// WithSessionData extracts the session identifier and the correlation
// identifier. When the event itself carries no document block the
// lookup, if any, is consulted with the session id and today's date;
// lookup failures leave the correlation unset rather than failing the
// event.
func (b *Builder) WithSessionData(ctx context.Context, lookup CorrelationLookup) error {
	if b.event == nil {
		return types.ErrEventRequired
	}

	sessionID := strings.TrimSpace(b.lookupString(pathSessionID))
	if sessionID == "" {
		return types.Validationf("event carries no session id")
	}
	b.ent.SessionID = sessionID

	correlation := strategy.NewContext(b.event, nil).CorrelationID()
	if correlation == "" && lookup != nil {
		date := time.Now().Format(correlationDate)
		found, err := lookup.FindCorrelationID(ctx, sessionID, date)
		if err != nil {
			b.log.Error("correlation id lookup failed",
				logging.Session(sessionID), logging.Error(err))
		} else {
			correlation = found
		}
	}
	b.ent.CorrelationID = correlation
	return nil
}

// WithServiceData resolves the consumer's service configuration against
// the event: entity names, service identifier, timestamp, and the
// configured field extractions. Fields absent from the event are
// skipped, never recorded with marker values.
func (b *Builder) WithServiceData(config []types.ConsumerConfig) error {
	if b.event == nil {
		return types.ErrEventRequired
	}

	idService := strings.TrimSpace(b.lookupString(pathIDService))
	consumerID := strings.TrimSpace(b.lookupString(pathConsumerID))
	if idService == "" || consumerID == "" {
		return types.Validationf("event carries no id_service or consumer id")
	}

	var entityNames []string
	var paths []types.FieldSpec
	for _, consumer := range config {
		if consumer.ID != consumerID {
			continue
		}
		for _, svc := range consumer.Services {
			if svc.IDService != idService {
				continue
			}
			entityNames = append(entityNames, svc.Entity...)
			paths = append(paths, svc.Paths...)
		}
	}

	// Workflow events name their entity through the transaction instead
	// of the service catalog.
	if len(entityNames) == 0 {
		if wf := b.lookupString(pathWorkflow); wf != "" {
			entityNames = []string{wf}
		}
	}

	service := map[string]any{}
	for key, res := range fieldpath.ExtractSelected(paths, b.event) {
		if !res.Found {
			continue
		}
		service[key] = res.Value
	}

	b.ent.EntityNames = entityNames
	b.ent.Data.IDService = idService
	b.ent.Data.Timestamp = b.lookupString(pathTimestamp)
	b.ent.Data.Service = service
	return nil
}

// WithRules runs the rule engine over the event and records its merged
// results. A nil engine, or one that produces nothing, leaves an empty
// rules payload; rule processing never fails the entity.
func (b *Builder) WithRules(engine *rules.Engine) *Builder {
	if engine == nil || b.event == nil {
		b.ent.Data.Rules = map[string]any{}
		return b
	}
	results := engine.ProcessEvent(b.event, time.Time{})
	if results == nil {
		results = map[string]any{}
	}
	b.ent.Data.Rules = results
	return b
}

// Build validates and returns the assembled entity.
func (b *Builder) Build() (*types.Entity, error) {
	if len(b.ent.EntityNames) == 0 {
		return nil, types.Validationf("entity must have at least one entity name")
	}
	if b.ent.SessionID == "" {
		return nil, types.Validationf("entity must have a session id")
	}
	ent := b.ent
	return &ent, nil
}

// Event exposes the normalized event for callers that feed the same
// tree into parameter extraction.
func (b *Builder) Event() map[string]any { return b.event }

func (b *Builder) lookupString(path string) string {
	res, err := fieldpath.Resolve(path, b.event)
	if err != nil || !res.Found || res.Value == nil {
		return ""
	}
	if s, ok := res.Value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", res.Value)
}
