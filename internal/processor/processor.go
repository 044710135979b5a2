// internal/processor/processor.go
package processor

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sorsimple/obslayer/internal/config"
	"github.com/sorsimple/obslayer/internal/entity"
	"github.com/sorsimple/obslayer/internal/jsonutil"
	"github.com/sorsimple/obslayer/internal/logging"
	"github.com/sorsimple/obslayer/internal/rules"
	"github.com/sorsimple/obslayer/internal/sqlbuild"
	"github.com/sorsimple/obslayer/internal/strategy"
	"github.com/sorsimple/obslayer/internal/types"
)

/*
 * Event processing pipeline.
 *
 * One Processor ties the whole flow together for a loaded configuration
 * document:
 *
 *   ParseRecord -> RulesFor -> BuildEntity -> SaveEntity
 *
 * ProcessAndSave runs the sequence for one raw queue record. Records
 * arrive as JSON objects whose "body" may itself be a JSON string, and
 * that string may wrap another one; unwrapping is bounded by
 * types.MaxBodyNesting. A record without a body is treated as a bare
 * event.
 */

const datePartition = "20060102"

// Store is the persistence surface the pipeline needs: executing
// document-built queries and recording the journal and correlation
// cache. *store.Repository satisfies it.
type Store interface {
	Exec(ctx context.Context, query string, args []any) error
	QueryString(ctx context.Context, query string, args []any) (string, error)
	AppendJournal(ctx context.Context, ent *types.Entity) error
	RememberCorrelation(ctx context.Context, sessionID, date, correlationID string) error
	FindCorrelationID(ctx context.Context, sessionID, date string) (string, error)
}

// Processor runs the extraction pipeline for one configuration document.
type Processor struct {
	doc      *config.Document
	store    Store
	registry *strategy.Registry
	log      *logging.Logger
}

// New builds a processor. A nil registry means the default built-in
// strategies; a nil store disables persistence and correlation lookups,
// which still allows dry-run entity construction.
func New(doc *config.Document, st Store, registry *strategy.Registry, log *logging.Logger) *Processor {
	if registry == nil {
		registry = strategy.Default()
	}
	if log == nil {
		log = logging.Default()
	}
	return &Processor{doc: doc, store: st, registry: registry, log: log}
}

// ParseRecord decodes one raw queue record into the event it carries.
// The record's "body" field is unwrapped while it remains a JSON string;
// a record without a "body" field is taken to be the event itself.
func (p *Processor) ParseRecord(raw []byte) (map[string]any, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, types.Validationf("decoding record: %v", err)
	}

	for i := 0; i < types.MaxBodyNesting; i++ {
		s, ok := decoded.(string)
		if !ok {
			break
		}
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			break
		}
		decoded = inner
	}

	record, ok := decoded.(map[string]any)
	if !ok {
		return nil, types.Validationf("record is not a JSON object")
	}

	body, ok := record["body"]
	if !ok {
		return record, nil
	}
	for i := 0; i < types.MaxBodyNesting; i++ {
		s, ok := body.(string)
		if !ok {
			break
		}
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			break
		}
		body = inner
	}
	event, ok := body.(map[string]any)
	if !ok {
		return nil, types.Validationf("record body is not a JSON object")
	}
	return event, nil
}

// RulesFor returns the consumer's rules applicable to the event's
// service, matched on the rule's event type. Nil when the event carries
// no consumer or service identity, or nothing matches. The event is
// re-nested first so pre-flattened records resolve their identity paths.
func (p *Processor) RulesFor(event map[string]any) []types.Rule {
	ctx := strategy.NewContext(jsonutil.Normalize(event), p.doc.Consumers)
	consumerID := strings.TrimSpace(ctx.AppConsumerID())
	idService := strings.TrimSpace(ctx.IDService())
	if consumerID == "" || idService == "" {
		p.log.Warn("event carries no consumer or service identity")
		return nil
	}

	all := p.doc.Rules(consumerID)
	if len(all) == 0 {
		p.log.Info("no rules configured", logging.Consumer(consumerID))
		return nil
	}

	var matched []types.Rule
	for _, r := range all {
		if r.EventType == idService {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		p.log.Info("no rules for service",
			logging.Consumer(consumerID), logging.Service(idService))
	}
	return matched
}

// BuildEntity assembles the entity for one event, running the given
// rules through the engine. It returns the entity together with the
// normalized event tree the later save step resolves against.
func (p *Processor) BuildEntity(ctx context.Context, event map[string]any, rls []types.Rule) (*types.Entity, map[string]any, error) {
	b := entity.NewBuilder(p.log).WithEvent(event)

	var lookup entity.CorrelationLookup
	if p.store != nil {
		lookup = p.store
	}
	if err := b.WithSessionData(ctx, lookup); err != nil {
		return nil, nil, err
	}
	if err := b.WithServiceData(p.doc.Consumers); err != nil {
		return nil, nil, err
	}

	var engine *rules.Engine
	if len(rls) > 0 {
		ext := &strategy.Extensions{
			Context: strategy.NewContext(b.Event(), p.doc.Consumers),
		}
		engine = rules.NewEngine(rls, p.registry, ext, p.log)
	}
	b.WithRules(engine)

	ent, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return ent, b.Event(), nil
}

// SaveEntity persists the entity under each of its entity names using
// the consumer's configured save query, then records the journal entry
// and the session's correlation identifier. Journal and correlation
// writes are best effort; a failed save query is not.
func (p *Processor) SaveEntity(ctx context.Context, ent *types.Entity, event map[string]any) error {
	if p.store == nil {
		return types.Configf("no store configured")
	}

	base := strategy.NewContext(event, p.doc.Consumers)
	svc := sqlbuild.NewQueryService(base.DBConfig(), p.registry, p.log)

	for _, name := range ent.EntityNames {
		// Rebuild the context per name so structural entity_names
		// placeholders render the table being written.
		scoped := *ent
		scoped.EntityNames = []string{name}
		c := strategy.NewContext(event, p.doc.Consumers)
		c.Entity = &scoped

		query, values, err := svc.Build(types.QuerySave, c)
		if err != nil {
			return err
		}
		if err := p.store.Exec(ctx, query, values); err != nil {
			return err
		}
		p.log.Debug("entity saved", logging.Session(ent.SessionID), "entity_name", name)
	}

	if err := p.store.AppendJournal(ctx, ent); err != nil {
		p.log.Error("journal append failed",
			logging.Session(ent.SessionID), logging.Error(err))
	}
	if ent.CorrelationID != "" {
		date := time.Now().Format(datePartition)
		if err := p.store.RememberCorrelation(ctx, ent.SessionID, date, ent.CorrelationID); err != nil {
			p.log.Error("correlation cache write failed",
				logging.Session(ent.SessionID), logging.Error(err))
		}
	}
	return nil
}

// Find runs one of the consumer's configured lookup queries against the
// store and returns the first column of the first row, or "" when the
// query resolves no rows.
func (p *Processor) Find(ctx context.Context, queryType string, ent *types.Entity, event map[string]any) (string, error) {
	if p.store == nil {
		return "", types.Configf("no store configured")
	}
	c := strategy.NewContext(event, p.doc.Consumers)
	c.Entity = ent
	svc := sqlbuild.NewQueryService(c.DBConfig(), p.registry, p.log)
	query, values, err := svc.Build(queryType, c)
	if err != nil {
		return "", err
	}
	return p.store.QueryString(ctx, query, values)
}

// ProcessAndSave runs the full pipeline for one raw record.
func (p *Processor) ProcessAndSave(ctx context.Context, raw []byte) (*types.Entity, error) {
	run := types.NewRunID()
	log := p.log.With("run_id", string(run))

	event, err := p.ParseRecord(raw)
	if err != nil {
		log.Error("record parse failed", logging.Error(err))
		return nil, err
	}

	rls := p.RulesFor(event)
	ent, normalized, err := p.BuildEntity(ctx, event, rls)
	if err != nil {
		log.Error("entity build failed", logging.Error(err))
		return nil, err
	}
	if err := p.SaveEntity(ctx, ent, normalized); err != nil {
		log.Error("entity save failed", logging.Error(err))
		return nil, err
	}
	log.Info("event processed",
		logging.Session(ent.SessionID),
		logging.Service(ent.Data.IDService),
		"entity_names", ent.EntityNames)
	return ent, nil
}
