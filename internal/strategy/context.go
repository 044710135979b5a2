// internal/strategy/context.go
package strategy

import (
	"fmt"
	"time"

	"github.com/sorsimple/obslayer/internal/fieldpath"
	"github.com/sorsimple/obslayer/internal/types"
)

// Well-known event paths consulted by the context. These are fixed by the
// upstream event envelope, not by consumer configuration.
const (
	pathAppConsumerID  = "jsonPayload.dataObject.consumer.appConsumer.id"
	pathSessionID      = "jsonPayload.dataObject.consumer.appConsumer.sessionId"
	pathIDService      = "jsonPayload.dataObject.messages.idService"
	pathDocument       = "jsonPayload.dataObject.documento"
	pathClientDocument = "jsonPayload.dataObject.client.documentClient"
)

// Context bundles everything parameter extraction may need: the event,
// the loaded consumer configurations, the entity assembled so far, and
// caller-provided custom values. Event lookups are cached after the
// first resolution; a Context is not safe for concurrent use.
type Context struct {
	Event  map[string]any
	Config []types.ConsumerConfig
	Entity *types.Entity
	Custom map[string]any

	appConsumerID *string
	idService     *string
	sessionID     *string
	dbConfig      *types.DBConfig
}

// NewContext builds a context for one event against the loaded consumer
// configurations.
func NewContext(event map[string]any, config []types.ConsumerConfig) *Context {
	return &Context{Event: event, Config: config, Custom: map[string]any{}}
}

// AppConsumerID returns the consumer channel identifier from the event,
// or "" when absent.
func (c *Context) AppConsumerID() string {
	if c.appConsumerID == nil {
		c.appConsumerID = ptr(c.lookupString(pathAppConsumerID))
	}
	return *c.appConsumerID
}

// SessionID returns the session identifier from the event, or "".
func (c *Context) SessionID() string {
	if c.sessionID == nil {
		c.sessionID = ptr(c.lookupString(pathSessionID))
	}
	return *c.sessionID
}

// IDService returns the service identifier from the event, or "".
func (c *Context) IDService() string {
	if c.idService == nil {
		c.idService = ptr(c.lookupString(pathIDService))
	}
	return *c.idService
}

// DBConfig returns the query configuration of the consumer the event
// belongs to, or nil when the consumer is unknown.
func (c *Context) DBConfig() *types.DBConfig {
	if c.dbConfig == nil {
		id := c.AppConsumerID()
		for i := range c.Config {
			if c.Config[i].ID == id {
				c.dbConfig = &c.Config[i].Config.DB
				break
			}
		}
	}
	return c.dbConfig
}

// EntityName returns the primary entity name, or "".
func (c *Context) EntityName() string {
	if c.Entity == nil {
		return ""
	}
	return c.Entity.Name()
}

// CorrelationID derives the correlation identifier from the event's
// document block: "<tipo>-<numero>" from the first of the known document
// paths that carries both parts. Returns "" when no document qualifies.
func (c *Context) CorrelationID() string {
	for _, path := range []string{pathDocument, pathClientDocument} {
		res, err := fieldpath.Resolve(path, c.Event)
		if err != nil || !res.Found {
			continue
		}
		doc, ok := res.Value.(map[string]any)
		if !ok {
			continue
		}
		tipo := firstString(doc, "tipo", "type")
		numero := firstString(doc, "numero", "number")
		if tipo != "" && numero != "" {
			return tipo + "-" + numero
		}
	}
	return ""
}

// DateString formats the current instant with a strftime-style pattern.
func (c *Context) DateString(format string) string {
	return time.Now().Format(strftimeLayout(format))
}

// ContextValue returns a caller-provided custom value, or def.
func (c *Context) ContextValue(key string, def any) any {
	if v, ok := c.Custom[key]; ok {
		return v
	}
	return def
}

func (c *Context) lookupString(path string) string {
	res, err := fieldpath.Resolve(path, c.Event)
	if err != nil || !res.Found || res.Value == nil {
		return ""
	}
	if s, ok := res.Value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", res.Value)
}

func firstString(doc map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := doc[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func ptr(s string) *string { return &s }
