// internal/strategy/registry.go
package strategy

import (
	"strings"
	"sync"

	"github.com/sorsimple/obslayer/internal/logging"
)

// Registered strategy names. Documents reference them from the
// "calculate", "action", and "requires" keys.
const (
	KindSetFixedValue = "set_fixed_value"
	KindSetValue      = "set_value"
	KindExtractValue  = "extract_value"
	KindEventField    = "event_field"
	KindDatetimeNow   = "datetime_now"
	KindEntityData    = "entity_data"
	KindContextValue  = "context_value"
)

// Registry maps strategy names to implementations. Lookup is
// case-insensitive; registration is first-writer-wins so repeated
// registration of the same name is idempotent.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]ActionStrategy
	log    *logging.Logger
}

// NewRegistry returns an empty registry logging through log.
func NewRegistry(log *logging.Logger) *Registry {
	if log == nil {
		log = logging.Default()
	}
	return &Registry{byName: map[string]ActionStrategy{}, log: log}
}

// Register binds a strategy to a name. The first registration for a name
// wins; later ones are ignored.
func (r *Registry) Register(name string, s ActionStrategy) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[key]; ok {
		return
	}
	r.byName[key] = s
}

// Create returns the strategy registered under name, or nil with a
// warning when the name is unknown. Unknown action types are a document
// problem, not a processing failure.
func (r *Registry) Create(name string) ActionStrategy {
	key := strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	s := r.byName[key]
	r.mu.RUnlock()
	if s == nil {
		r.log.Warn("unsupported action type", logging.Strategy(name))
	}
	return s
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry with every built-in strategy
// registered.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(logging.Default())
		registerBuiltins(defaultRegistry)
	})
	return defaultRegistry
}

func registerBuiltins(r *Registry) {
	r.Register(KindSetFixedValue, SetFixedValue{})
	r.Register(KindSetValue, SetValue{})
	r.Register(KindExtractValue, ExtractValue{})
	r.Register(KindEventField, EventField{})
	r.Register(KindDatetimeNow, DatetimeNow{})
	r.Register(KindEntityData, EntityData{})
	r.Register(KindContextValue, ContextValue{})
}
