// internal/sqlbuild/params.go
package sqlbuild

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/sorsimple/obslayer/internal/logging"
	"github.com/sorsimple/obslayer/internal/strategy"
	"github.com/sorsimple/obslayer/internal/types"
)

// Extractor turns the parameter specs of a query configuration into an
// ordered list of bind values, one per non-structural spec, running each
// spec's named strategy against the extraction context.
type Extractor struct {
	registry *strategy.Registry
	log      *logging.Logger
}

// NewExtractor builds an extractor. A nil registry means the default
// built-in strategies.
func NewExtractor(registry *strategy.Registry, log *logging.Logger) *Extractor {
	if registry == nil {
		registry = strategy.Default()
	}
	if log == nil {
		log = logging.Default()
	}
	return &Extractor{registry: registry, log: log}
}

// Extract resolves every parameter-typed spec, ordered by numeric index.
// Structural specs occupy no bind slot. A spec whose strategy is unknown
// or produces nothing yields an explicit nil so positional binding stays
// aligned with the declared parameter count. Composite values are
// JSON-serialized for storage.
func (x *Extractor) Extract(params map[string]types.ParameterSpec, ctx *strategy.Context) []any {
	byIndex := map[int]any{}
	indices := make([]int, 0, len(params))

	for key, spec := range params {
		if spec.Type == types.ParamStructural {
			continue
		}
		idx, err := strconv.Atoi(key)
		if err != nil {
			x.log.Error("non-numeric parameter index", logging.Field(key))
			continue
		}
		byIndex[idx] = x.extractOne(spec, ctx)
		indices = append(indices, idx)
	}

	sort.Ints(indices)
	values := make([]any, 0, len(indices))
	for _, idx := range indices {
		values = append(values, serializeComposite(byIndex[idx]))
	}
	return values
}

// extractOne runs one spec's strategy. Failures become nil values, never
// errors: a single unresolvable parameter must not block the query.
func (x *Extractor) extractOne(spec types.ParameterSpec, ctx *strategy.Context) any {
	s := x.registry.Create(spec.Requires)
	if s == nil {
		return nil
	}

	action := types.Action{
		Field: spec.Placeholder,
		Value: spec.Value,
		Query: spec.Query,
	}
	ext := &strategy.Extensions{
		Entity:  ctx.Entity,
		Custom:  ctx.Custom,
		Context: ctx,
	}

	v, ok := s.Execute(action, ctx.Event, ext)
	if !ok {
		return nil
	}
	return v
}

// serializeComposite converts maps and lists to JSON strings so they can
// bind as text columns; scalars pass through.
func serializeComposite(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(raw)
	default:
		return v
	}
}
