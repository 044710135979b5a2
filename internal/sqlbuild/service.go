// internal/sqlbuild/service.go
package sqlbuild

import (
	"github.com/sorsimple/obslayer/internal/logging"
	"github.com/sorsimple/obslayer/internal/strategy"
	"github.com/sorsimple/obslayer/internal/types"
)

// QueryService orchestrates query construction for one consumer's query
// configuration: it validates the requested query type, picks the
// matching builder, and renders SQL text plus bind values.
type QueryService struct {
	db   *types.DBConfig
	save Builder
	find Builder
	log  *logging.Logger
}

// NewQueryService builds a query service over one consumer's database
// configuration. A nil registry means the default built-in strategies.
func NewQueryService(db *types.DBConfig, registry *strategy.Registry, log *logging.Logger) *QueryService {
	if log == nil {
		log = logging.Default()
	}
	extractor := NewExtractor(registry, log)
	return &QueryService{
		db:   db,
		save: NewSaveBuilder(extractor, log),
		find: NewFindBuilder(extractor, log),
		log:  log,
	}
}

// Build renders the configured query of the given type against the
// context. Returns a ConfigurationError when the consumer has no usable
// configuration for that type.
func (s *QueryService) Build(queryType string, ctx *strategy.Context) (string, []any, error) {
	cfg, err := s.validate(queryType, ctx)
	if err != nil {
		return "", nil, err
	}

	builder := s.find
	if queryType == types.QuerySave {
		builder = s.save
	}

	query, values, err := builder.Build(cfg, ctx)
	if err != nil {
		return "", nil, err
	}
	s.log.Debug("query built", logging.Query(query),
		logging.Field(queryType), "bind_count", len(values))
	return query, values, nil
}

// Has reports whether the consumer configures the given query type.
func (s *QueryService) Has(queryType string) bool {
	if s.db == nil {
		return false
	}
	_, ok := s.db.Querys[queryType]
	return ok
}

// Available returns the configured query types in index order.
func (s *QueryService) Available() []string {
	if s.db == nil {
		return nil
	}
	out := make([]string, 0, len(s.db.Querys))
	for k := range s.db.Querys {
		out = append(out, k)
	}
	return out
}

func (s *QueryService) validate(queryType string, ctx *strategy.Context) (types.QueryConfig, error) {
	consumer := ctx.AppConsumerID()
	if s.db == nil || len(s.db.Querys) == 0 {
		return types.QueryConfig{}, types.Configf("no database configuration for consumer %q", consumer)
	}
	cfg, ok := s.db.Querys[queryType]
	if !ok {
		return types.QueryConfig{}, types.Configf("no %q query for consumer %q", queryType, consumer)
	}
	if cfg.Query == "" {
		return types.QueryConfig{}, types.Configf("query %q has no SQL text for consumer %q", queryType, consumer)
	}
	if len(cfg.Params) == 0 {
		return types.QueryConfig{}, types.Configf("query %q has no parameters for consumer %q", queryType, consumer)
	}
	return cfg, nil
}
