// internal/sqlbuild/builder.go
package sqlbuild

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sorsimple/obslayer/internal/logging"
	"github.com/sorsimple/obslayer/internal/strategy"
	"github.com/sorsimple/obslayer/internal/types"
)

/*
 * Query builders.
 *
 * A query template carries one {i} slot per declared parameter spec.
 * Structural specs substitute resolved text into the template (entity
 * name, table, schema); parameter specs substitute their placeholder
 * token (the bind marker) and contribute one bind value each.
 *
 * Templates use "?" bind markers regardless of driver; the store layer
 * rebinds for the target database.
 */

// Builder renders one query type into SQL text plus ordered bind values.
type Builder interface {
	Build(cfg types.QueryConfig, ctx *strategy.Context) (string, []any, error)
}

// Structural placeholder vocabulary and its fallbacks.
const (
	placeholderEntityNames = "entity_names"
	placeholderTableName   = "table_name"
	placeholderSchemaName  = "schema_name"

	defaultEntityName = "default_entity"
	defaultTableName  = "default_table"
	defaultSchemaName = "public"
)

// SaveBuilder renders insert queries. Every declared parameter keeps its
// bind slot: unresolved parameters bind explicit NULLs so the column
// list and value list stay aligned.
type SaveBuilder struct {
	extractor *Extractor
	log       *logging.Logger
}

// NewSaveBuilder builds a save-query builder.
func NewSaveBuilder(extractor *Extractor, log *logging.Logger) *SaveBuilder {
	if log == nil {
		log = logging.Default()
	}
	return &SaveBuilder{extractor: extractor, log: log}
}

func (b *SaveBuilder) Build(cfg types.QueryConfig, ctx *strategy.Context) (string, []any, error) {
	query, err := formatTemplate(cfg.Query, cfg.Params, ctx, b.log)
	if err != nil {
		return "", nil, err
	}
	return query, b.extractor.Extract(cfg.Params, ctx), nil
}

// FindBuilder renders lookup queries ("find" and the correlation
// lookup). Trailing unresolved parameters are dropped so a partially
// resolvable filter still matches on its leading columns.
type FindBuilder struct {
	extractor *Extractor
	log       *logging.Logger
}

// NewFindBuilder builds a find-query builder.
func NewFindBuilder(extractor *Extractor, log *logging.Logger) *FindBuilder {
	if log == nil {
		log = logging.Default()
	}
	return &FindBuilder{extractor: extractor, log: log}
}

func (b *FindBuilder) Build(cfg types.QueryConfig, ctx *strategy.Context) (string, []any, error) {
	query, err := formatTemplate(cfg.Query, cfg.Params, ctx, b.log)
	if err != nil {
		return "", nil, err
	}
	values := b.extractor.Extract(cfg.Params, ctx)
	for len(values) > 0 && values[len(values)-1] == nil {
		values = values[:len(values)-1]
	}
	return query, values, nil
}

// formatTemplate substitutes the template's {i} slots: resolved text for
// structural specs, the placeholder token for parameter specs. Slots
// beyond the declared specs are a document error.
func formatTemplate(template string, params map[string]types.ParameterSpec, ctx *strategy.Context, log *logging.Logger) (string, error) {
	replacements := map[int]string{}
	max := -1
	for key, spec := range params {
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if spec.Type == types.ParamStructural {
			replacements[idx] = resolveStructural(spec.Placeholder, ctx, log)
		} else {
			replacements[idx] = spec.Placeholder
		}
		if idx > max {
			max = idx
		}
	}

	ordered := make([]string, max+1)
	for i := 0; i <= max; i++ {
		if r, ok := replacements[i]; ok {
			ordered[i] = r
		} else {
			ordered[i] = fmt.Sprintf("placeholder_%d", i)
		}
	}
	return substitute(template, ordered)
}

// resolveStructural maps a structural placeholder name to its text.
// Unknown names pass through verbatim with a warning so the rendered
// query surfaces the document mistake.
func resolveStructural(name string, ctx *strategy.Context, log *logging.Logger) string {
	switch name {
	case placeholderEntityNames:
		if n := ctx.EntityName(); n != "" {
			return n
		}
		return defaultEntityName
	case placeholderTableName:
		return fmt.Sprintf("%v", ctx.ContextValue(placeholderTableName, defaultTableName))
	case placeholderSchemaName:
		return fmt.Sprintf("%v", ctx.ContextValue(placeholderSchemaName, defaultSchemaName))
	default:
		log.Warn("no resolver for structural placeholder", logging.Field(name))
		return name
	}
}

// substitute renders both slot styles the documents use: indexed "{0}"
// slots, or bare "{}" slots filled left to right.
func substitute(template string, ordered []string) (string, error) {
	if strings.Contains(template, "{}") {
		var sb strings.Builder
		rest := template
		for _, r := range ordered {
			i := strings.Index(rest, "{}")
			if i < 0 {
				break
			}
			sb.WriteString(rest[:i])
			sb.WriteString(r)
			rest = rest[i+2:]
		}
		if strings.Contains(rest, "{}") {
			return "", types.Configf("query template has more slots than declared parameters")
		}
		sb.WriteString(rest)
		return sb.String(), nil
	}

	out := template
	for i := len(ordered) - 1; i >= 0; i-- {
		out = strings.ReplaceAll(out, "{"+strconv.Itoa(i)+"}", ordered[i])
	}
	if indexedSlot.MatchString(out) {
		return "", types.Configf("query template has more slots than declared parameters")
	}
	return out, nil
}

var indexedSlot = regexp.MustCompile(`\{\d+\}`)
