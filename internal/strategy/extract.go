// internal/strategy/extract.go
package strategy

import (
	"fmt"
	"strings"

	"github.com/jmespath/go-jmespath"

	"github.com/sorsimple/obslayer/internal/jsonutil"
	"github.com/sorsimple/obslayer/internal/types"
)

// ExtractValue runs the action's configured query. In the plain mode the
// query is evaluated over the re-nested event. In extension mode
// (require_ext "true") the query is first parameterized with the value of
// the action's condition field and then evaluated over the auxiliary
// dataset named by name_ext. Parameterization substitutes every "{}"
// placeholder in the query text.
type ExtractValue struct{}

func (ExtractValue) Execute(action types.Action, event map[string]any, ext *Extensions) (any, bool) {
	if action.Query == "" {
		return nil, false
	}
	tree := jsonutil.Normalize(event)

	if strings.EqualFold(action.RequireExt, "true") && ext != nil {
		return searchExtension(action, tree, ext)
	}

	v, err := jmespath.Search(action.Query, tree)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

func searchExtension(action types.Action, tree map[string]any, ext *Extensions) (any, bool) {
	query := action.Query
	if field := conditionField(action); field != "" {
		if v, err := jmespath.Search(field, tree); err == nil && v != nil {
			query = strings.ReplaceAll(query, "{}", fmt.Sprintf("%v", v))
		}
	}

	dataset := ext.Dataset(action.NameExt)
	if dataset == nil {
		return nil, false
	}
	v, err := jmespath.Search(query, dataset)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// conditionField returns the field of the action's first condition, the
// one whose event value parameterizes extension queries.
func conditionField(action types.Action) string {
	if len(action.Conditions) == 0 {
		return ""
	}
	return action.Conditions[0].Field
}
