// internal/types/config.go
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

/*
 * Wire format of the consumer configuration documents.
 *
 * A document is a list of per-consumer configurations: extraction paths per
 * service, business rules, and parameterized query templates under
 * config.db.querys. Documents are externally edited; everything here is
 * tolerant of the historical quirks of that format ("querys" spelling,
 * string booleans, paths as two-element arrays).
 */

// FieldSpec is one configured extraction: a dotted path plus an enabled
// flag. The document encodes it as a two-element string array
// ["a.b.c", "true"]; disabled specs are skipped and never appear in output.
type FieldSpec struct {
	Path    string
	Enabled bool
}

// UnmarshalJSON accepts the document's ["path", "true"/"false"] form.
func (f *FieldSpec) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("path spec must be [path, enabled], got %d elements", len(pair))
	}
	f.Path = pair[0]
	f.Enabled = strings.EqualFold(pair[1], "true")
	return nil
}

// MarshalJSON emits the document's two-element array form.
func (f FieldSpec) MarshalJSON() ([]byte, error) {
	enabled := "false"
	if f.Enabled {
		enabled = "true"
	}
	return json.Marshal([]string{f.Path, enabled})
}

// Key returns the output key for the extraction: the final path segment.
func (f FieldSpec) Key() string {
	segs := strings.Split(f.Path, ".")
	return segs[len(segs)-1]
}

// ServiceConfig declares the extractions and entity names for one service.
type ServiceConfig struct {
	IDService string      `json:"id_service"`
	Paths     []FieldSpec `json:"paths,omitempty"`
	Entity    []string    `json:"entity,omitempty"`
}

// ParameterSpec configures one slot of a parameterized query. The index is
// the key of the enclosing params map ("0", "1", ...). Structural entries
// substitute into the query text; parameter entries become bound values.
type ParameterSpec struct {
	Placeholder string `json:"placeholder"`
	Type        string `json:"type"` // "structural" or "parameter"
	Requires    string `json:"requires,omitempty"`
	Value       any    `json:"value,omitempty"`
	Query       string `json:"query,omitempty"`
}

// Parameter spec types.
const (
	ParamStructural = "structural"
	ParamValue      = "parameter"
)

// QueryConfig is one query template with its ordered parameter specs.
type QueryConfig struct {
	Query  string                   `json:"query"`
	Params map[string]ParameterSpec `json:"params,omitempty"`
}

// Query type keys under config.db.querys. "find_tidnid" is the document's
// historical name for the correlation-identifier lookup.
const (
	QuerySave            = "save"
	QueryFind            = "find"
	QueryFindCorrelation = "find_tidnid"
)

// DBConfig holds the per-consumer query templates.
// "querys" spelling is fixed by the document contract.
type DBConfig struct {
	Querys map[string]QueryConfig `json:"querys,omitempty"`
}

// ConsumerConfig is the complete configuration for one consumer.
type ConsumerConfig struct {
	ID       string          `json:"id"`
	Services []ServiceConfig `json:"services,omitempty"`
	Rules    []Rule          `json:"rules,omitempty"`
	Config   struct {
		DB DBConfig `json:"db"`
	} `json:"config,omitempty"`
}
