// internal/config/document.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/sorsimple/obslayer/internal/types"
)

/*
 * Consumer configuration documents.
 *
 * A document is a JSON list of per-consumer configurations: service
 * extraction paths, business rules, and parameterized query templates.
 * Documents are externally edited, so everything suspicious is rejected
 * at load time rather than discovered mid-event: duplicate consumer ids,
 * non-contiguous parameter indices, parameter specs without placeholders.
 */

// Document is a loaded, validated consumer configuration document.
type Document struct {
	Consumers []types.ConsumerConfig
}

// Load reads and validates a document from a JSON file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ConfigurationError{Reason: "reading configuration document", Err: err}
	}
	return Parse(data)
}

// Parse decodes and validates a document from raw JSON.
func Parse(data []byte) (*Document, error) {
	var consumers []types.ConsumerConfig
	if err := json.Unmarshal(data, &consumers); err != nil {
		return nil, &types.ConfigurationError{Reason: "decoding configuration document", Err: err}
	}
	doc := &Document{Consumers: consumers}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Consumer returns the configuration for one consumer id.
func (d *Document) Consumer(id string) (*types.ConsumerConfig, error) {
	for i := range d.Consumers {
		if d.Consumers[i].ID == id {
			return &d.Consumers[i], nil
		}
	}
	return nil, fmt.Errorf("consumer %q: %w", id, types.ErrConsumerNotFound)
}

// Service returns one consumer's configuration for one service id.
func (d *Document) Service(consumerID, idService string) (*types.ServiceConfig, error) {
	consumer, err := d.Consumer(consumerID)
	if err != nil {
		return nil, err
	}
	for i := range consumer.Services {
		if consumer.Services[i].IDService == idService {
			return &consumer.Services[i], nil
		}
	}
	return nil, fmt.Errorf("service %q for consumer %q: %w", idService, consumerID, types.ErrServiceNotFound)
}

// Rules returns the business rules configured for one consumer, or nil
// when the consumer is unknown.
func (d *Document) Rules(consumerID string) []types.Rule {
	consumer, err := d.Consumer(consumerID)
	if err != nil {
		return nil
	}
	return consumer.Rules
}

func (d *Document) validate() error {
	seen := map[string]bool{}
	for _, consumer := range d.Consumers {
		if consumer.ID == "" {
			return types.Configf("consumer with empty id")
		}
		if seen[consumer.ID] {
			return types.Configf("duplicate consumer id %q", consumer.ID)
		}
		seen[consumer.ID] = true

		for name, query := range consumer.Config.DB.Querys {
			if err := validateQuery(consumer.ID, name, query); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateQuery checks one query configuration: SQL text present and
// parameter indices forming a contiguous run from zero.
func validateQuery(consumerID, name string, query types.QueryConfig) error {
	if query.Query == "" {
		return types.Configf("consumer %q query %q has no SQL text", consumerID, name)
	}
	present := make([]bool, len(query.Params))
	for key, spec := range query.Params {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			return types.Configf("consumer %q query %q has non-numeric parameter index %q", consumerID, name, key)
		}
		if idx >= len(query.Params) {
			return types.Configf("consumer %q query %q parameter indices are not contiguous", consumerID, name)
		}
		present[idx] = true
		if spec.Placeholder == "" {
			return types.Configf("consumer %q query %q parameter %q has no placeholder", consumerID, name, key)
		}
	}
	for idx, ok := range present {
		if !ok {
			return types.Configf("consumer %q query %q is missing parameter index %d", consumerID, name, idx)
		}
	}
	return nil
}
