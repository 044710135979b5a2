// Package types provides domain models shared across obslayer components.
//
// Events are plain map[string]any / []any trees as produced by
// encoding/json; defined wrapper types are deliberately avoided for event
// payloads because the JMESPath evaluator type-asserts on the concrete
// map[string]interface{} shape.
//
// Configuration document types mirror the externally editable consumer
// documents (services, rules, query parameter templates): field names and
// the "querys" key follow the document contract, not Go naming taste.
package types

// RunID identifies one pipeline invocation (one inbound message).
// String alias enables type safety while maintaining JSON string serialization.
type RunID string

// EventID identifies a single inbound event record.
type EventID string

// Resource limits enforced during path resolution and record parsing.
const (
	// MaxPathDepth caps dotted-path segment count during resolution.
	// 32 levels handles the deepest observed payloads with headroom.
	MaxPathDepth = 32

	// MaxBodyNesting bounds the unwrap loop for queue records whose body
	// is a JSON string containing another JSON string.
	MaxBodyNesting = 8
)
