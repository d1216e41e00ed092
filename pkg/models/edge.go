package models

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// EdgeType is the relationship an edge asserts between two symbols.
type EdgeType string

const (
	EdgeCalls        EdgeType = "calls"
	EdgeImports      EdgeType = "imports"
	EdgeInherits     EdgeType = "inherits"
	EdgeInstantiates EdgeType = "instantiates"
	EdgeReferences   EdgeType = "references"
)

// StrongConfidenceThreshold splits strong from weak edges. Strong and
// Confidence are kept coupled through MarkStrong and MarkWeak.
const StrongConfidenceThreshold = 0.7

// DependencyEdge is one typed, weighted edge between two symbols.
type DependencyEdge struct {
	ID             string            `json:"id" toon:"id"`
	SourceSymbolID string            `json:"source_symbol_id" toon:"source_symbol_id"`
	TargetSymbolID string            `json:"target_symbol_id" toon:"target_symbol_id"`
	Type           EdgeType          `json:"type" toon:"type"`
	Line           uint32            `json:"line" toon:"line"`
	Confidence     float64           `json:"confidence" toon:"confidence"`
	Strong         bool              `json:"strong" toon:"strong"`
	Metadata       map[string]string `json:"metadata,omitempty" toon:"metadata,omitempty"`
}

// EdgeID derives a stable edge id from the endpoints, type and site line.
func EdgeID(sourceID, targetID string, edgeType EdgeType, line uint32) string {
	sum := xxhash.Sum64String(fmt.Sprintf("%s|%s|%s|%d", sourceID, targetID, edgeType, line))
	return fmt.Sprintf("%016x", sum)
}

// NewEdge builds an edge with default extraction confidence.
func NewEdge(sourceID, targetID string, edgeType EdgeType, line uint32) DependencyEdge {
	return DependencyEdge{
		ID:             EdgeID(sourceID, targetID, edgeType, line),
		SourceSymbolID: sourceID,
		TargetSymbolID: targetID,
		Type:           edgeType,
		Line:           line,
		Confidence:     0.8,
		Strong:         true,
	}
}

// Validate checks endpoint presence and confidence bounds. Self edges are
// legal; direct recursion is a representable dependency.
func (e *DependencyEdge) Validate() error {
	if e.SourceSymbolID == "" {
		return &ValidationError{Field: "source_symbol_id", Reason: "empty"}
	}
	if e.TargetSymbolID == "" {
		return &ValidationError{Field: "target_symbol_id", Reason: "empty"}
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return &ValidationError{Field: "confidence", Reason: "outside [0, 1]"}
	}
	return nil
}

// MarkStrong sets the edge strong, lifting confidence to the threshold if
// the given value sits below it.
func (e *DependencyEdge) MarkStrong(confidence float64) {
	if confidence < StrongConfidenceThreshold {
		confidence = StrongConfidenceThreshold
	}
	if confidence > 1 {
		confidence = 1
	}
	e.Confidence = confidence
	e.Strong = true
}

// MarkWeak sets the edge weak, capping confidence below the threshold.
func (e *DependencyEdge) MarkWeak(confidence float64) {
	if confidence >= StrongConfidenceThreshold {
		confidence = StrongConfidenceThreshold - 0.1
	}
	if confidence < 0 {
		confidence = 0
	}
	e.Confidence = confidence
	e.Strong = false
}

// AddMetadata attaches a key, allocating the map lazily.
func (e *DependencyEdge) AddMetadata(key, value string) {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
}

// EdgeMetadataBuilder accumulates edge metadata fluently during linking.
type EdgeMetadataBuilder struct {
	meta map[string]string
}

// NewEdgeMetadata starts an empty metadata builder.
func NewEdgeMetadata() *EdgeMetadataBuilder {
	return &EdgeMetadataBuilder{meta: make(map[string]string)}
}

// With records an arbitrary key.
func (b *EdgeMetadataBuilder) With(key, value string) *EdgeMetadataBuilder {
	b.meta[key] = value
	return b
}

// Context records the evidence snippet around the reference site.
func (b *EdgeMetadataBuilder) Context(snippet string) *EdgeMetadataBuilder {
	if snippet != "" {
		b.meta["context"] = snippet
	}
	return b
}

// Resolution records how the target was resolved during linking.
func (b *EdgeMetadataBuilder) Resolution(tier string) *EdgeMetadataBuilder {
	b.meta["resolution"] = tier
	return b
}

// Build returns the accumulated map, or nil when nothing was recorded.
func (b *EdgeMetadataBuilder) Build() map[string]string {
	if len(b.meta) == 0 {
		return nil
	}
	return b.meta
}
