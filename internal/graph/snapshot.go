package graph

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/c2j/CodeZombiesInvestigator-sub001/pkg/models"
)

// SnapshotVersion tags the persisted format. Loaders reject other versions
// rather than guessing.
const SnapshotVersion = 1

// Snapshot is the persisted form of a built graph. Adjacency is not stored;
// it is rebuilt from the edge list on load.
type Snapshot struct {
	Version     int                     `json:"version"`
	CreatedAt   time.Time               `json:"created_at"`
	Description string                  `json:"description,omitempty"`
	Metrics     models.GraphMetrics     `json:"metrics"`
	Roots       []models.RootNode       `json:"roots,omitempty"`
	Symbols     []models.Symbol         `json:"symbols"`
	Edges       []models.DependencyEdge `json:"edges"`
}

// snapshotSchema validates the shape of a JSON snapshot before decoding, so
// hand-edited or truncated files fail with a pointed error instead of a
// half-built graph.
const snapshotSchema = `{
	"type": "object",
	"required": ["version", "created_at", "symbols", "edges"],
	"properties": {
		"version": {"type": "integer", "minimum": 1},
		"created_at": {"type": "string"},
		"description": {"type": "string"},
		"symbols": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "file_path", "name", "kind"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"file_path": {"type": "string", "minLength": 1},
					"name": {"type": "string", "minLength": 1},
					"kind": {"type": "string"}
				}
			}
		},
		"edges": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["source_symbol_id", "target_symbol_id", "type"],
				"properties": {
					"source_symbol_id": {"type": "string", "minLength": 1},
					"target_symbol_id": {"type": "string", "minLength": 1},
					"type": {"type": "string"},
					"confidence": {"type": "number", "minimum": 0, "maximum": 1}
				}
			}
		}
	}
}`

// NewSnapshot captures a build result.
func NewSnapshot(result *BuildResult, description string) *Snapshot {
	return &Snapshot{
		Version:     SnapshotVersion,
		CreatedAt:   time.Now().UTC(),
		Description: description,
		Metrics:     ComputeMetrics(result.Graph, result.Roots, result.Unresolved),
		Roots:       result.Roots,
		Symbols:     result.Graph.Symbols(),
		Edges:       result.Graph.Edges(),
	}
}

// Restore rebuilds the in-memory graph from the snapshot.
func (s *Snapshot) Restore() (*BuildResult, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	g := models.NewDependencyGraph()
	for _, sym := range s.Symbols {
		g.AddSymbol(sym)
	}
	for _, edge := range s.Edges {
		if _, err := g.AddEdge(edge); err != nil {
			return nil, fmt.Errorf("restore edge %s: %w", edge.ID, err)
		}
	}
	return &BuildResult{
		Graph:      g,
		Roots:      s.Roots,
		Unresolved: s.Metrics.UnresolvedReferences,
	}, nil
}

// SaveJSON writes the snapshot as indented JSON.
func (s *Snapshot) SaveJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// LoadJSON reads and schema-validates a JSON snapshot.
func LoadJSON(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if err := validateSnapshotJSON(data); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func validateSnapshotJSON(data []byte) error {
	compiler := jsonschema.NewCompiler()
	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(snapshotSchema))
	if err != nil {
		return err
	}
	if err := compiler.AddResource("snapshot.json", schemaDoc); err != nil {
		return err
	}
	schema, err := compiler.Compile("snapshot.json")
	if err != nil {
		return err
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return schema.Validate(instance)
}

// SaveBinary writes the snapshot in gob encoding, the compact format for
// large graphs.
func (s *Snapshot) SaveBinary(path string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// LoadBinary reads a gob snapshot.
func LoadBinary(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer f.Close()

	var snap Snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Load dispatches on extension: .bin and .gob load as binary, everything
// else as JSON.
func Load(path string) (*Snapshot, error) {
	if strings.HasSuffix(path, ".bin") || strings.HasSuffix(path, ".gob") {
		return LoadBinary(path)
	}
	return LoadJSON(path)
}
