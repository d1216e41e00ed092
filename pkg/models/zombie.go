package models

import "time"

// RootKind classifies an analysis entry point.
type RootKind string

const (
	RootMainFunction   RootKind = "main_function"
	RootExportedAPI    RootKind = "exported_api"
	RootTestEntry      RootKind = "test_entry"
	RootCliCommand     RootKind = "cli_command"
	RootManualOverride RootKind = "manual_override"
)

// RootNode seeds reachability. It either pins an exact symbol id or carries
// a matcher applied against symbol names and qualified scopes.
type RootNode struct {
	Kind     RootKind `json:"kind" toon:"kind"`
	SymbolID string   `json:"symbol_id,omitempty" toon:"symbol_id,omitempty"`
	Matcher  string   `json:"matcher,omitempty" toon:"matcher,omitempty"`
}

// ZombieType distinguishes the two classes of dead symbols.
type ZombieType string

const (
	// ZombieUnreachable is a true orphan: no incoming or outgoing edges.
	ZombieUnreachable ZombieType = "unreachable"
	// ZombieDeadCode participates in local structure but has no path from
	// any root, e.g. a helper called only by other dead code.
	ZombieDeadCode ZombieType = "dead_code"
)

// ZombieCodeItem is one classified dead symbol.
type ZombieCodeItem struct {
	SymbolID           string     `json:"symbol_id" toon:"symbol_id"`
	Name               string     `json:"name" toon:"name"`
	Location           string     `json:"location" toon:"location"`
	ZombieType         ZombieType `json:"zombie_type" toon:"zombie_type"`
	Confidence         float64    `json:"confidence" toon:"confidence"`
	IsolationDistance  *uint32    `json:"isolation_distance" toon:"isolation_distance"`
	LastModified       *time.Time `json:"last_modified,omitempty" toon:"last_modified,omitempty"`
	PrimaryContributor string     `json:"primary_contributor,omitempty" toon:"primary_contributor,omitempty"`
	ContextPath        []string   `json:"context_path,omitempty" toon:"context_path,omitempty"`
	Notes              string     `json:"notes,omitempty" toon:"notes,omitempty"`
}

// GraphMetrics is a pure, recomputable structural summary. It is never
// mutated independently of the graph it describes.
type GraphMetrics struct {
	TotalNodes                  int     `json:"total_nodes" toon:"total_nodes"`
	TotalEdges                  int     `json:"total_edges" toon:"total_edges"`
	OrphanNodes                 int     `json:"orphan_nodes" toon:"orphan_nodes"`
	StronglyConnectedComponents int     `json:"strongly_connected_components" toon:"strongly_connected_components"`
	AverageOutDegree            float64 `json:"average_out_degree" toon:"average_out_degree"`
	MaxDepth                    int     `json:"max_depth" toon:"max_depth"`
	UnresolvedReferences        int     `json:"unresolved_references" toon:"unresolved_references"`
}

// SymbolCentrality pairs a symbol with its PageRank score.
type SymbolCentrality struct {
	SymbolID string  `json:"symbol_id" toon:"symbol_id"`
	Name     string  `json:"name" toon:"name"`
	PageRank float64 `json:"pagerank" toon:"pagerank"`
	InDegree int     `json:"in_degree" toon:"in_degree"`
	OutDeg   int     `json:"out_degree" toon:"out_degree"`
}

// ZombieReport is the classifier's output: items ordered by confidence
// descending (symbol id as tiebreak), plus the metrics of the graph they
// were classified against and any per-file failures from extraction.
// IsolationDistances maps each reached symbol id to its BFS layer from the
// root set (roots at 0); unreached symbols have no entry.
type ZombieReport struct {
	Items              []ZombieCodeItem  `json:"items" toon:"items"`
	Metrics            GraphMetrics      `json:"metrics" toon:"metrics"`
	Reachable          int               `json:"reachable" toon:"reachable"`
	Roots              int               `json:"roots" toon:"roots"`
	IsolationDistances map[string]uint32 `json:"isolation_distances,omitempty" toon:"isolation_distances,omitempty"`
	FileErrors         []ParseError      `json:"file_errors,omitempty" toon:"file_errors,omitempty"`
}
