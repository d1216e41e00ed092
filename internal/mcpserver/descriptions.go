package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and key thresholds.

func describeZombies() string {
	return `Classifies dead symbols in a codebase: code unreachable from any entry point.

USE WHEN:
- Cleaning up a codebase before major refactoring
- Finding forgotten helpers, abandoned features, and orphaned modules
- Auditing accumulation of dead code over time
- Prioritizing deletions by confidence

INTERPRETING RESULTS:
- Confidence 0.0-1.0: higher means more likely truly dead
- Confidence >= 0.8: high confidence, safe to investigate removal
- Confidence 0.5-0.8: medium confidence, verify usage manually
- zombie_type "unreachable": orphan with no references at all
- zombie_type "dead_code": referenced, but only by other dead code
- isolation_distance: hops to the nearest living symbol (absent for orphans)
- context_path: the chain of dead callers leading to this symbol
- Staleness and naming markers (deprecated, legacy, old) raise confidence

METRICS RETURNED:
- Items: dead symbols with location, type, confidence, git signals
- Graph metrics: nodes, edges, orphans, components, unresolved references
- Reachable and root counts for the analyzed graph

Note: dynamic dispatch, reflection, and external consumers can cause false positives.`
}

func describeGraph() string {
	return `Builds a cross-language symbol dependency graph with structural metrics.

USE WHEN:
- Understanding the shape of an unfamiliar codebase
- Finding the most central symbols before a risky change
- Measuring coupling and dependency depth
- Capturing a snapshot of current structure for later comparison

INTERPRETING RESULTS:
- Edges carry a type (calls, imports, inherits, instantiates, references)
  and a confidence; confidence < 0.7 means the link was ambiguous
- orphan_nodes: symbols with no references in either direction
- strongly_connected_components close to total_nodes means little cycling
- max_depth: longest dependency chain from any entry point
- unresolved_references: calls whose target was not found in the scan
- PageRank centrality (optional): symbols everything else leans on

METRICS RETURNED:
- Symbols and typed edges of the full graph
- Summary: node/edge/orphan counts, SCCs, average out degree, max depth
- Top symbols by PageRank when include_centrality is set

Supports Java, JavaScript, Python, and Shell sources.`
}

func describeQuerySymbol() string {
	return `Looks up symbols by name and walks their dependencies and dependents.

USE WHEN:
- Assessing the blast radius of changing or deleting a symbol
- Finding every caller of a function across languages
- Tracing what a symbol pulls in, directly or transitively

INTERPRETING RESULTS:
- Multiple matches mean the name is defined in several scopes or files;
  each match is reported with its own location and relations
- dependencies: symbols this one references (callees, imports, parents)
- dependents: symbols that reference this one (callers, subclasses)
- With indirect=true both lists are transitive closures

METRICS RETURNED:
- Per match: symbol identity, location, kind, dependency and dependent lists

Returns an error when no symbol with the given name exists in the scan.`
}
