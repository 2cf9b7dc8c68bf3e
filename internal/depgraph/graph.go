// Package depgraph is a minimal directed-graph cycle detector, adapted
// from the upstream dag package (itself ported from kro-run/kro under the
// Apache 2.0 License) down to the single operation the resolver actually
// needs: does adding this set of edges introduce a cycle, and if so, what
// is the offending chain. The generic vertex/edge/Discover machinery of
// the upstream package has no caller here, since both the `extends` chain
// and the `parent_schema_url` chain are built once, up front, from an
// already-fully-known vertex set.
package depgraph

import "fmt"

// Graph is a directed graph over string-keyed vertices (group ids, or
// schema source locations).
type Graph struct {
	edges map[string]string // child -> parent, since both extends and
	// parent_schema_url chains have exactly one outgoing edge per vertex
}

// New builds an empty Graph.
func New() *Graph {
	return &Graph{edges: make(map[string]string)}
}

// AddEdge records that from depends on to (e.g. a group `extends` another,
// or a schema's `parent_schema_url` points at another). Returns the cycle
// chain, starting and ending at from, if adding this edge would create one;
// in that case the edge is not recorded.
func (g *Graph) AddEdge(from, to string) (cycle []string, ok bool) {
	if from == to {
		return []string{from, to}, false
	}
	if chain, found := g.reaches(to, from); found {
		return append([]string{from}, chain...), false
	}
	g.edges[from] = to
	return nil, true
}

// reaches reports whether walking outgoing edges from start ever visits
// target, returning the visited chain when it does.
func (g *Graph) reaches(start, target string) ([]string, bool) {
	visited := map[string]bool{}
	chain := []string{start}
	cur := start
	for {
		if cur == target {
			return chain, true
		}
		if visited[cur] {
			return nil, false // a cycle not involving target; irrelevant here
		}
		visited[cur] = true
		next, ok := g.edges[cur]
		if !ok {
			return nil, false
		}
		chain = append(chain, next)
		cur = next
	}
}

// Chain walks outgoing edges from start to its root, returning the full
// path (start first). Used once a graph is known to be acyclic, to report
// a depth that exceeds a configured maximum.
func (g *Graph) Chain(start string) []string {
	chain := []string{start}
	cur := start
	for {
		next, ok := g.edges[cur]
		if !ok {
			return chain
		}
		chain = append(chain, next)
		cur = next
		if len(chain) > len(g.edges)+1 {
			// defensive: should be unreachable once AddEdge rejects cycles.
			return chain
		}
	}
}

func (g *Graph) String() string {
	return fmt.Sprintf("depgraph(%d edges)", len(g.edges))
}
