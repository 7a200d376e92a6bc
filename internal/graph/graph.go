// Package graph builds the directed dependency graph over plugin names and
// computes the deterministic order in which lifecycle hooks run.
package graph

import "github.com/ensemble-dev/ensemble/internal/domain"

// Graph is a directed graph over plugin names. Edges point from a dependent
// to its dependency. The graph is immutable once built and not thread-safe
// during construction; the engine builds it once before any hook runs.
type Graph struct {
	// nodes in original registration order. Registration order is the
	// tie-break rule for the topological order, which keeps startup
	// ordering reproducible across runs.
	nodes []string

	present map[string]bool

	// deps maps each node to its dependency names, hard dependencies
	// first, deduplicated.
	deps map[string][]string
}

// Build constructs the graph from plugin metadata in registration order.
//
// Hard dependencies always contribute an edge. An optional dependency
// contributes an edge only when its target is registered; an absent optional
// dependency adds no edge and no error. Callers must run registry validation
// first so that every hard dependency is known to resolve.
func Build(metas []domain.Metadata) *Graph {
	g := &Graph{
		nodes:   make([]string, 0, len(metas)),
		present: make(map[string]bool, len(metas)),
		deps:    make(map[string][]string, len(metas)),
	}
	for _, m := range metas {
		g.nodes = append(g.nodes, m.Name)
		g.present[m.Name] = true
	}
	for _, m := range metas {
		seen := make(map[string]bool)
		var deps []string
		for _, d := range m.Dependencies {
			if !seen[d] {
				seen[d] = true
				deps = append(deps, d)
			}
		}
		for _, d := range m.OptionalDependencies {
			if g.present[d] && !seen[d] {
				seen[d] = true
				deps = append(deps, d)
			}
		}
		g.deps[m.Name] = deps
	}
	return g
}

// Dependencies returns the effective dependency names of a node: hard
// dependencies plus those optional dependencies that are registered.
func (g *Graph) Dependencies(name string) []string {
	deps := g.deps[name]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// TopologicalOrder returns the plugin names ordered so that every dependency
// precedes every dependent (Kahn's algorithm). When several nodes are ready
// simultaneously, the one registered first wins.
//
// Returns *domain.CircularDependencyError carrying an ordered cycle path if
// the graph is not acyclic.
func (g *Graph) TopologicalOrder() ([]string, error) {
	remaining := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		remaining[n] = len(g.deps[n])
	}

	dependents := make(map[string][]string, len(g.nodes))
	for _, n := range g.nodes {
		for _, d := range g.deps[n] {
			dependents[d] = append(dependents[d], n)
		}
	}

	order := make([]string, 0, len(g.nodes))
	placed := make(map[string]bool, len(g.nodes))

	for len(order) < len(g.nodes) {
		// Pick the first unplaced node with no unsatisfied dependencies,
		// scanning in registration order. The scan is quadratic in the
		// worst case; plugin sets are small.
		next := ""
		for _, n := range g.nodes {
			if !placed[n] && remaining[n] == 0 {
				next = n
				break
			}
		}
		if next == "" {
			return nil, &domain.CircularDependencyError{Cycle: g.findCycle(placed)}
		}

		placed[next] = true
		order = append(order, next)
		for _, dep := range dependents[next] {
			remaining[dep]--
		}
	}

	return order, nil
}

// ReverseOrder returns TopologicalOrder reversed. It is used for teardown so
// that a plugin's dependents are always stopped before the plugin itself.
func (g *Graph) ReverseOrder() ([]string, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

// findCycle extracts one ordered cycle path from the nodes Kahn's algorithm
// could not place. Every such node has at least one unplaced dependency, so
// walking dependency edges must revisit a node.
func (g *Graph) findCycle(placed map[string]bool) []string {
	start := ""
	for _, n := range g.nodes {
		if !placed[n] {
			start = n
			break
		}
	}
	if start == "" {
		return nil
	}

	var path []string
	visited := make(map[string]int)
	cur := start
	for {
		if at, ok := visited[cur]; ok {
			cycle := make([]string, 0, len(path)-at+1)
			cycle = append(cycle, path[at:]...)
			cycle = append(cycle, cur)
			return cycle
		}
		visited[cur] = len(path)
		path = append(path, cur)

		next := ""
		for _, d := range g.deps[cur] {
			if !placed[d] {
				next = d
				break
			}
		}
		cur = next
	}
}
