package loader

import (
	"strings"
)

// refGraph maps a model name to the models it references (parent, bases).
// nodes keeps source order so results are deterministic.
type refGraph struct {
	nodes []string
	edges map[string][]string
}

func buildRefGraph(models []ModelSpec) refGraph {
	g := refGraph{edges: make(map[string][]string, len(models))}
	for _, m := range models {
		g.nodes = append(g.nodes, m.Name)
		g.edges[m.Name] = m.references()
	}
	return g
}

// hasSelfLoop checks if a node has an edge to itself.
func (g refGraph) hasSelfLoop(node string) bool {
	for _, neighbor := range g.edges[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Components are returned in reverse topological order of the reference
// graph: a component is emitted only after every component it references.
// Since edges point from a model to its dependencies, that is the order in
// which models can be composed.
func (g refGraph) tarjanSCC() [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, known := g.edges[w]; !known {
				continue
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and emit an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// cyclePath builds a readable path through an SCC that returns to its
// start, e.g. [A B A]. Follows edges to unvisited SCC members.
func (g refGraph) cyclePath(scc []string) []string {
	if len(scc) == 1 {
		return []string{scc[0], scc[0]}
	}

	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	// Start from the member that appears first in source order
	start := scc[0]
	for _, node := range g.nodes {
		if members[node] {
			start = node
			break
		}
	}

	current := start
	path := []string{current}
	visited := make(map[string]bool)
	for {
		visited[current] = true
		var next string
		for _, neighbor := range g.edges[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}

// compositionOrder returns model names so that every model comes after the
// models it references. A reference cycle is reported as the first error.
func (g refGraph) compositionOrder() ([]string, []string) {
	var order []string
	for _, scc := range g.tarjanSCC() {
		if len(scc) > 1 || g.hasSelfLoop(scc[0]) {
			return nil, g.cyclePath(scc)
		}
		order = append(order, scc[0])
	}
	return order, nil
}

func formatCycle(path []string) string {
	return strings.Join(path, " -> ")
}
