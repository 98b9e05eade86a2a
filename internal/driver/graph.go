package driver

import (
	"sort"

	"github.com/tsgonest/tszod/internal/compiler"
)

// graph is the dependency graph between compiled declarations. Nodes are
// indices into the result slice; an edge u -> v means u refers to v.
type graph struct {
	names []string
	edges [][]int
}

// buildGraph links results through their schema-name dependencies.
// Dependencies outside the unit are not nodes.
func buildGraph(results []*compiler.Result) graph {
	bySchema := make(map[string]int, len(results))
	for i, r := range results {
		bySchema[r.SchemaName] = i
	}
	g := graph{names: make([]string, len(results)), edges: make([][]int, len(results))}
	for i, r := range results {
		g.names[i] = r.Name
		for _, dep := range r.Dependencies {
			if j, ok := bySchema[dep]; ok {
				g.edges[i] = append(g.edges[i], j)
			}
		}
	}
	return g
}

// components returns the strongly connected components of g in Tarjan
// order, which puts every component after the components it depends on.
// Nodes inside a component are in source order.
func (g graph) components() [][]int {
	n := len(g.names)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var (
		stack []int
		out   [][]int
		next  int
		visit func(v int)
	)
	visit = func(v int) {
		index[v], low[v] = next, next
		next++
		stack = append(stack, v)
		onStack[v] = true
		for _, w := range g.edges[v] {
			switch {
			case index[w] < 0:
				visit(w)
				low[v] = min(low[v], low[w])
			case onStack[w]:
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] != index[v] {
			return
		}
		var scc []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		sort.Ints(scc)
		out = append(out, scc)
	}
	for v := 0; v < n; v++ {
		if index[v] < 0 {
			visit(v)
		}
	}
	return out
}

func (g graph) selfLoop(v int) bool {
	for _, w := range g.edges[v] {
		if w == v {
			return true
		}
	}
	return false
}

// order returns declaration names dependencies-first, and every cycle
// (a component of several nodes, or one node referring to itself).
func (g graph) order() (names []string, cycles [][]string) {
	for _, scc := range g.components() {
		var members []string
		for _, v := range scc {
			members = append(members, g.names[v])
		}
		names = append(names, members...)
		if len(scc) > 1 || g.selfLoop(scc[0]) {
			cycles = append(cycles, members)
		}
	}
	return names, cycles
}
