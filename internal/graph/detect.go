package graph

import (
	"codescope/internal/util"
)

// DetectCycles finds import cycles among internal edges with a DFS over
// the resolved graph. Every edge participating in any reported cycle is
// marked circular, and each reported path repeats its origin as the
// final element. Traversal order is deterministic, so the same tree
// always yields the same cycle list.
func (g *Graph) DetectCycles() [][]string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.resolved {
		g.resolveLocked()
	}

	for _, targets := range g.edges {
		for _, e := range targets {
			e.Circular = false
		}
	}

	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	for _, node := range util.SortedStringKeys(g.files) {
		if !visited[node] {
			g.findCycles(node, visited, onStack, []string{}, &cycles)
		}
	}

	closed := make([][]string, len(cycles))
	for i, cycle := range cycles {
		g.markCycle(cycle)
		closed[i] = append(append(make([]string, 0, len(cycle)+1), cycle...), cycle[0])
	}
	return closed
}

func (g *Graph) findCycles(curr string, visited, onStack map[string]bool, path []string, cycles *[][]string) {
	visited[curr] = true
	onStack[curr] = true
	path = append(path, curr)

	for _, next := range util.SortedStringKeys(g.edges[curr]) {
		if onStack[next] {
			cycleStart := -1
			for i, node := range path {
				if node == next {
					cycleStart = i
					break
				}
			}
			if cycleStart != -1 {
				cycle := make([]string, len(path)-cycleStart)
				copy(cycle, path[cycleStart:])
				*cycles = append(*cycles, cycle)
			}
		} else if !visited[next] {
			g.findCycles(next, visited, onStack, path, cycles)
		}
	}

	onStack[curr] = false
}

// markCycle flags each consecutive edge of the cycle, including the one
// closing it.
func (g *Graph) markCycle(cycle []string) {
	for i, from := range cycle {
		to := cycle[(i+1)%len(cycle)]
		if e, ok := g.edges[from][to]; ok {
			e.Circular = true
		}
	}
}
