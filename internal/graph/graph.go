// Package graph holds the project dependency graph: one node per
// analyzed file, one edge per resolved import. Nodes are canonical
// scanned paths; imports that resolve to nothing in the scan set become
// external edges and never participate in cycle detection.
package graph

import (
	"sort"
	"sync"

	"codescope/internal/parser"
	"codescope/internal/util"
)

type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Kind     string `json:"kind"`
	Weight   int    `json:"weight"` // imported item count, at least 1
	Line     int    `json:"line"`
	External bool   `json:"external"`
	Circular bool   `json:"circular"`
}

type FanMetrics struct {
	FanIn  int `json:"fan_in"`
	FanOut int `json:"fan_out"`
	Depth  int `json:"depth"`
}

type Graph struct {
	mu sync.RWMutex

	files map[string]*parser.File

	// internal adjacency, rebuilt by Resolve
	edges      map[string]map[string]*Edge
	importedBy map[string]map[string]bool
	external   []*Edge

	resolved bool
}

func New() *Graph {
	return &Graph{
		files:      make(map[string]*parser.File),
		edges:      make(map[string]map[string]*Edge),
		importedBy: make(map[string]map[string]bool),
	}
}

// AddFile registers or replaces one parsed file. Edges are stale until
// the next Resolve.
func (g *Graph) AddFile(file *parser.File) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.files[file.Path] = file
	g.resolved = false
}

func (g *Graph) RemoveFile(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.files, path)
	g.resolved = false
}

func (g *Graph) FileCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.files)
}

func (g *Graph) File(path string) (*parser.File, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	f, ok := g.files[path]
	return f, ok
}

// Files returns the registered files in path order.
func (g *Graph) Files() []*parser.File {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*parser.File, 0, len(g.files))
	for _, path := range util.SortedStringKeys(g.files) {
		out = append(out, g.files[path])
	}
	return out
}

// Resolve rebuilds the edge set from every file's imports. Call it after
// the add/remove batch settles; cycle detection and metrics operate on
// the resolved edges.
func (g *Graph) Resolve() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resolveLocked()
}

func (g *Graph) resolveLocked() {
	g.edges = make(map[string]map[string]*Edge)
	g.importedBy = make(map[string]map[string]bool)
	g.external = nil

	r := newResolver(g.files)
	for _, path := range util.SortedStringKeys(g.files) {
		file := g.files[path]
		for i := range file.Imports {
			imp := &file.Imports[i]
			weight := len(imp.Items)
			if weight == 0 {
				weight = 1
			}

			target, ok := r.resolve(file, imp)
			if !ok {
				g.external = append(g.external, &Edge{
					From:     path,
					To:       imp.Target,
					Kind:     "import",
					Weight:   weight,
					Line:     imp.Line,
					External: true,
				})
				continue
			}
			if target == path {
				continue
			}

			if g.edges[path] == nil {
				g.edges[path] = make(map[string]*Edge)
			}
			if existing, ok := g.edges[path][target]; ok {
				existing.Weight += weight
				continue
			}
			g.edges[path][target] = &Edge{
				From:   path,
				To:     target,
				Kind:   "import",
				Weight: weight,
				Line:   imp.Line,
			}
			if g.importedBy[target] == nil {
				g.importedBy[target] = make(map[string]bool)
			}
			g.importedBy[target][path] = true
		}
	}
	g.resolved = true
}

// Edges returns every edge, internal first, deterministically ordered.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []Edge
	for _, from := range util.SortedStringKeys(g.edges) {
		for _, to := range util.SortedStringKeys(g.edges[from]) {
			out = append(out, *g.edges[from][to])
		}
	}
	for _, e := range g.external {
		out = append(out, *e)
	}
	return out
}

// FanMetrics computes fan-in, fan-out and dependency depth per file.
// Depth is the longest internal import chain below the file, with
// strongly connected components collapsed so cycles cannot recurse
// forever.
func (g *Graph) FanMetrics() map[string]FanMetrics {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := util.SortedStringKeys(g.files)
	adjacency := make(map[string][]string, len(nodes))
	for _, from := range nodes {
		adjacency[from] = util.SortedStringKeys(g.edges[from])
	}

	fanIn := make(map[string]int, len(nodes))
	fanOut := make(map[string]int, len(nodes))
	for _, from := range nodes {
		fanOut[from] = len(adjacency[from])
		for _, to := range adjacency[from] {
			fanIn[to]++
		}
	}

	componentOf, components := stronglyConnectedComponents(nodes, adjacency)
	componentEdges := make(map[int]map[int]bool, len(components))
	for _, from := range nodes {
		fromComp := componentOf[from]
		for _, to := range adjacency[from] {
			toComp := componentOf[to]
			if fromComp == toComp {
				continue
			}
			if componentEdges[fromComp] == nil {
				componentEdges[fromComp] = make(map[int]bool)
			}
			componentEdges[fromComp][toComp] = true
		}
	}

	depthByComp := make(map[int]int, len(components))
	var computeDepth func(int) int
	computeDepth = func(comp int) int {
		if depth, ok := depthByComp[comp]; ok {
			return depth
		}
		maxDepth := 0
		for next := range componentEdges[comp] {
			if candidate := 1 + computeDepth(next); candidate > maxDepth {
				maxDepth = candidate
			}
		}
		depthByComp[comp] = maxDepth
		return maxDepth
	}
	for comp := range components {
		computeDepth(comp)
	}

	metrics := make(map[string]FanMetrics, len(nodes))
	for _, n := range nodes {
		metrics[n] = FanMetrics{
			FanIn:  fanIn[n],
			FanOut: fanOut[n],
			Depth:  depthByComp[componentOf[n]],
		}
	}
	return metrics
}

// InvalidateTransitive returns the changed file plus every file that
// reaches it through imports, for selective re-analysis in watch mode.
func (g *Graph) InvalidateTransitive(changed string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.files[changed]; !ok {
		return nil
	}

	seen := map[string]bool{changed: true}
	out := []string{changed}
	queue := []string{changed}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, importer := range util.SortedStringKeys(g.importedBy[current]) {
			if seen[importer] {
				continue
			}
			seen[importer] = true
			out = append(out, importer)
			queue = append(queue, importer)
		}
	}
	sort.Strings(out)
	return out
}

func stronglyConnectedComponents(nodes []string, adjacency map[string][]string) (map[string]int, [][]string) {
	index := 0
	stack := make([]string, 0, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	indexByNode := make(map[string]int, len(nodes))
	lowLink := make(map[string]int, len(nodes))
	componentOf := make(map[string]int, len(nodes))
	components := make([][]string, 0)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indexByNode[v] = index
		lowLink[v] = index
		index++

		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adjacency[v] {
			if _, seen := indexByNode[w]; !seen {
				strongConnect(w)
				if lowLink[w] < lowLink[v] {
					lowLink[v] = lowLink[w]
				}
			} else if onStack[w] && indexByNode[w] < lowLink[v] {
				lowLink[v] = indexByNode[w]
			}
		}

		if lowLink[v] != indexByNode[v] {
			return
		}

		component := make([]string, 0)
		for {
			last := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[last] = false
			component = append(component, last)
			if last == v {
				break
			}
		}
		sort.Strings(component)
		compID := len(components)
		components = append(components, component)
		for _, n := range component {
			componentOf[n] = compID
		}
	}

	for _, node := range nodes {
		if _, seen := indexByNode[node]; !seen {
			strongConnect(node)
		}
	}

	return componentOf, components
}
