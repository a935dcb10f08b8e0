// Package graph provides the terminal distance network and shortest-path
// algorithms for the rail logistics simulation.
package graph

import (
	"fmt"
)

// TerminalID and PathID are string aliases used as identifiers.
type (
	TerminalID = string
	PathID     = string
)

// Node is a terminal in the rail network graph.
type Node struct {
	ID   TerminalID `json:"terminal_id" yaml:"terminal_id"`
	Name string     `json:"name,omitempty" yaml:"name,omitempty"`
}

// Edge is a directed connection between two terminals with a distance in km.
// Declare one edge per direction; the loader does not assume symmetry.
type Edge struct {
	U        TerminalID `json:"u" yaml:"u"`
	V        TerminalID `json:"v" yaml:"v"`
	Distance float64    `json:"distance" yaml:"distance"` // km
}

// GraphData is the serialisable input representation of a network graph.
type GraphData struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// PathInfo holds the result of a shortest-path computation.
type PathInfo struct {
	ID       PathID
	Route    []TerminalID // ordered terminal IDs from start to end
	Distance float64      // total path distance in km
}

// Graph is a directed weighted graph with cached shortest-path computation.
type Graph struct {
	nodes       []Node
	edges       []Edge
	nodeMap     map[TerminalID]Node
	distByNodes map[TerminalID]map[TerminalID]float64 // u → v → km
	// Floyd-Warshall tables; nil until first needed.
	dist     map[TerminalID]map[TerminalID]float64
	nextNode map[TerminalID]map[TerminalID]TerminalID
	// Path cache; cleared whenever the graph topology changes.
	pathCache map[PathID]PathInfo
}

// NewGraph builds a Graph from GraphData, returning an error if any node or
// edge references are invalid.
func NewGraph(data GraphData) (*Graph, error) {
	g := &Graph{
		nodeMap:     make(map[TerminalID]Node),
		distByNodes: make(map[TerminalID]map[TerminalID]float64),
		pathCache:   make(map[PathID]PathInfo),
	}
	for _, n := range data.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddNode adds a terminal node to the graph. Returns an error if the node ID
// is empty or already exists.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return fmt.Errorf("node with empty terminal id")
	}
	if _, exists := g.nodeMap[n.ID]; exists {
		return fmt.Errorf("terminal %q already exists", n.ID)
	}
	g.nodes = append(g.nodes, n)
	g.nodeMap[n.ID] = n
	g.dist = nil // invalidate cached paths
	return nil
}

// AddEdge adds a directed edge to the graph. Returns an error if the edge
// already exists, either endpoint terminal is missing, or the distance is not
// positive.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodeMap[e.U]; !ok {
		return fmt.Errorf("edge %q->%q: terminal %q not found", e.U, e.V, e.U)
	}
	if _, ok := g.nodeMap[e.V]; !ok {
		return fmt.Errorf("edge %q->%q: terminal %q not found", e.U, e.V, e.V)
	}
	if e.U == e.V {
		return fmt.Errorf("edge %q->%q: self connection", e.U, e.V)
	}
	if e.Distance <= 0 {
		return fmt.Errorf("edge %q->%q: distance %v must be positive", e.U, e.V, e.Distance)
	}
	if _, exists := g.distByNodes[e.U][e.V]; exists {
		return fmt.Errorf("edge %q->%q already exists", e.U, e.V)
	}
	g.edges = append(g.edges, e)
	if g.distByNodes[e.U] == nil {
		g.distByNodes[e.U] = make(map[TerminalID]float64)
	}
	g.distByNodes[e.U][e.V] = e.Distance
	g.dist = nil // invalidate cached paths
	return nil
}

// pathKey returns a canonical string key for a start→end pair.
func pathKey(start, end TerminalID) PathID { return start + "->" + end }

// HasNode reports whether the terminal exists in the graph.
func (g *Graph) HasNode(id TerminalID) bool {
	_, ok := g.nodeMap[id]
	return ok
}

// Distance returns the direct-edge distance from u to v in km. The second
// return value is false when u and v are not directly connected.
func (g *Graph) Distance(u, v TerminalID) (float64, bool) {
	if m, ok := g.distByNodes[u]; ok {
		if d, ok := m[v]; ok {
			return d, true
		}
	}
	return 0, false
}

// Connected reports whether a direct edge from u to v exists.
func (g *Graph) Connected(u, v TerminalID) bool {
	_, ok := g.Distance(u, v)
	return ok
}

// Neighbors returns the terminals directly reachable from u, in the order
// their edges were declared.
func (g *Graph) Neighbors(u TerminalID) []TerminalID {
	var out []TerminalID
	for _, e := range g.edges {
		if e.U == u {
			out = append(out, e.V)
		}
	}
	return out
}

// Nodes returns the terminals in declaration order.
func (g *Graph) Nodes() []Node {
	return g.nodes
}
