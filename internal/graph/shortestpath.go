package graph

import (
	"fmt"
	"math"
)

// computeShortestPaths runs Floyd-Warshall over all terminals and edges.
func (g *Graph) computeShortestPaths() {
	nodeIDs := make([]TerminalID, len(g.nodes))
	for i, n := range g.nodes {
		nodeIDs[i] = n.ID
	}

	dist := make(map[TerminalID]map[TerminalID]float64, len(nodeIDs))
	next := make(map[TerminalID]map[TerminalID]TerminalID, len(nodeIDs))
	for _, i := range nodeIDs {
		dist[i] = make(map[TerminalID]float64, len(nodeIDs))
		next[i] = make(map[TerminalID]TerminalID, len(nodeIDs))
		for _, j := range nodeIDs {
			dist[i][j] = math.Inf(1)
		}
		dist[i][i] = 0
	}
	for _, e := range g.edges {
		dist[e.U][e.V] = e.Distance
		next[e.U][e.V] = e.V
	}
	for _, k := range nodeIDs {
		for _, i := range nodeIDs {
			for _, j := range nodeIDs {
				if d := dist[i][k] + dist[k][j]; d < dist[i][j] {
					dist[i][j] = d
					next[i][j] = next[i][k]
				}
			}
		}
	}

	g.dist = dist
	g.nextNode = next
	g.pathCache = make(map[PathID]PathInfo) // clear stale cache
}

func (g *Graph) ensureShortestPaths() {
	if g.dist == nil {
		g.computeShortestPaths()
	}
}

func (g *Graph) reconstructPath(u, v TerminalID) []TerminalID {
	route := []TerminalID{u}
	for u != v {
		n, ok := g.nextNode[u][v]
		if !ok || n == "" {
			return nil // no path
		}
		u = n
		route = append(route, u)
	}
	return route
}

// GetShortestPath returns the shortest path between start and end, using a
// cache. Returns an error if no path exists.
func (g *Graph) GetShortestPath(start, end TerminalID) (PathInfo, error) {
	if start == end {
		return PathInfo{ID: pathKey(start, end), Route: []TerminalID{start}, Distance: 0}, nil
	}
	key := pathKey(start, end)
	if p, ok := g.pathCache[key]; ok {
		return p, nil
	}
	g.ensureShortestPaths()
	d, ok := g.dist[start][end]
	if !ok || math.IsInf(d, 1) {
		return PathInfo{}, fmt.Errorf("no path from %q to %q", start, end)
	}
	route := g.reconstructPath(start, end)
	p := PathInfo{ID: key, Route: route, Distance: d}
	g.pathCache[key] = p
	return p, nil
}

// Reachable reports whether end can be reached from start over any number of
// edges. Used by input validation to reject demand pairs the network cannot
// serve.
func (g *Graph) Reachable(start, end TerminalID) bool {
	_, err := g.GetShortestPath(start, end)
	return err == nil
}
