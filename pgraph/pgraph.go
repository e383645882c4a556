// Glfuzz
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package pgraph represents the internal "pointer graph" that we use. Vertices
// are compared by identity.
package pgraph

import (
	"fmt"
	"sort"
)

// Vertex is anything that can be stored in the graph.
type Vertex interface {
	fmt.Stringer
}

// Edge is the primary edge struct in this library.
type Edge struct {
	Name string
}

// String returns the name of the edge.
func (obj *Edge) String() string { return obj.Name }

// NewEdge returns a new graph edge struct.
func NewEdge(name string) *Edge {
	return &Edge{
		Name: name,
	}
}

// Graph is the graph structure in this library. The arrows point from left to
// right, from a caller to what it calls. Vertices are kept in the order they
// were added so that every traversal is deterministic.
type Graph struct {
	Name string

	adjacency map[Vertex]map[Vertex]*Edge // Vertex -> Vertex (edge)
	order     []Vertex
}

// NewGraph builds a new graph.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:      name,
		adjacency: make(map[Vertex]map[Vertex]*Edge),
	}
}

// String makes the graph pretty print.
func (g *Graph) String() string {
	return fmt.Sprintf("%s: Vertices(%d), Edges(%d)", g.Name, g.NumVertices(), g.NumEdges())
}

// AddVertex uses variadic input to add all listed vertices to the graph. A
// vertex that is already present is left alone.
func (g *Graph) AddVertex(xv ...Vertex) {
	for _, v := range xv {
		if _, exists := g.adjacency[v]; !exists {
			g.adjacency[v] = make(map[Vertex]*Edge)
			g.order = append(g.order, v)
		}
	}
}

// AddEdge adds a directed edge to the graph from v1 to v2. The vertices are
// added if they are missing. An existing edge between them is replaced.
func (g *Graph) AddEdge(v1, v2 Vertex, e *Edge) {
	g.AddVertex(v1, v2)
	g.adjacency[v1][v2] = e
}

// HasVertex returns if the input vertex exists in the graph.
func (g *Graph) HasVertex(v Vertex) bool {
	_, exists := g.adjacency[v]
	return exists
}

// FindEdge returns the edge from v1 to v2 if it exists.
func (g *Graph) FindEdge(v1, v2 Vertex) *Edge {
	return g.adjacency[v1][v2]
}

// NumVertices returns the number of vertices in the graph.
func (g *Graph) NumVertices() int {
	return len(g.adjacency)
}

// NumEdges returns the number of edges in the graph.
func (g *Graph) NumEdges() int {
	count := 0
	for k := range g.adjacency {
		count += len(g.adjacency[k])
	}
	return count
}

// Vertices returns a new list of all the vertices, in insertion order.
func (g *Graph) Vertices() []Vertex {
	return append([]Vertex{}, g.order...)
}

// VerticesSorted returns a new list of all the vertices, sorted by name.
func (g *Graph) VerticesSorted() []Vertex {
	vertices := g.Vertices()
	sort.SliceStable(vertices, func(i, j int) bool {
		return vertices[i].String() < vertices[j].String()
	})
	return vertices
}

// OutgoingGraphVertices returns an array of vertices that this vertex points to
// in insertion order.
func (g *Graph) OutgoingGraphVertices(v Vertex) []Vertex {
	result := []Vertex{}
	for _, x := range g.order {
		if _, exists := g.adjacency[v][x]; exists {
			result = append(result, x)
		}
	}
	return result
}

// IncomingGraphVertices returns an array of vertices that point to this vertex
// in insertion order.
func (g *Graph) IncomingGraphVertices(v Vertex) []Vertex {
	result := []Vertex{}
	for _, x := range g.order {
		if _, exists := g.adjacency[x][v]; exists {
			result = append(result, x)
		}
	}
	return result
}

// InDegree returns the count of vertices that point to me in one big lookup
// map.
func (g *Graph) InDegree() map[Vertex]int {
	result := make(map[Vertex]int)
	for k := range g.adjacency {
		result[k] = 0 // initialize
	}

	for k := range g.adjacency {
		for z := range g.adjacency[k] {
			result[z]++
		}
	}
	return result
}

// OutDegree returns the count of vertices that point away in one big lookup
// map.
func (g *Graph) OutDegree() map[Vertex]int {
	result := make(map[Vertex]int)
	for k := range g.adjacency {
		result[k] = len(g.adjacency[k])
	}
	return result
}

// TopologicalSort returns the sort of graph vertices in that order. It errors
// if the graph has a cycle. Ties are broken by insertion order.
func (g *Graph) TopologicalSort() ([]Vertex, error) { // kahn's algorithm
	var L []Vertex                    // empty list that will contain the sorted elements
	var S []Vertex                    // set of all nodes with no incoming edges
	remaining := make(map[Vertex]int) // amount of edges remaining

	indegree := g.InDegree()
	for _, v := range g.order {
		if d := indegree[v]; d == 0 {
			S = append(S, v)
		} else {
			remaining[v] = d
		}
	}

	for len(S) > 0 {
		v := S[0] // remove a node v from S
		S = S[1:]
		L = append(L, v) // add v to tail of L
		for _, n := range g.OutgoingGraphVertices(v) {
			remaining[n]--         // remove edge from the graph
			if remaining[n] == 0 { // if n has no other incoming edges
				S = append(S, n) // insert n into S
			}
		}
	}

	if len(L) != len(g.order) {
		return nil, fmt.Errorf("not a dag")
	}
	return L, nil
}

// Reachability finds the shortest path from a to b, and returns the vertices
// of that path including both a and b. It returns nil if no path exists.
func (g *Graph) Reachability(a, b Vertex) []Vertex {
	if !g.HasVertex(a) || !g.HasVertex(b) {
		return nil
	}
	parent := map[Vertex]Vertex{a: nil}
	queue := []Vertex{a}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if v == b {
			path := []Vertex{}
			for x := b; x != nil; x = parent[x] {
				path = append([]Vertex{x}, path...)
			}
			return path
		}
		for _, n := range g.OutgoingGraphVertices(v) {
			if _, seen := parent[n]; seen {
				continue
			}
			parent[n] = v
			queue = append(queue, n)
		}
	}
	return nil
}
