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

package pgraph

import (
	"testing"

	"github.com/purpleidea/glfuzz/util"

	"github.com/spf13/afero"
)

type vtex string

func (obj *vtex) String() string { return string(*obj) }

func NV(s string) Vertex {
	obj := vtex(s)
	return &obj
}

func vertexNames(vs []Vertex) []string {
	names := []string{}
	for _, v := range vs {
		names = append(names, v.String())
	}
	return names
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCount1(t *testing.T) {
	G := NewGraph("g1")
	if i := G.NumVertices(); i != 0 {
		t.Errorf("should have 0 vertices instead of: %d", i)
	}
	if i := G.NumEdges(); i != 0 {
		t.Errorf("should have 0 edges instead of: %d", i)
	}

	v1 := NV("v1")
	v2 := NV("v2")
	e1 := NewEdge("e1")
	G.AddEdge(v1, v2, e1)

	if i := G.NumVertices(); i != 2 {
		t.Errorf("should have 2 vertices instead of: %d", i)
	}
	if i := G.NumEdges(); i != 1 {
		t.Errorf("should have 1 edges instead of: %d", i)
	}
	G.AddVertex(v1) // again
	if i := G.NumVertices(); i != 2 {
		t.Errorf("should have 2 vertices instead of: %d", i)
	}
	if G.FindEdge(v1, v2) != e1 || G.FindEdge(v2, v1) != nil {
		t.Errorf("unexpected edges")
	}
	if !G.HasVertex(v1) || G.HasVertex(NV("v1")) {
		t.Errorf("vertices must be compared by identity")
	}
}

func TestDegree1(t *testing.T) {
	G := NewGraph("g2")
	v1, v2, v3 := NV("v1"), NV("v2"), NV("v3")
	G.AddEdge(v1, v2, NewEdge("e1"))
	G.AddEdge(v1, v3, NewEdge("e2"))
	G.AddEdge(v2, v3, NewEdge("e3"))

	in, out := G.InDegree(), G.OutDegree()
	if in[v1] != 0 || in[v2] != 1 || in[v3] != 2 {
		t.Errorf("unexpected indegree: %v", in)
	}
	if out[v1] != 2 || out[v2] != 1 || out[v3] != 0 {
		t.Errorf("unexpected outdegree: %v", out)
	}
	if names := vertexNames(G.IncomingGraphVertices(v3)); !sameNames(names, []string{"v1", "v2"}) {
		t.Errorf("unexpected incoming vertices: %v", names)
	}
	if names := vertexNames(G.OutgoingGraphVertices(v1)); !sameNames(names, []string{"v2", "v3"}) {
		t.Errorf("unexpected outgoing vertices: %v", names)
	}
}

func TestTopoSort1(t *testing.T) {
	G := NewGraph("g3")
	v1, v2, v3, v4, v5 := NV("v1"), NV("v2"), NV("v3"), NV("v4"), NV("v5")
	G.AddVertex(v5)
	G.AddEdge(v1, v2, NewEdge("e1"))
	G.AddEdge(v2, v3, NewEdge("e2"))
	G.AddEdge(v1, v4, NewEdge("e3"))
	G.AddEdge(v4, v3, NewEdge("e4"))

	s, err := G.TopologicalSort()
	if err != nil {
		t.Errorf("topological sort failed: %+v", err)
		return
	}
	if names := vertexNames(s); !sameNames(names, []string{"v5", "v1", "v2", "v4", "v3"}) {
		t.Errorf("unexpected order: %v", names)
	}
}

func TestTopoSort2(t *testing.T) {
	G := NewGraph("g4")
	v1, v2, v3 := NV("v1"), NV("v2"), NV("v3")
	G.AddEdge(v1, v2, NewEdge("e1"))
	G.AddEdge(v2, v3, NewEdge("e2"))
	G.AddEdge(v3, v1, NewEdge("e3"))
	if _, err := G.TopologicalSort(); err == nil {
		t.Errorf("topological sort passed, but graph is cyclic")
	}
}

func TestReachability1(t *testing.T) {
	G := NewGraph("g5")
	v1, v2, v3, v4, v5 := NV("v1"), NV("v2"), NV("v3"), NV("v4"), NV("v5")
	G.AddEdge(v1, v2, NewEdge("e1"))
	G.AddEdge(v2, v3, NewEdge("e2"))
	G.AddEdge(v3, v4, NewEdge("e3"))
	G.AddEdge(v1, v4, NewEdge("e4"))
	G.AddVertex(v5)

	if names := vertexNames(G.Reachability(v1, v4)); !sameNames(names, []string{"v1", "v4"}) {
		t.Errorf("unexpected path: %v", names)
	}
	if names := vertexNames(G.Reachability(v2, v4)); !sameNames(names, []string{"v2", "v3", "v4"}) {
		t.Errorf("unexpected path: %v", names)
	}
	if p := G.Reachability(v4, v1); p != nil {
		t.Errorf("unexpected path: %v", vertexNames(p))
	}
	if p := G.Reachability(v1, v5); p != nil {
		t.Errorf("unexpected path: %v", vertexNames(p))
	}
}

func TestGraphviz1(t *testing.T) {
	G := NewGraph("calls")
	v1, v2 := NV("main"), NV("f")
	G.AddEdge(v1, v2, NewEdge("call"))

	exp := util.Code(`
	digraph "calls" {
		label="calls";
		"v0" [label="main"];
		"v1" [label="f"];
		"v0" -> "v1" [label="call"];
	}
	`)
	if s := G.Graphviz(); s != exp {
		t.Errorf("unexpected graphviz output:\n%s", s)
	}

	fs := afero.NewMemMapFs()
	if err := G.WriteGraphviz(fs, "/calls.dot"); err != nil {
		t.Errorf("could not write: %+v", err)
		return
	}
	b, err := afero.ReadFile(fs, "/calls.dot")
	if err != nil {
		t.Errorf("could not read: %+v", err)
		return
	}
	if string(b) != exp {
		t.Errorf("file contents differ")
	}
	if err := G.WriteGraphviz(fs, ""); err == nil {
		t.Errorf("expected an error for an empty filename")
	}
}
