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
	"fmt"
	"strconv"
	"strings"

	"github.com/purpleidea/glfuzz/util/errwrap"

	"github.com/spf13/afero"
)

// Graphviz outputs the graph in graphviz format.
// https://en.wikipedia.org/wiki/DOT_%28graph_description_language%29
func (g *Graph) Graphviz() string {
	//digraph "calls" {
	//	label="calls";
	//	"v0" [label="main"];
	//	"v1" [label="f"];
	//	"v0" -> "v1" [label="call"];
	//}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "digraph %s {\n", strconv.Quote(g.Name))
	fmt.Fprintf(sb, "\tlabel=%s;\n", strconv.Quote(g.Name))
	ids := make(map[Vertex]string)
	for i, v := range g.order {
		ids[v] = fmt.Sprintf("v%d", i)
		fmt.Fprintf(sb, "\t\"%s\" [label=%s];\n", ids[v], strconv.Quote(v.String()))
	}
	str := "" // edges go last for clearer output ordering
	for _, v1 := range g.order {
		for _, v2 := range g.OutgoingGraphVertices(v1) {
			e := strconv.Quote(g.adjacency[v1][v2].String())
			str += fmt.Sprintf("\t\"%s\" -> \"%s\" [label=%s];\n", ids[v1], ids[v2], e)
		}
	}
	sb.WriteString(str)
	sb.WriteString("}\n")
	return sb.String()
}

// WriteGraphviz writes out the graphviz data to a file on the filesystem.
func (g *Graph) WriteGraphviz(fs afero.Fs, filename string) error {
	if filename == "" {
		return fmt.Errorf("no filename given")
	}
	if err := afero.WriteFile(fs, filename, []byte(g.Graphviz()), 0644); err != nil {
		return errwrap.Wrapf(err, "error writing to filename")
	}
	return nil
}
