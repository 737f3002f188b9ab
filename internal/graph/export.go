package graph

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
)

// Edge is one directed edge of an exported graph, either
// Variable -> FunctionNode (an input edge) or FunctionNode -> Variable
// (a creator edge).
type Edge struct {
	FromVar  *Variable
	FromFunc *FunctionNode
	ToVar    *Variable
	ToFunc   *FunctionNode
}

// Dump is the reachable set of nodes and edges discovered from a set of
// root variables. It is produced by the same creator-chain traversal the
// backward propagator performs, without any gradient computation.
type Dump struct {
	Variables []*Variable
	Functions []*FunctionNode
	Edges     []Edge
}

// Export walks the graph upstream of the given roots and returns every
// reachable variable, function node, and edge. Read-only: intended for
// visualizers and debugging.
func Export(roots ...*Variable) *Dump {
	d := &Dump{}
	seenVar := map[*Variable]bool{}
	seenFunc := map[*FunctionNode]bool{}

	var queue []*Variable
	for _, r := range roots {
		if r != nil && !seenVar[r] {
			seenVar[r] = true
			d.Variables = append(d.Variables, r)
			queue = append(queue, r)
		}
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		n := v.creator
		if n == nil {
			continue
		}
		d.Edges = append(d.Edges, Edge{FromFunc: n, ToVar: v})
		if !seenFunc[n] {
			seenFunc[n] = true
			d.Functions = append(d.Functions, n)
			for _, in := range n.inputs {
				d.Edges = append(d.Edges, Edge{FromVar: in, ToFunc: n})
				if !seenVar[in] {
					seenVar[in] = true
					d.Variables = append(d.Variables, in)
					queue = append(queue, in)
				}
			}
		}
	}
	return d
}

// Stats summarizes an exported graph.
type Stats struct {
	Variables     int
	Functions     int
	Edges         int
	RetainedBytes uint64 // bytes held alive by variables and retention
}

// Stats computes summary statistics for the dump.
func (d *Dump) Stats() Stats {
	s := Stats{
		Variables: len(d.Variables),
		Functions: len(d.Functions),
		Edges:     len(d.Edges),
	}
	for _, v := range d.Variables {
		if v.data == nil {
			continue
		}
		s.RetainedBytes += uint64(v.data.ByteSize())
	}
	return s
}

// String renders the stats with humanized sizes.
func (s Stats) String() string {
	return fmt.Sprintf("%s variables, %s functions, %s edges, %s retained",
		humanize.Comma(int64(s.Variables)),
		humanize.Comma(int64(s.Functions)),
		humanize.Comma(int64(s.Edges)),
		humanize.Bytes(s.RetainedBytes))
}

// WriteDOT renders the dump in Graphviz DOT format: variables as ovals,
// function nodes as boxes.
func (d *Dump) WriteDOT(w io.Writer, name string) error {
	if name == "" {
		name = "ember"
	}
	varID := map[*Variable]int{}
	funcID := map[*FunctionNode]int{}
	for i, v := range d.Variables {
		varID[v] = i
	}
	for i, n := range d.Functions {
		funcID[n] = i
	}

	if _, err := fmt.Fprintf(w, "digraph %s {\n", name); err != nil {
		return err
	}
	for i, v := range d.Variables {
		label := v.name
		if label == "" {
			label = fmt.Sprintf("%s%v", v.data.DType(), v.data.Shape())
		}
		if _, err := fmt.Fprintf(w, "  v%d [label=%q, shape=oval];\n", i, label); err != nil {
			return err
		}
	}
	for i, n := range d.Functions {
		if _, err := fmt.Fprintf(w, "  f%d [label=%q, shape=box];\n", i, n.Name()); err != nil {
			return err
		}
	}
	// Sort edges for stable output.
	edges := make([]string, 0, len(d.Edges))
	for _, e := range d.Edges {
		switch {
		case e.FromFunc != nil && e.ToVar != nil:
			edges = append(edges, fmt.Sprintf("  f%d -> v%d;\n", funcID[e.FromFunc], varID[e.ToVar]))
		case e.FromVar != nil && e.ToFunc != nil:
			edges = append(edges, fmt.Sprintf("  v%d -> f%d;\n", varID[e.FromVar], funcID[e.ToFunc]))
		}
	}
	sort.Strings(edges)
	for _, line := range edges {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}
