package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/ritzau/topology-lens/pkg/lens"
	"github.com/ritzau/topology-lens/pkg/model"
)

// GraphPrinter writes a display graph as a colored text report. It collects
// vertices and edges through the lens.Visitor interface.
type GraphPrinter struct {
	vertices []model.Vertex
	edges    []model.Edge
}

func (p *GraphPrinter) VisitVertex(v model.Vertex) {
	p.vertices = append(p.vertices, v)
}

func (p *GraphPrinter) VisitEdge(e model.Edge) {
	p.edges = append(p.edges, e)
}

// PrintGraph prints a display graph with colors
func PrintGraph(w io.Writer, title string, g *lens.Graph) {
	p := &GraphPrinter{}
	g.Visit(p)
	p.print(w, title, g.SemanticZoomLevel())
}

func (p *GraphPrinter) print(w io.Writer, title string, zoom int) {
	// Color definitions
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)
	magenta := color.New(color.FgMagenta)
	faint := color.New(color.Faint)

	// Header
	header := fmt.Sprintf("Topology Lens - %s", title)
	bold.Fprintln(w, header)
	bold.Fprintln(w, strings.Repeat("=", len(header)))
	fmt.Fprintf(w, "Zoom level: %d\n", zoom)
	fmt.Fprintf(w, "Showing: %d vertices, %d edges\n", len(p.vertices), len(p.edges))
	fmt.Fprintln(w)

	if len(p.vertices) == 0 {
		yellow.Fprintln(w, "Nothing to display. Add a focus vertex or lower the zoom level.")
		return
	}

	bold.Fprintln(w, "VERTICES:")
	for _, v := range p.vertices {
		if v.ChildCount > 0 {
			cyan.Fprintf(w, "  %s", v.VertexRef)
			faint.Fprintf(w, " (group of %d)", v.ChildCount)
		} else {
			fmt.Fprintf(w, "  %s", v.VertexRef)
		}
		if v.Label != "" && v.Label != v.ID {
			fmt.Fprintf(w, " %q", v.Label)
		}
		if v.StyleName != "" {
			faint.Fprintf(w, " [%s]", v.StyleName)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	if len(p.edges) == 0 {
		return
	}

	bold.Fprintln(w, "EDGES:")
	for _, e := range p.edges {
		edgeColor := color.New(color.Reset)
		if strings.HasPrefix(e.Namespace, lens.PseudoNamespacePrefix) {
			edgeColor = magenta
		}
		edgeColor.Fprintf(w, "  %s", e.EdgeRef)
		fmt.Fprintf(w, ": %s -> %s", e.Source.Vertex, e.Target.Vertex)
		if e.Label != "" {
			fmt.Fprintf(w, " %q", e.Label)
		}
		fmt.Fprintln(w)
	}
}
