package graph

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// DefaultMermaidInkURL renders Mermaid diagrams to images.
const DefaultMermaidInkURL = "https://mermaid.ink/img/"

// Exporter renders a graph as Mermaid, ASCII, SVG or PNG.
type Exporter[S any] struct {
	graph *StateGraph[S]
}

// NewExporter creates an exporter for g.
func NewExporter[S any](g *StateGraph[S]) *Exporter[S] {
	return &Exporter[S]{graph: g}
}

type drawEdge struct {
	from, to    string
	conditional bool
}

// drawEdges lists every edge including the START edge, in a stable order.
func (ge *Exporter[S]) drawEdges() []drawEdge {
	g := ge.graph
	var out []drawEdge
	if g.entryPoint != "" {
		out = append(out, drawEdge{from: START, to: g.entryPoint})
	}
	for _, e := range g.edges {
		out = append(out, drawEdge{from: e.From, to: e.To})
	}

	froms := make([]string, 0, len(g.conditionalEdges))
	for from := range g.conditionalEdges {
		froms = append(froms, from)
	}
	slices.Sort(froms)
	for _, from := range froms {
		targets := g.conditionalEdges[from].targets
		if len(targets) == 0 {
			// undeclared targets may be any node
			for _, n := range g.order {
				out = append(out, drawEdge{from: from, to: n, conditional: true})
			}
			out = append(out, drawEdge{from: from, to: END, conditional: true})
			continue
		}
		for _, t := range targets {
			out = append(out, drawEdge{from: from, to: t, conditional: true})
		}
	}
	return out
}

func (ge *Exporter[S]) reachesEnd() bool {
	return slices.ContainsFunc(ge.drawEdges(), func(e drawEdge) bool { return e.to == END })
}

// DrawMermaid returns a Mermaid flowchart. Conditional edges are dotted.
func (ge *Exporter[S]) DrawMermaid() string {
	var sb strings.Builder
	sb.WriteString("---\nconfig:\n  flowchart:\n    curve: linear\n---\ngraph TD;\n")
	fmt.Fprintf(&sb, "\t%s([<p>%s</p>]):::first\n", START, START)
	for _, n := range ge.graph.order {
		fmt.Fprintf(&sb, "\t%s(%s)\n", n, n)
	}
	if ge.reachesEnd() {
		fmt.Fprintf(&sb, "\t%s([<p>%s</p>]):::last\n", END, END)
	}
	for _, e := range ge.drawEdges() {
		arrow := "-->"
		if e.conditional {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "\t%s %s %s;\n", e.from, arrow, e.to)
	}
	sb.WriteString("\tclassDef default fill:#f2f0ff,line-height:1.2\n")
	sb.WriteString("\tclassDef first fill-opacity:0\n")
	sb.WriteString("\tclassDef last fill:#bfb6fc\n")
	return sb.String()
}

// DrawASCII returns the graph as a tree rooted at START. Nodes already
// printed are marked as cycles.
func (ge *Exporter[S]) DrawASCII() string {
	if ge.graph.entryPoint == "" {
		return "No entry point set\n"
	}

	children := make(map[string][]string)
	for _, e := range ge.drawEdges() {
		label := e.to
		if e.conditional {
			label = "?" + e.to
		}
		children[e.from] = append(children[e.from], label)
	}

	var sb strings.Builder
	sb.WriteString(START + "\n")
	visited := map[string]bool{START: true}

	var walk func(name, prefix string)
	walk = func(name, prefix string) {
		kids := children[name]
		for i, label := range kids {
			connector, nextPrefix := "├── ", prefix+"│   "
			if i == len(kids)-1 {
				connector, nextPrefix = "└── ", prefix+"    "
			}
			target := strings.TrimPrefix(label, "?")
			suffix := ""
			if label != target {
				suffix = " (conditional)"
			}
			if visited[target] {
				fmt.Fprintf(&sb, "%s%s%s%s (cycle)\n", prefix, connector, target, suffix)
				continue
			}
			fmt.Fprintf(&sb, "%s%s%s%s\n", prefix, connector, target, suffix)
			if target == END {
				continue
			}
			visited[target] = true
			walk(target, nextPrefix)
		}
	}
	walk(START, "")
	return sb.String()
}

// layers assigns each node its BFS distance from START.
func (ge *Exporter[S]) layers() [][]string {
	edges := ge.drawEdges()
	depth := map[string]int{START: 0}
	queue := []string{START}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, e := range edges {
			if e.from != n || e.to == END {
				continue
			}
			if _, ok := depth[e.to]; !ok {
				depth[e.to] = depth[n] + 1
				queue = append(queue, e.to)
			}
		}
	}

	maxDepth := 0
	for _, n := range ge.graph.order {
		if _, ok := depth[n]; !ok {
			// unreachable nodes go below the entry point
			depth[n] = 1
		}
		maxDepth = max(maxDepth, depth[n])
	}

	out := make([][]string, maxDepth+1)
	out[0] = []string{START}
	for _, n := range ge.graph.order {
		out[depth[n]] = append(out[depth[n]], n)
	}
	if ge.reachesEnd() {
		out = append(out, []string{END})
	}
	return out
}

// DrawSVG writes a layered SVG diagram to w.
func (ge *Exporter[S]) DrawSVG(w io.Writer) error {
	const (
		boxW, boxH = 140, 36
		gapX, gapY = 40, 60
		margin     = 20
	)

	layers := ge.layers()
	widest := 0
	for _, l := range layers {
		widest = max(widest, len(l))
	}
	width := margin*2 + widest*boxW + (widest-1)*gapX
	height := margin*2 + len(layers)*boxH + (len(layers)-1)*gapY

	pos := make(map[string][2]int)
	for row, l := range layers {
		rowW := len(l)*boxW + (len(l)-1)*gapX
		x0 := (width - rowW) / 2
		for col, n := range l {
			pos[n] = [2]int{x0 + col*(boxW+gapX), margin + row*(boxH+gapY)}
		}
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height)
	canvas.Title("graph")
	canvas.Def()
	canvas.Marker("arrow", 10, 5, 10, 10, "orient:auto")
	canvas.Path("M0,0 L10,5 L0,10 z", "fill:#333")
	canvas.MarkerEnd()
	canvas.DefEnd()

	for _, e := range ge.drawEdges() {
		src, okSrc := pos[e.from]
		dst, okDst := pos[e.to]
		if !okSrc || !okDst {
			continue
		}
		style := "stroke:#333;stroke-width:1.5;marker-end:url(#arrow)"
		if e.conditional {
			style += ";stroke-dasharray:5,4"
		}
		x1, y1 := src[0]+boxW/2, src[1]+boxH
		x2, y2 := dst[0]+boxW/2, dst[1]
		if dst[1] <= src[1] {
			// back edge: leave from the side
			x1, y1 = src[0]+boxW, src[1]+boxH/2
			x2, y2 = dst[0]+boxW, dst[1]+boxH/2
		}
		canvas.Line(x1, y1, x2, y2, style)
	}

	for _, n := range slices.Concat(layers...) {
		p := pos[n]
		fill := "#f2f0ff"
		switch n {
		case START:
			fill = "#ffffff"
		case END:
			fill = "#bfb6fc"
		}
		canvas.Roundrect(p[0], p[1], boxW, boxH, 10, 10, fmt.Sprintf("fill:%s;stroke:#333;stroke-width:1", fill))
		canvas.Text(p[0]+boxW/2, p[1]+boxH/2+5, n, "text-anchor:middle;font-size:13px;font-family:sans-serif;fill:#000")
	}
	canvas.End()

	_, err := w.Write(buf.Bytes())
	return err
}

// DrawMermaidPNG renders the Mermaid diagram through a mermaid.ink
// compatible service. An empty baseURL uses DefaultMermaidInkURL.
func (ge *Exporter[S]) DrawMermaidPNG(ctx context.Context, client *http.Client, baseURL string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultMermaidInkURL
	}

	encoded := base64.URLEncoding.EncodeToString([]byte(ge.DrawMermaid()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+encoded+"?type=png", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to render diagram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("mermaid renderer returned status %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
