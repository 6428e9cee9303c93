package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"

	"github.com/tvme/intro-LangGraph/graph"
	"github.com/tvme/intro-LangGraph/internal/lessons"
)

// drawers render the graph of a lesson without calling a model.
var drawers = map[string]func(w io.Writer, format string) error{
	"simple-graph": func(w io.Writer, format string) error {
		return draw(w, format, graph.NewExporter(lessons.BuildSimpleGraph(io.Discard, func() float64 { return 0 })))
	},
	"chain": func(w io.Writer, format string) error {
		return draw(w, format, graph.NewExporter(lessons.BuildChain(nilModel{})))
	},
	"agent": func(w io.Writer, format string) error {
		return draw(w, format, graph.NewExporter(lessons.BuildArithmeticAgent(nilModel{})))
	},
	"trim": func(w io.Writer, format string) error {
		return draw(w, format, graph.NewExporter(lessons.BuildTrim(nilModel{}, lessons.TrimOptions{Filter: true})))
	},
	"summary-bot": func(w io.Writer, format string) error {
		return draw(w, format, graph.NewExporter(lessons.BuildSummaryBot(nilModel{})))
	},
}

func newDrawCmd() *cobra.Command {
	var format string
	names := make([]string, 0, len(drawers))
	for name := range drawers {
		names = append(names, name)
	}
	sort.Strings(names)

	cmd := &cobra.Command{
		Use:       "draw <lesson>",
		Short:     "Print the graph of a lesson",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := drawers[args[0]]
			if !ok {
				return fmt.Errorf("no graph for lesson %q, try one of %v", args[0], names)
			}
			return d(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "mermaid", "mermaid|ascii|svg")
	return cmd
}

func draw[S any](w io.Writer, format string, ex *graph.Exporter[S]) error {
	switch format {
	case "mermaid":
		_, err := io.WriteString(w, ex.DrawMermaid())
		return err
	case "ascii":
		_, err := io.WriteString(w, ex.DrawASCII())
		return err
	case "svg":
		return ex.DrawSVG(w)
	}
	return fmt.Errorf("unknown format %q", format)
}

// nilModel stands in for the chat model when only the graph shape matters.
type nilModel struct {
	llms.Model
}
