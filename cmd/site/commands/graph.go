package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/TomerAberbach/website/domain/core/aggregates"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newGraphCommand(opts *options) *cobra.Command {
	var showEdges bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the vertices and edges of the graph",
		Long: `Print the vertices of the graph with their degree and position.

Examples:
  site graph
  site graph --edges`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, container, snap, cleanup, err := opts.buildOnce(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			defer func() { _ = container.Logger.Sync() }()

			w := cmd.OutOrStdout()
			printSummary(w, snap)
			fmt.Fprintln(w)
			printVertices(w, snap.Graph)
			if showEdges {
				fmt.Fprintln(w)
				printEdges(w, snap.Graph)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showEdges, "edges", false, "also print every edge")
	return cmd
}

func printVertices(w io.Writer, graph *aggregates.Graph) {
	in := map[string]int{}
	out := map[string]int{}
	for _, e := range graph.Edges() {
		out[e.FromID]++
		in[e.ToID]++
	}

	rows := make([][]string, 0, graph.VertexCount())
	for _, v := range graph.Vertices() {
		kind := "post"
		if v.External {
			kind = warn.Sprint("external")
		}
		pos, _ := graph.Position(v.ID)
		rows = append(rows, []string{
			v.ID,
			kind,
			humanize.Comma(int64(out[v.ID])),
			humanize.Comma(int64(in[v.ID])),
			fmt.Sprintf("%.1f, %.1f", pos.X(), pos.Y()),
		})
	}
	printTable(w, []string{"VERTEX", "KIND", "OUT", "IN", "POSITION"}, rows)
}

func printEdges(w io.Writer, graph *aggregates.Graph) {
	edges := graph.Edges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].Key() < edges[j].Key() })

	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []string{e.FromID, e.ToID, strings.Join(e.Hrefs.Values(), " ")})
	}
	printTable(w, []string{"FROM", "TO", "HREFS"}, rows)
}

// printTable prints left aligned columns
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	line := func(cells []string) string {
		var b strings.Builder
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(cell)
				break
			}
			fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
		}
		return b.String()
	}

	fmt.Fprintln(w, subtle.Sprint(line(headers)))
	for _, row := range rows {
		fmt.Fprintln(w, line(row))
	}
}
