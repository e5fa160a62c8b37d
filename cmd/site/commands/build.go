package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newBuildCommand(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the graph once and write it as JSON",
		Long: `Build the graph once and write it as JSON.

The JSON holds the vertices and edges keyed by ID and the rendering layout:
a bounding box and a position for every vertex.

Examples:
  site build --out graph.json
  site build --content ./posts --layout-steps 5000 --out -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			_, container, snap, cleanup, err := opts.buildOnce(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			defer func() { _ = container.Logger.Sync() }()

			body, err := json.Marshal(snap.Graph)
			if err != nil {
				return fmt.Errorf("failed to encode graph: %w", err)
			}

			if out == "-" {
				_, err := cmd.OutOrStdout().Write(append(body, '\n'))
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			w := cmd.ErrOrStderr()
			printSummary(w, snap)
			fmt.Fprintf(w, "%s %s (%s) in %s\n",
				good.Sprint("wrote"), out, humanize.Bytes(uint64(len(body))),
				time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "graph.json", "output file, or - for stdout")
	return cmd
}
