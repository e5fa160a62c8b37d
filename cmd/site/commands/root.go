// Package commands implements the site command line interface.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/TomerAberbach/website/application/services"
	"github.com/TomerAberbach/website/infrastructure/config"
	"github.com/TomerAberbach/website/infrastructure/di"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	warn   = color.New(color.FgYellow)
)

// options are the persistent flags shared by every command
type options struct {
	configFile    string
	contentDir    string
	layoutSteps   int
	includeDrafts bool
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand creates the site command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "site",
		Short: "Build and serve the blog post graph",
		Long: `Build and serve the blog post graph.

Posts are markdown files with YAML front matter. Links between posts, and
from posts to other sites, become the edges of a graph that is laid out
with a force-directed simulation.

Configuration is read from the file given by --config (or SITE_CONFIG_FILE)
and then from environment variables.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", os.Getenv("SITE_CONFIG_FILE"), "configuration file (yaml, toml, or json)")
	flags.StringVar(&opts.contentDir, "content", "", "directory of post markdown files")
	flags.IntVar(&opts.layoutSteps, "layout-steps", 0, "number of layout simulation steps (0 uses the default)")
	flags.BoolVar(&opts.includeDrafts, "drafts", false, "include draft posts")

	root.AddCommand(
		newServeCommand(opts),
		newBuildCommand(opts),
		newPublishCommand(opts),
		newGraphCommand(opts),
	)
	return root
}

// loadConfig loads the configuration and applies flag overrides
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader(o.configFile).Load()
	if err != nil {
		return nil, err
	}
	if o.contentDir != "" {
		cfg.ContentDir = o.contentDir
	}
	if o.layoutSteps > 0 {
		cfg.LayoutSteps = o.layoutSteps
	}
	if o.includeDrafts {
		cfg.IncludeDrafts = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildOnce wires the application and waits for a single graph build
func (o *options) buildOnce(ctx context.Context) (*config.Config, *di.Container, *services.Snapshot, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to initialize: %w", err)
	}
	// One-shot commands never watch content
	if container.Watcher != nil {
		container.Watcher.Stop()
	}

	snap, err := container.GraphService.Snapshot(ctx)
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, err
	}
	return cfg, container, snap, cleanup, nil
}

func printSummary(w io.Writer, snap *services.Snapshot) {
	graph := snap.Graph
	box := graph.Layout().BoundingBox
	fmt.Fprintf(w, "%s %s\n", brand.Sprint("graph"), subtle.Sprint(snap.BuildID))
	fmt.Fprintf(w, "  posts     %s\n", good.Sprint(len(snap.Posts)))
	fmt.Fprintf(w, "  vertices  %s %s\n", good.Sprint(graph.VertexCount()),
		subtle.Sprintf("(%d external)", graph.ExternalVertexCount()))
	fmt.Fprintf(w, "  edges     %s\n", good.Sprint(graph.EdgeCount()))
	fmt.Fprintf(w, "  viewport  %.0f x %.0f\n", box.Width(), box.Height())
}
