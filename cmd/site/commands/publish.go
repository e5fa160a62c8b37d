package commands

import (
	"encoding/json"
	"fmt"

	"github.com/TomerAberbach/website/infrastructure/di"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newPublishCommand(opts *options) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Build the graph and upload it to S3",
		Long: `Build the graph and upload its JSON to S3.

The bucket comes from publishBucket (PUBLISH_BUCKET) and the object key
from publishKey (PUBLISH_KEY) unless --key is given. AWS credentials are
resolved the usual way: environment, shared config, or an instance role.

Examples:
  PUBLISH_BUCKET=my-site site publish
  site publish --key graphs/latest.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, container, snap, cleanup, err := opts.buildOnce(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			defer func() { _ = container.Logger.Sync() }()

			if cfg.PublishBucket == "" {
				return fmt.Errorf("publishBucket is not configured")
			}
			if key == "" {
				key = cfg.PublishKey
			}

			body, err := json.Marshal(snap.Graph)
			if err != nil {
				return fmt.Errorf("failed to encode graph: %w", err)
			}

			publisher, err := di.InitializePublisher(ctx, cfg, container.Logger)
			if err != nil {
				return fmt.Errorf("failed to configure AWS: %w", err)
			}
			location, err := publisher.Publish(ctx, key, body, "application/json")
			if err != nil {
				return err
			}

			w := cmd.ErrOrStderr()
			printSummary(w, snap)
			fmt.Fprintf(w, "%s %s (%s)\n", good.Sprint("published"), location, humanize.Bytes(uint64(len(body))))
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "object key (overrides publishKey)")
	return cmd
}
