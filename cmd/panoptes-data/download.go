package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/panoptes/panoptes-data-go/pkg/logging"
	"github.com/panoptes/panoptes-data-go/pkg/observations"
	"github.com/panoptes/panoptes-data-go/pkg/storage"
)

type downloadFlags struct {
	destination string
	overwrite   bool
	concurrency int
}

func newDownloadCommand() *cobra.Command {
	flags := &downloadFlags{}

	cmd := &cobra.Command{
		Use:   "download SEQUENCE_ID",
		Short: "Download an observation's images",
		Long:  "Download every image of the named observation sequence from the image store.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sequenceID := args[0]
			runCommand(cmd, fx.Invoke(
				func(lc fx.Lifecycle, sh fx.Shutdowner, l *zap.Logger, logger logging.Interface, store storage.ObjectStore) {
					startAction(lc, sh, l, "download", func(ctx context.Context) error {
						return runDownload(ctx, store, logger, sequenceID, flags)
					})
				}),
				storage.Module)
		},
	}

	cmd.Flags().StringVarP(&flags.destination, "destination", "o", "", "directory to download into (default ./SEQUENCE_ID)")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "re-download files that already exist")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "number of parallel downloads")

	return cmd
}

func runDownload(ctx context.Context, store storage.ObjectStore, logger logging.Interface, sequenceID string, flags *downloadFlags) error {
	accessor, err := observations.NewAccessorFromSequenceID(sequenceID, store, logger)
	if err != nil {
		return err
	}

	opts := []observations.DownloadImagesOption{
		observations.WithOverwrite(flags.overwrite),
		observations.WithProgress(func(completed, total int, key string) {
			fmt.Printf("[%d/%d] %s\n", completed, total, key)
		}),
	}
	if flags.concurrency > 0 {
		opts = append(opts, observations.WithConcurrency(flags.concurrency))
	}

	paths, err := accessor.DownloadImages(ctx, flags.destination, opts...)

	// Completed files are kept even when some objects failed.
	if len(paths) > 0 {
		fmt.Printf("Downloaded %d file(s).\n", len(paths))
	}
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Printf("No images found for %s.\n", sequenceID)
	}
	return nil
}
