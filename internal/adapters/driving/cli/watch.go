package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern-cli/internal/core/ports/driving"
)

var (
	watchFileTypes []string
	watchWorkers   int
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a path and re-ingest changes",
	Long: `Ingests the given file or directory, then keeps watching it and
re-ingests files as they are created or modified. Changes are
debounced, so an editor writing in bursts triggers one re-ingestion
per file.

The command runs until interrupted with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVarP(&watchFileTypes, "file-types", "t", nil, "file types to include (e.g. txt,md,docx); default all supported")
	watchCmd.Flags().IntVar(&watchWorkers, "workers", 0, "file-level parallelism (0 = configured default)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := args[0]

	if watchService == nil {
		return errors.New("watch service not configured")
	}

	opts := driving.DefaultIngestOptions()
	opts.FileTypes = watchFileTypes
	if watchWorkers > 0 {
		opts.Workers = watchWorkers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", root)

	if err := watchService.Watch(ctx, root, opts); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Println("Stopped watching.")
	return nil
}
