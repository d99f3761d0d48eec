package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driving"
)

var (
	ingestFile        string
	ingestDirectory   string
	ingestFileTypes   []string
	ingestNoRecursive bool
	ingestForce       bool
	ingestWorkers     int
	ingestListFiles   bool
	ingestJSON        bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest documents into the index",
	Long: `Loads documents, splits them into chunks, embeds the chunks, and
stores them in the local vector index.

Provide either a single file or a directory. Directories are scanned
recursively by default; use --file-types to restrict which extensions
are picked up. Unchanged files are skipped unless --force is given.

Per-file failures are reported in the summary without aborting the
run; the exit code is non-zero only for structural errors such as a
missing root path.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "path to a single document file")
	ingestCmd.Flags().StringVar(&ingestDirectory, "directory", "", "path to a directory of documents")
	ingestCmd.Flags().StringSliceVarP(&ingestFileTypes, "file-types", "t", nil, "file types to include (e.g. txt,md,docx); default all supported")
	ingestCmd.Flags().BoolVar(&ingestNoRecursive, "no-recursive", false, "do not descend into subdirectories")
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "re-ingest files even when their content is unchanged")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "file-level parallelism (0 = configured default)")
	ingestCmd.Flags().BoolVar(&ingestListFiles, "list-files", false, "list candidate files without ingesting them")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if ingestFile == "" && ingestDirectory == "" {
		return errors.New("either --file or --directory must be provided")
	}
	if ingestFile != "" && ingestDirectory != "" {
		return errors.New("--file and --directory are mutually exclusive")
	}

	root := ingestFile
	if root == "" {
		root = ingestDirectory
	}

	opts := driving.DefaultIngestOptions()
	opts.FileTypes = ingestFileTypes
	opts.Recursive = !ingestNoRecursive
	opts.Force = ingestForce
	if ingestWorkers > 0 {
		opts.Workers = ingestWorkers
	}

	ctx := context.Background()

	if ingestListFiles {
		if ingestDirectory == "" {
			return errors.New("--list-files requires --directory")
		}
		return listCandidates(ctx, cmd, root, opts)
	}

	report, err := ingestService.Ingest(ctx, root, opts)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if ingestJSON {
		return outputIngestJSON(cmd, report)
	}

	return outputIngestSummary(cmd, report)
}

func listCandidates(ctx context.Context, cmd *cobra.Command, root string, opts driving.IngestOptions) error {
	paths, err := ingestService.ListCandidates(ctx, root, opts)
	if err != nil {
		return fmt.Errorf("listing files failed: %w", err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(paths, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal file list: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(paths) == 0 {
		cmd.Println("No files found matching the criteria.")
		return nil
	}

	cmd.Printf("Files found in %s:\n", root)
	for _, p := range paths {
		cmd.Printf("  - %s\n", p)
	}
	cmd.Printf("\nTotal: %d file(s)\n", len(paths))
	return nil
}

func outputIngestJSON(cmd *cobra.Command, report *domain.IngestionReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputIngestSummary(cmd *cobra.Command, report *domain.IngestionReport) error {
	cmd.Printf("Processed %d file(s) in %s\n", report.Total(), report.Duration.Round(time.Millisecond))
	cmd.Printf("  Accepted: %d\n", report.Accepted)
	cmd.Printf("  Skipped:  %d (unchanged)\n", report.SkippedDuplicate)
	cmd.Printf("  Failed:   %d\n", len(report.Failed))

	if report.HasFailures() {
		cmd.Println()
		cmd.Println("Failures:")
		for _, f := range report.Failed {
			cmd.Printf("  - %s: %s\n", f.Path, f.Reason)
		}
	}

	return nil
}
