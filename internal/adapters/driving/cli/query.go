package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driving"
)

const excerptPreviewLen = 200

var (
	queryTopK      int
	queryNoSources bool
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a single question",
	Long: `Answers one natural-language question from the indexed documents.
The question is embedded, the most similar chunks are retrieved, and
the answer is generated from those chunks with source citations.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	queryCmd.Flags().BoolVar(&queryNoSources, "no-sources", false, "do not display source citations")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]

	if queryService == nil {
		return errors.New("query service not configured")
	}

	ctx := context.Background()
	opts := driving.QueryOptions{
		TopK: queryTopK,
	}

	result, err := queryService.Query(ctx, question, opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputAnswerJSON(cmd, result)
	}

	return outputAnswerText(cmd, result)
}

func outputAnswerJSON(cmd *cobra.Command, result *domain.AnswerResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, result *domain.AnswerResult) error {
	cmd.Println(result.Answer)

	if queryNoSources || len(result.Sources) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Printf("Sources (%d):\n", len(result.Sources))
	for i, src := range result.Sources {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.SourceID, src.Similarity)
		if src.Excerpt != "" {
			cmd.Printf("      %s\n", excerptPreview(src.Excerpt))
		}
	}

	return nil
}

// excerptPreview flattens an excerpt to a single truncated line.
func excerptPreview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if len(flat) <= excerptPreviewLen {
		return flat
	}
	return flat[:excerptPreviewLen] + "..."
}
