package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/adam/internal/core/domain"
)

// snippetLength bounds the preview printed under each result.
const snippetLength = 80

var (
	searchLimit     int
	searchJSON      bool
	searchRecursive bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query] [path...]",
	Short: "Search files for text",
	Long: `Loads the given files and directories (default: the current directory)
and performs a case-insensitive substring search over their chunks.
Results list matching chunk indices per document id.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of documents")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVarP(&searchRecursive, "recursive", "r", false, "descend into subdirectories")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	paths := args[1:]
	if len(paths) == 0 {
		paths = []string{"."}
	}

	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Documents == nil {
		return errors.New("document service not configured")
	}

	ctx := cmd.Context()
	reports, err := ingestPaths(ctx, svc, paths, searchRecursive)
	if err != nil {
		return err
	}
	for _, r := range reports {
		for _, f := range r.View().Failures {
			cmd.PrintErrf("skipped: %s\n", f.Message)
		}
	}

	results, err := svc.Documents.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(ctx, cmd, svc, results)
}

func outputSearchJSON(cmd *cobra.Command, results domain.SearchResults) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(ctx context.Context, cmd *cobra.Command, svc *Services, results domain.SearchResults) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, hit := range results {
		indices := make([]string, len(hit.ChunkIndices))
		for j, idx := range hit.ChunkIndices {
			indices[j] = fmt.Sprint(idx)
		}
		cmd.Printf("  [%d] %s (chunks %s)\n", i+1, hit.DocumentID, strings.Join(indices, ", "))

		if len(hit.ChunkIndices) == 0 {
			continue
		}
		chunk, err := svc.Documents.GetChunk(ctx, hit.DocumentID, hit.ChunkIndices[0])
		if err != nil {
			continue
		}
		cmd.Printf("      %s\n", snippet(chunk.Content))
	}
	cmd.Println()
	cmd.Printf("%d chunks in %d documents\n", results.TotalChunks(), len(results))
	return nil
}

// snippet returns the first non-blank line of text, shortened to snippetLength runes.
func snippet(text string) string {
	line := ""
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	runes := []rune(line)
	if len(runes) > snippetLength {
		return string(runes[:snippetLength]) + "..."
	}
	return line
}
