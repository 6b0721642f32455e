package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/localrag/internal/vectordb"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find the stored documents most similar to a query",
	Long:  `Embeds the query and returns the stored documents ranked by cosine similarity, most similar first.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntP("top-k", "k", 0, "maximum number of results (default from config)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	topK, _ := cmd.Flags().GetInt("top-k")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if !cmd.Flags().Changed("top-k") {
		topK = s.cfg.TopK
	}

	results, err := s.store.SimilaritySearch(ctx, query, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		if s.store.Count() == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "The store is empty. Add documents with `localrag add` or `localrag ingest`.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No results found.")
		}
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), vectordb.FormatResults(results))
	return nil
}
