package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/localrag/internal/vectordb"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents in insertion order",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().Bool("json", false, "output documents as JSON (without embeddings)")
	rootCmd.AddCommand(listCmd)
}

type listedDocument struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Dimensions int             `json:"dimensions"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func runList(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	docs, err := s.store.GetAllDocuments()
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if jsonOutput {
		out := make([]listedDocument, 0, len(docs))
		for _, d := range docs {
			out = append(out, listedDocument{
				ID:         d.ID,
				Text:       d.Text,
				Dimensions: len(d.Embedding),
				Metadata:   d.Metadata,
				CreatedAt:  d.CreatedAt,
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprint(cmd.OutOrStdout(), vectordb.FormatDocuments(docs))
	return nil
}
