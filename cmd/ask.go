package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/localrag/internal/llm"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the stored documents",
	Long: `Finds the stored documents most similar to the question and asks the
provider's chat model to answer using them as context. The chat model uses the
same provider and API key as embeddings; set chat_model in the config to pick one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntP("top-k", "k", 0, "number of documents used as context (default from config)")
	askCmd.Flags().Bool("json", false, "output the answer and its sources as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
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

	chat, err := s.chat(ctx)
	if err != nil {
		return fmt.Errorf("creating chat provider: %w", err)
	}

	answer, err := llm.Ask(ctx, s.store, chat, question, topK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	s.logger.Debug("answered",
		zap.String("model", answer.Model),
		zap.Int("sources", len(answer.Sources)),
	)

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Text)
	if len(answer.Sources) == 0 {
		fmt.Fprintln(out, "\n(No stored documents matched; the answer is not based on your documents.)")
		return nil
	}
	fmt.Fprintf(out, "\nSources:\n")
	for i, r := range answer.Sources {
		fmt.Fprintf(out, "  %d. [%.1f%%] %s  %s\n", i+1, r.Score*100, r.ID, truncate(r.Text, 80))
	}
	return nil
}

func truncate(s string, max int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max]) + "..."
}
