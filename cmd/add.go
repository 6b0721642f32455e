package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/localrag/internal/progress"
	"github.com/ziadkadry99/localrag/internal/vectordb"
)

var addCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Embed and store a document",
	Long: `Embeds the given text and stores it as a document. With --batch the text is
split on the delimiter XXXX and every non-empty segment becomes its own
document. Use --file to read the text from a file, or --file - for stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("metadata", "", "JSON object stored with the document(s)")
	addCmd.Flags().Bool("batch", false, "split the text on XXXX into several documents")
	addCmd.Flags().StringP("file", "f", "", "read the text from a file (- for stdin)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	metadataFlag, _ := cmd.Flags().GetString("metadata")
	batch, _ := cmd.Flags().GetBool("batch")
	file, _ := cmd.Flags().GetString("file")

	text, err := addInput(cmd, args, file)
	if err != nil {
		return err
	}
	metadata, err := parseMetadata(metadataFlag)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	if !batch {
		id, err := s.store.AddDocument(ctx, text, metadata)
		if err != nil {
			return fmt.Errorf("adding document: %w", err)
		}
		fmt.Fprintln(out, id)
		return nil
	}

	segments := vectordb.SplitBatch(text)
	reporter := newReporter(quiet)
	reporter.Start(len(segments), "Embedding")
	ids, err := s.store.AddDocuments(ctx, text, metadata, vectordb.WithProgress(progress.Func(reporter)))
	reporter.Finish()

	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	if err != nil {
		return fmt.Errorf("adding batch: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "The batch contained no documents.")
	}
	return nil
}

// addInput returns the document text from the argument or --file.
func addInput(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", errors.New("pass the text as an argument or with --file, not both")
	case file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", file, err)
		}
		return string(data), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", errors.New("no text given: pass it as an argument or with --file")
	}
}

// parseMetadata checks that the flag holds a JSON object.
func parseMetadata(s string) (json.RawMessage, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, fmt.Errorf("--metadata must be a JSON object: %w", err)
	}
	return json.RawMessage(s), nil
}
