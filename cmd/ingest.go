package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/localrag/internal/walker"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Store every matching text file under a directory",
	Long: `Walks the directory (default: current directory), honouring .gitignore and
the include/exclude patterns from the config, and stores each text file as
one document. The file's path, SHA-256, size and format are kept as metadata.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringSlice("include", nil, "glob patterns to include (overrides config)")
	ingestCmd.Flags().StringSlice("exclude", nil, "extra glob patterns to exclude")
	ingestCmd.Flags().Int64("max-size", 0, "skip files larger than this many bytes (0 = 1 MB)")
	rootCmd.AddCommand(ingestCmd)
}

// fileMetadata is stored with every ingested document.
type fileMetadata struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
	Format string `json:"format"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	include, _ := cmd.Flags().GetStringSlice("include")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	maxSize, _ := cmd.Flags().GetInt64("max-size")

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(include) == 0 {
		include = s.cfg.Include
	}
	files, err := walker.Walk(ctx, walker.WalkerConfig{
		RootDir:     root,
		Include:     include,
		Exclude:     append(append([]string{}, s.cfg.Exclude...), exclude...),
		MaxFileSize: maxSize,
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", root, err)
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No matching files found.")
		return nil
	}

	reporter := newReporter(quiet)
	reporter.Start(len(files), "Ingesting")
	defer reporter.Finish()

	added, skipped := 0, 0
	for i, f := range files {
		text, err := walker.ReadText(f.Path)
		if err != nil {
			s.logger.Warn("skipping file", zap.String("path", f.RelPath), zap.Error(err))
			skipped++
			reporter.Update(i+1, "skipped "+f.RelPath)
			continue
		}
		metadata, err := json.Marshal(fileMetadata{
			Path:   f.RelPath,
			SHA256: f.ContentHash,
			Size:   f.Size,
			Format: f.Format,
		})
		if err != nil {
			return fmt.Errorf("encoding metadata for %s: %w", f.RelPath, err)
		}

		id, err := s.store.AddDocument(ctx, text, metadata)
		if err != nil {
			return fmt.Errorf("adding %s (%d of %d file(s) stored): %w", f.RelPath, added, len(files), err)
		}
		added++
		s.logger.Debug("ingested", zap.String("path", f.RelPath), zap.String("id", id))
		reporter.Update(i+1, f.RelPath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d file(s)", added)
	if skipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), ", skipped %d", skipped)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
