package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/localrag/internal/config"
	"github.com/ziadkadry99/localrag/internal/vectordb"
)

var (
	cfgFile string
	apiKey  string
	timeout time.Duration
	quiet   bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "localrag",
	Short: "Local semantic document store backed by embedding APIs",
	Long: `localrag embeds text documents through an embedding provider, keeps them
in a local database, and finds the stored documents most similar to a
query. It can answer questions from the best matches with the provider's chat
model, and serve the store to AI agents as MCP tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and prints any error with a hint for the
// failures a user can fix.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "embedding provider API key (defaults to the provider's environment variable)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "abort the command after this long (0 = no limit)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging (overrides log.level)")
}

// commandContext returns the command's context bounded by --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, vectordb.ErrAuthentication):
		return "The API key was rejected. Rerun with a valid key via --api-key or the provider's environment variable."
	case errors.Is(err, vectordb.ErrTransient):
		return "The provider is temporarily unavailable. Try again later."
	case errors.Is(err, context.DeadlineExceeded):
		return "The command timed out. Increase --timeout or set it to 0."
	default:
		return ""
	}
}
