package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Check embedding provider credentials",
	Long: `Commands for the embedding provider credential.

The key is read from --api-key, then the provider's environment variable
(OPENAI_API_KEY, GOOGLE_API_KEY or LOCALRAG_API_KEY), then prompted for.
It is never written to the config file.`,
}

var authTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify that the provider accepts the API key",
	Long:  `Embeds a short probe string with the configured provider. Nothing is stored.`,
	Args:  cobra.NoArgs,
	RunE:  runAuthTest,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authTestCmd)
}

func runAuthTest(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	ok, err := s.store.TestCredential(ctx)
	if err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}
	if ok {
		fmt.Fprintf(cmd.OutOrStdout(), "%s credential OK (model %s, %d dimensions)\n", s.cfg.Provider, s.cfg.Model, s.store.Dimensions())
	}
	return nil
}
