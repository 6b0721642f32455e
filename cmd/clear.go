package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored document for the current credential",
	Long: `Deletes every document stored under the current credential, from disk and
from memory. Documents stored under other credentials are untouched.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	n := s.store.Count()
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "The store is already empty.")
		return nil
	}
	if !yes && !confirm(fmt.Sprintf("Delete %d document(s)", n)) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	if err := s.store.ClearAllDocuments(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d document(s).\n", n)
	return nil
}
