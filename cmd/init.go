package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/localrag/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize localrag configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the embedding provider and storage backend and writes a .localrag.yml file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(cfgFile); err == nil && !force {
			if !confirm(fmt.Sprintf("%s exists. Overwrite", cfgFile)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config file without asking")
	rootCmd.AddCommand(initCmd)
}
