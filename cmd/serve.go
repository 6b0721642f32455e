package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpserver "github.com/ziadkadry99/localrag/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing the document store as add, search, list and clear tools.
When the provider has a chat model, an ask tool answers questions from the stored documents.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The timeout bounds startup only; the server runs until stdin closes.
		ctx, cancel := commandContext(cmd)
		s, err := openSession(ctx)
		if err != nil {
			cancel()
			return err
		}
		defer s.Close()

		var opts []mcpserver.Option
		chat, err := s.chat(ctx)
		cancel()
		if err != nil {
			s.logger.Warn("ask_documents disabled", zap.Error(err))
		} else {
			opts = append(opts, mcpserver.WithChat(chat))
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "localrag MCP server started on stdio (provider=%s, documents=%d)\n", s.cfg.Provider, s.store.Count())

		srv := mcpserver.NewServer(s.store, s.cfg.TopK, s.logger, opts...)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
