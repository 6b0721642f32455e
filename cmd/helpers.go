package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/ziadkadry99/localrag/internal/config"
	"github.com/ziadkadry99/localrag/internal/embeddings"
	"github.com/ziadkadry99/localrag/internal/llm"
	"github.com/ziadkadry99/localrag/internal/logging"
	"github.com/ziadkadry99/localrag/internal/progress"
	"github.com/ziadkadry99/localrag/internal/vectordb"
)

// localCredential identifies the store of providers that need no API key.
const localCredential = "local"

// newReporter builds the progress reporter for batch commands.
var newReporter = progress.NewReporter

// newChatProvider builds the chat model used by ask and the MCP server.
var newChatProvider = llm.New

// session bundles what a command needs to talk to the store.
type session struct {
	cfg        *config.Config
	logger     *zap.Logger
	registry   *vectordb.Registry
	store      *vectordb.VectorStore
	credential string
}

// Close releases the store and its backend.
func (s *session) Close() {
	if err := s.registry.Close(); err != nil {
		s.logger.Warn("closing vector store", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `localrag init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logging.New(level, cfg.Log.Format)
}

// openSession loads the config, resolves the credential and returns the
// initialized store for it.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	credential, err := resolveCredential(cfg)
	if err != nil {
		return nil, err
	}

	backend, err := openBackend(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := cfg.EmbeddingOptions()
	registry := vectordb.NewRegistry(backend, func(ctx context.Context, credential string) (embeddings.Embedder, error) {
		return embeddings.New(ctx, opts, credential)
	}, logger)

	store, err := registry.GetInstance(ctx, credential)
	if err != nil {
		_ = registry.Close()
		return nil, err
	}

	logger.Debug("store ready",
		zap.String("provider", string(cfg.Provider)),
		zap.String("backend", cfg.Storage.Backend),
		zap.String("namespace", store.Namespace()),
		zap.Int("documents", store.Count()),
	)

	return &session{cfg: cfg, logger: logger, registry: registry, store: store, credential: credential}, nil
}

// openBackend creates the storage directory and opens the configured backend.
func openBackend(cfg *config.Config, logger *zap.Logger) (vectordb.Backend, error) {
	if err := os.MkdirAll(cfg.Storage.Path, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	path := cfg.StoragePath()
	switch cfg.Storage.Backend {
	case config.BackendBadger:
		b, err := vectordb.OpenBadgerBackend(path, logger)
		if err != nil {
			return nil, fmt.Errorf("opening badger store at %s: %w", path, err)
		}
		return b, nil
	default:
		b, err := vectordb.OpenSQLiteBackend(path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store at %s: %w", path, err)
		}
		return b, nil
	}
}

// resolveCredential returns the API key from --api-key, the provider's
// environment variable, LOCALRAG_API_KEY, or an interactive prompt, in that
// order. Providers without authentication use a fixed local credential.
func resolveCredential(cfg *config.Config) (string, error) {
	if !embeddings.RequiresCredential(string(cfg.Provider)) {
		return localCredential, nil
	}
	if key := strings.TrimSpace(apiKey); key != "" {
		return key, nil
	}
	for _, name := range []string{config.APIKeyEnvVar(cfg.Provider), config.APIKeyEnv} {
		if name == "" {
			continue
		}
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key, nil
		}
	}

	prompt := promptui.Prompt{
		Label: fmt.Sprintf("%s API key", cfg.Provider),
		Mask:  '*',
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("API key is required")
			}
			return nil
		},
	}
	key, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("no API key: pass --api-key or set %s: %w", config.APIKeyEnvVar(cfg.Provider), err)
	}
	return strings.TrimSpace(key), nil
}

// chat builds the chat provider for the session's credential.
func (s *session) chat(ctx context.Context) (llm.Provider, error) {
	return newChatProvider(ctx, s.cfg.ChatOptions(), s.credential)
}

// confirm asks a yes/no question on the terminal.
func confirm(label string) bool {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err == nil
}
