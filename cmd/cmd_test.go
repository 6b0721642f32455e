package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/localrag/internal/config"
	"github.com/ziadkadry99/localrag/internal/embeddings"
	"github.com/ziadkadry99/localrag/internal/llm"
	"github.com/ziadkadry99/localrag/internal/progress"
	"github.com/ziadkadry99/localrag/internal/vectordb"
)

// writeConfig writes a hash-provider config into a temp dir and returns its path.
func writeConfig(t *testing.T, backend string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Provider = config.ProviderHash
	cfg.Model = config.DefaultModel(config.ProviderHash)
	cfg.TopK = 2
	cfg.Storage.Backend = backend
	cfg.Storage.Path = filepath.Join(dir, "store")
	path := filepath.Join(dir, config.DefaultConfigFile)
	require.NoError(t, cfg.Save(path))
	return path
}

// run executes the CLI with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLIFlow(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			cfgPath := writeConfig(t, backend)

			out, err := run(t, "add", "--config", cfgPath, "-q", "--batch=false", "--metadata", `{"source":"cli"}`, "the quick brown fox")
			require.NoError(t, err)
			firstID := strings.TrimSpace(out)
			assert.NotEmpty(t, firstID)

			out, err = run(t, "add", "--config", cfgPath, "-q", "--batch", "--metadata", "", "lazy dogs sleep XXXX  XXXX birds sing at dawn")
			require.NoError(t, err)
			assert.Len(t, strings.Fields(out), 2)

			out, err = run(t, "search", "--config", cfgPath, "--json", "--top-k", "1", "the quick brown fox")
			require.NoError(t, err)
			var results []vectordb.SearchResult
			require.NoError(t, json.Unmarshal([]byte(out), &results))
			require.Len(t, results, 1)
			assert.Equal(t, firstID, results[0].ID)
			assert.InDelta(t, 1.0, results[0].Score, 1e-6)
			assert.JSONEq(t, `{"source":"cli"}`, string(results[0].Metadata))

			out, err = run(t, "list", "--config", cfgPath, "--json")
			require.NoError(t, err)
			var docs []listedDocument
			require.NoError(t, json.Unmarshal([]byte(out), &docs))
			require.Len(t, docs, 3)
			assert.Equal(t, []string{"the quick brown fox", "lazy dogs sleep", "birds sing at dawn"},
				[]string{docs[0].Text, docs[1].Text, docs[2].Text})

			out, err = run(t, "clear", "--config", cfgPath, "--yes")
			require.NoError(t, err)
			assert.Contains(t, out, "Deleted 3 document(s)")

			out, err = run(t, "list", "--config", cfgPath, "--json")
			require.NoError(t, err)
			assert.JSONEq(t, `[]`, out)
		})
	}
}

func TestIngest(t *testing.T) {
	cfgPath := writeConfig(t, config.BackendSQLite)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("# Notes\nembeddings are vectors"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "guide.txt"), []byte("how to search documents"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0644))

	out, err := run(t, "ingest", "--config", cfgPath, "-q", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 2 file(s)")

	out, err = run(t, "list", "--config", cfgPath, "--json")
	require.NoError(t, err)
	var docs []listedDocument
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 2)

	paths := map[string]bool{}
	for _, d := range docs {
		var meta fileMetadata
		require.NoError(t, json.Unmarshal(d.Metadata, &meta))
		assert.Len(t, meta.SHA256, 64)
		assert.Positive(t, meta.Size)
		paths[meta.Path] = true
	}
	assert.Equal(t, map[string]bool{"notes.md": true, "docs/guide.txt": true}, paths)
}

func TestAddInput(t *testing.T) {
	file := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(file, []byte("from file"), 0644))

	text, err := addInput(addCmd, nil, file)
	require.NoError(t, err)
	assert.Equal(t, "from file", text)

	text, err = addInput(addCmd, []string{"from arg"}, "")
	require.NoError(t, err)
	assert.Equal(t, "from arg", text)

	addCmd.SetIn(strings.NewReader("from stdin"))
	t.Cleanup(func() { addCmd.SetIn(nil) })
	text, err = addInput(addCmd, nil, "-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", text)

	_, err = addInput(addCmd, []string{"x"}, file)
	assert.Error(t, err)
	_, err = addInput(addCmd, nil, "")
	assert.Error(t, err)
}

func TestParseMetadata(t *testing.T) {
	raw, err := parseMetadata("")
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = parseMetadata(` {"a":1} `)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))

	for _, bad := range []string{"[1,2]", "nope", `"str"`} {
		_, err := parseMetadata(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolveCredential(t *testing.T) {
	t.Cleanup(func() { apiKey = "" })

	cred, err := resolveCredential(&config.Config{Provider: config.ProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, localCredential, cred)

	openai := &config.Config{Provider: config.ProviderOpenAI}

	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv(config.APIKeyEnv, "sk-generic")
	cred, err = resolveCredential(openai)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cred)

	t.Setenv("OPENAI_API_KEY", "")
	cred, err = resolveCredential(openai)
	require.NoError(t, err)
	assert.Equal(t, "sk-generic", cred)

	apiKey = " sk-flag "
	cred, err = resolveCredential(openai)
	require.NoError(t, err)
	assert.Equal(t, "sk-flag", cred)
}

func TestErrorHint(t *testing.T) {
	authErr := fmt.Errorf("search failed: %w", &embeddings.ProviderError{
		Provider:   "openai",
		StatusCode: 401,
		Kind:       embeddings.ErrAuthentication,
		Err:        fmt.Errorf("unauthorized"),
	})
	assert.Contains(t, errorHint(authErr), "API key was rejected")
	assert.Contains(t, errorHint(fmt.Errorf("x: %w", context.DeadlineExceeded)), "--timeout")
	assert.Empty(t, errorHint(fmt.Errorf("plain")))
}

// recordingReporter keeps the progress calls it receives.
type recordingReporter struct {
	total   int
	updates []int
}

func (r *recordingReporter) Start(total int, _ string) { r.total = total }
func (r *recordingReporter) Update(current int, _ string) {
	r.updates = append(r.updates, current)
}
func (r *recordingReporter) Finish() {}

func TestIngest_ProgressCountsSkippedFiles(t *testing.T) {
	cfgPath := writeConfig(t, config.BackendSQLite)

	rec := &recordingReporter{}
	orig := newReporter
	newReporter = func(bool) progress.Reporter { return rec }
	t.Cleanup(func() { newReporter = orig })

	root := t.TempDir()
	// Latin-1 bytes: not binary, but not valid UTF-8 either.
	require.NoError(t, os.WriteFile(filepath.Join(root, "a-latin1.txt"), []byte{'c', 'a', 'f', 0xe9}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b-notes.md"), []byte("plain notes"), 0644))

	out, err := run(t, "ingest", "--config", cfgPath, "-q", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 1 file(s), skipped 1")

	assert.Equal(t, 2, rec.total)
	assert.Equal(t, []int{1, 2}, rec.updates)
}

// echoChat answers with the system prompt it was given.
type echoChat struct {
	credential string
}

func (e *echoChat) Name() string { return "echo" }

func (e *echoChat) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: req.Messages[0].Content, Model: "echo-1"}, nil
}

func TestAsk(t *testing.T) {
	cfgPath := writeConfig(t, config.BackendSQLite)

	_, err := run(t, "add", "--config", cfgPath, "-q", "--batch", "cats purr when happy XXXX stock prices fell")
	require.NoError(t, err)

	// The hash provider has no chat model.
	_, err = run(t, "ask", "--config", cfgPath, "why do cats purr?")
	require.ErrorIs(t, err, llm.ErrNoChatModel)

	chat := &echoChat{}
	orig := newChatProvider
	newChatProvider = func(_ context.Context, opts llm.Options, credential string) (llm.Provider, error) {
		assert.Equal(t, config.ProviderHash, config.ProviderType(opts.Provider))
		chat.credential = credential
		return chat, nil
	}
	t.Cleanup(func() { newChatProvider = orig })

	out, err := run(t, "ask", "--config", cfgPath, "--json", "-k", "1", "cats purr when happy")
	require.NoError(t, err)
	assert.Equal(t, localCredential, chat.credential)

	var answer llm.Answer
	require.NoError(t, json.Unmarshal([]byte(out), &answer))
	assert.Equal(t, "cats purr when happy", answer.Question)
	assert.Equal(t, "echo-1", answer.Model)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "cats purr when happy", answer.Sources[0].Text)
	assert.True(t, strings.HasSuffix(answer.Text, "Context from documents:\ncats purr when happy"), answer.Text)

	out, err = run(t, "ask", "--config", cfgPath, "--json=false", "-k", "2", "cats purr when happy")
	require.NoError(t, err)
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "stock prices fell")
}
