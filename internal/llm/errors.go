package llm

import (
	"errors"
	"fmt"

	"github.com/ziadkadry99/localrag/internal/embeddings"
)

// Failure kinds, shared with embeddings so one errors.Is check covers both.
var (
	ErrAuthentication = embeddings.ErrAuthentication
	ErrTransient      = embeddings.ErrTransient
	ErrInvalidInput   = embeddings.ErrInvalidInput

	// ErrNoChatModel means the configured provider cannot answer questions.
	ErrNoChatModel = errors.New("no chat model available")

	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("provider returned an empty answer")
)

// ProviderError is a failed chat call together with its classified kind.
type ProviderError struct {
	Provider   string
	StatusCode int
	Kind       error
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s chat request failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s chat request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

func newProviderError(provider string, err error) error {
	status := embeddings.HTTPStatus(err)
	return &ProviderError{
		Provider:   provider,
		StatusCode: status,
		Kind:       embeddings.Classify(status, err),
		Err:        err,
	}
}
