package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strconv"
)

// Failure kinds reported by every provider. Use errors.Is to test for them.
var (
	ErrAuthentication = errors.New("provider credential rejected")
	ErrTransient      = errors.New("provider temporarily unavailable")
	ErrInvalidInput   = errors.New("invalid embedding input")
)

// ProviderError is a failed provider call together with its classified kind.
type ProviderError struct {
	Provider   string
	StatusCode int
	Kind       error // one of the Err* kinds above, or nil when unclassified
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s embedding request failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s embedding request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// kindForStatus maps an HTTP status code to a failure kind.
func kindForStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrAuthentication
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= 500:
		return ErrTransient
	case code == http.StatusBadRequest, code == http.StatusRequestEntityTooLarge, code == http.StatusUnprocessableEntity:
		return ErrInvalidInput
	default:
		return nil
	}
}

// newProviderError classifies err using the status code when one is known,
// falling back to network-level inspection.
func newProviderError(provider string, status int, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, StatusCode: status, Kind: Classify(status, err), Err: err}
}

// Classify returns the failure kind for a provider call that failed with err.
// status is the HTTP status when known, 0 otherwise.
func Classify(status int, err error) error {
	kind := kindForStatus(status)
	if kind == nil && status == 0 && isNetworkError(err) {
		kind = ErrTransient
	}
	return kind
}

// HTTPStatus extracts the HTTP status carried by go-openai and genai errors.
func HTTPStatus(err error) int {
	if code := openAIStatus(err); code != 0 {
		return code
	}
	return googleStatus(err)
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// chromem-go reports non-200 responses as plain errors carrying the status line.
var statusLinePattern = regexp.MustCompile(`error response from the embedding API: (\d{3})`)

func statusFromMessage(err error) int {
	m := statusLinePattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	code, _ := strconv.Atoi(m[1])
	return code
}
