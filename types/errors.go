package types

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks fatal setup problems: embedding backend or
// dimension mismatch, missing credentials for a selected backend. Raised at
// construction or first use, never retried automatically.
var ErrConfiguration = errors.New("configuration error")

// ErrRetrieval marks an unavailable vector index. Surfaced to the caller,
// which owns the retry policy.
var ErrRetrieval = errors.New("retrieval error")

// ErrGenerationBackend marks a failed generative backend call. Callers of
// the message generator never see it; the generator converts it to the
// fallback message path.
var ErrGenerationBackend = errors.New("generation backend error")

// ConfigurationErrorf wraps ErrConfiguration with detail.
func ConfigurationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// RetrievalErrorf wraps ErrRetrieval with detail.
func RetrievalErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRetrieval, fmt.Sprintf(format, args...))
}

// GenerationBackendErrorf wraps ErrGenerationBackend with detail.
func GenerationBackendErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrGenerationBackend, fmt.Sprintf(format, args...))
}
