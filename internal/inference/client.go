package inference

import (
	"context"

	"github.com/agrimitra/agri-assist/internal/attach"
)

// Request is one generation call. Language is the conversation display
// language ("en", "hi", "kn", "te"); the backend is asked to answer in it.
type Request struct {
	Prompt   string
	Image    *attach.Inline
	Language string
}

// Client produces a generated answer for a prompt. Every failure mode
// (timeout, transport, backend status) surfaces as a single error; callers
// do not distinguish between them.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}
