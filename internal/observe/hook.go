package observe

import (
	"context"
	"log"
)

// Hook captures failures of detached history writes. The live chat never
// blocks on persistence, so a failed append surfaces here instead of to the
// user.
type Hook interface {
	AppendFailed(ctx context.Context, userID uint64, role, text string, cause error)
}

// LogHook is the fallback when no queue is configured: the failure is logged
// and the turn is lost.
type LogHook struct{}

func (LogHook) AppendFailed(_ context.Context, userID uint64, role, text string, cause error) {
	log.Printf("[observe] history append dropped user=%d role=%s len=%d: %v",
		userID, role, len(text), cause)
}
