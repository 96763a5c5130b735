package speech

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable signals the speech capability is not configured. Callers
	// treat it as a passive notice, not a fault.
	ErrUnavailable = errors.New("speech: transcription is not available")
	// ErrListening rejects a second concurrent transcription session.
	ErrListening = errors.New("speech: already listening")
)

// Recognizer wraps a streaming speech-to-text capability. One transcription
// session at a time: Start transitions idle to listening, Stop (or natural end
// of utterance, reported through onEnd) transitions back.
type Recognizer interface {
	// Start begins a transcription session. onFragment receives finalised
	// text fragments; onEnd fires exactly once when the session ends, whether
	// by Stop, upstream close, or error.
	Start(ctx context.Context, language string, onFragment func(text string), onEnd func()) error
	// Feed forwards a chunk of captured audio to the session.
	Feed(chunk []byte) error
	Stop() error
}

// Disabled is the recognizer used when no speech backend is configured.
type Disabled struct{}

func (Disabled) Start(context.Context, string, func(string), func()) error { return ErrUnavailable }
func (Disabled) Feed([]byte) error                                         { return ErrUnavailable }
func (Disabled) Stop() error                                               { return nil }
