package chat

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agrimitra/agri-assist/internal/attach"
	"github.com/agrimitra/agri-assist/internal/history"
	"github.com/agrimitra/agri-assist/internal/inference"
	"github.com/agrimitra/agri-assist/internal/observe"
	"github.com/agrimitra/agri-assist/internal/speech"
)

const (
	defaultPageSize       = 20
	defaultPersistTimeout = 10 * time.Second
)

// Deps are the collaborators a session talks to. Store and Infer may be
// absent only in tests; production wiring always provides them.
//
// NewRecognizer is called once per session: a websocket recognizer holds a
// single connection, so sharing one instance would make concurrent users
// fight over it.
type Deps struct {
	Store         history.Store
	Infer         inference.Client
	NewRecognizer func() speech.Recognizer
	Hook          observe.Hook
	Encoder       *attach.Encoder

	PageSize       int
	PersistTimeout time.Duration
}

// Session owns one live conversation: the in-memory transcript, the compose
// buffer and the send pipeline. All mutations are serialised behind one mutex;
// asynchronous work (persistence, inference, transcription fragments) resolves
// into that same serialised state.
type Session struct {
	userID uint64
	lang   Language

	store   history.Store
	infer   inference.Client
	recog   speech.Recognizer
	hook    observe.Hook
	encoder *attach.Encoder

	pageSize       int
	persistTimeout time.Duration

	mu           sync.Mutex
	idle         *sync.Cond
	transcript   []Message
	composeText  string
	pendingImage *attach.Inline
	busy         bool
	listening    bool
	closed       bool

	persistWG sync.WaitGroup
}

func NewSession(userID uint64, lang Language, deps Deps) *Session {
	if deps.Hook == nil {
		deps.Hook = observe.LogHook{}
	}
	recog := speech.Recognizer(speech.Disabled{})
	if deps.NewRecognizer != nil {
		if r := deps.NewRecognizer(); r != nil {
			recog = r
		}
	}
	if deps.Encoder == nil {
		deps.Encoder = attach.NewEncoder(0)
	}
	if deps.PageSize <= 0 {
		deps.PageSize = defaultPageSize
	}
	if deps.PersistTimeout <= 0 {
		deps.PersistTimeout = defaultPersistTimeout
	}

	s := &Session{
		userID:         userID,
		lang:           lang,
		store:          deps.Store,
		infer:          deps.Infer,
		recog:          recog,
		hook:           deps.Hook,
		encoder:        deps.Encoder,
		pageSize:       deps.PageSize,
		persistTimeout: deps.PersistTimeout,
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Open seeds the transcript: one synthetic welcome turn, then the most recent
// persisted turns in chronological order. History is best-effort; if the store
// is unreachable the session starts with the welcome turn alone.
func (s *Session) Open(ctx context.Context) {
	welcome := Message{
		LocalID:   uuid.NewString(),
		Role:      RoleModel,
		Text:      Welcome(s.lang),
		Timestamp: time.Now().UTC(),
	}

	transcript := []Message{welcome}
	if s.store != nil {
		entries, err := s.store.Recent(ctx, s.userID, s.pageSize)
		if err != nil {
			log.Printf("[chat] load history failed for user=%d: %v", s.userID, err)
		} else {
			// Store order is newest-first; the transcript is chronological.
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				transcript = append(transcript, Message{
					LocalID:   e.ID,
					Role:      Role(e.Role),
					Text:      e.Text,
					Timestamp: e.CreatedAt,
				})
			}
		}
	}

	s.mu.Lock()
	s.transcript = transcript
	s.mu.Unlock()
}

// SetCompose replaces the pending text. No other side effects.
func (s *Session) SetCompose(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.composeText = text
}

// AttachImage validates raw bytes as an image and stores them as the single
// pending attachment, replacing any previous one. Invalid input leaves the
// pending attachment unchanged.
func (s *Session) AttachImage(raw []byte) error {
	inline, err := s.encoder.Encode(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.pendingImage = inline
	return nil
}

func (s *Session) ClearAttachment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingImage = nil
}

// StartVoice begins a transcription session. Starting while already listening
// is a no-op. speech.ErrUnavailable means the capability is missing and is
// surfaced as a passive notice by the caller.
func (s *Session) StartVoice(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.listening {
		s.mu.Unlock()
		return nil
	}
	// Claim the listening slot before dialing so a concurrent start is a
	// no-op rather than a second recognizer session.
	s.listening = true
	s.mu.Unlock()

	if err := s.recog.Start(ctx, string(s.lang), s.onFragment, s.onVoiceEnd); err != nil {
		s.mu.Lock()
		s.listening = false
		s.mu.Unlock()
		return err
	}
	return nil
}

// FeedVoice forwards captured audio to the active transcription session.
func (s *Session) FeedVoice(chunk []byte) error {
	s.mu.Lock()
	listening := s.listening
	s.mu.Unlock()
	if !listening {
		return speech.ErrUnavailable
	}
	return s.recog.Feed(chunk)
}

func (s *Session) StopVoice() {
	s.mu.Lock()
	if !s.listening {
		s.mu.Unlock()
		return
	}
	s.listening = false
	s.mu.Unlock()

	if err := s.recog.Stop(); err != nil {
		log.Printf("[chat] stop transcription for user=%d: %v", s.userID, err)
	}
}

// onFragment appends a finalised utterance to the compose buffer, separated
// from existing text by a single space.
func (s *Session) onFragment(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.composeText == "" {
		s.composeText = text
	} else {
		s.composeText += " " + text
	}
}

// onVoiceEnd covers natural end-of-utterance from the recognizer.
func (s *Session) onVoiceEnd() {
	s.mu.Lock()
	s.listening = false
	s.mu.Unlock()
}

// Send runs the send pipeline. It is a no-op (returns false) when the compose
// buffer is empty with no pending attachment, or while a previous send is
// still in flight. On acceptance it snapshots and clears the compose state,
// appends the user turn optimistically, kicks off detached persistence and the
// inference call, and returns immediately.
func (s *Session) Send() bool {
	s.mu.Lock()
	if s.closed || s.busy {
		s.mu.Unlock()
		return false
	}
	if strings.TrimSpace(s.composeText) == "" && s.pendingImage == nil {
		s.mu.Unlock()
		return false
	}

	text := s.composeText
	image := s.pendingImage
	s.composeText = ""
	s.pendingImage = nil

	s.transcript = append(s.transcript, Message{
		LocalID:    uuid.NewString(),
		Role:       RoleUser,
		Text:       text,
		Attachment: image,
		Timestamp:  time.Now().UTC(),
	})
	s.busy = true
	s.mu.Unlock()

	s.persist(RoleUser, text)
	go s.generate(text, image)
	return true
}

// generate runs the inference call and resolves the pending exchange. The
// call carries its own bounded timeout via the client; a session closed while
// the call was in flight discards the late result without mutating anything.
func (s *Session) generate(text string, image *attach.Inline) {
	reply, err := s.infer.Generate(context.Background(), inference.Request{
		Prompt:   text,
		Image:    image,
		Language: string(s.lang),
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	msg := Message{
		LocalID:   uuid.NewString(),
		Role:      RoleModel,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		log.Printf("[chat] inference failed for user=%d: %v", s.userID, err)
		msg.Text = Apology(s.lang)
		msg.IsError = true
	} else {
		msg.Text = reply
	}
	s.transcript = append(s.transcript, msg)
	s.busy = false
	s.idle.Broadcast()
	s.mu.Unlock()

	// Error turns are transient and never persisted.
	if err == nil {
		s.persist(RoleModel, reply)
	}
}

// persist records one turn in the history store on a detached goroutine.
// Failures go to the observability hook; they never surface into the chat.
func (s *Session) persist(role Role, text string) {
	if s.store == nil {
		return
	}
	s.persistWG.Add(1)
	go func() {
		defer s.persistWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
		defer cancel()
		if _, err := s.store.Append(ctx, s.userID, string(role), text); err != nil {
			// When the append itself timed out, ctx is already expired; the
			// failure report must not inherit that deadline.
			s.hook.AppendFailed(context.WithoutCancel(ctx), s.userID, string(role), text, err)
		}
	}()
}

// Transcript returns a copy of the current transcript.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

func (s *Session) Language() Language { return s.lang }

// Wait blocks until no inference call is in flight.
func (s *Session) Wait() {
	s.mu.Lock()
	for s.busy {
		s.idle.Wait()
	}
	s.mu.Unlock()
}

// Flush waits for detached history writes to settle. Used on shutdown.
func (s *Session) Flush() {
	s.persistWG.Wait()
}

// Close releases the transcription capability and marks the session dead. An
// in-flight inference call is not cancelled; its late result is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	wasListening := s.listening
	s.listening = false
	s.busy = false
	s.idle.Broadcast()
	s.mu.Unlock()

	if wasListening {
		if err := s.recog.Stop(); err != nil {
			log.Printf("[chat] stop transcription on close for user=%d: %v", s.userID, err)
		}
	}
}
