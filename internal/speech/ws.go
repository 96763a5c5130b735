package speech

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Config carries the websocket ASR backend settings.
type Config struct {
	URL         string
	AppID       string
	AccessToken string
}

// Enabled reports whether the required credentials are present.
func (c Config) Enabled() bool {
	return c.URL != "" && c.AppID != "" && c.AccessToken != ""
}

// WSRecognizer streams audio to a websocket ASR backend and emits finalised
// utterance fragments.
type WSRecognizer struct {
	cfg    Config
	dialer *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	active bool
}

func NewWSRecognizer(cfg Config) *WSRecognizer {
	return &WSRecognizer{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 30 * time.Second,
		},
	}
}

type asrStartFrame struct {
	Language string `json:"language"`
	Format   string `json:"format"`
}

type asrServerFrame struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  struct {
		Text     string `json:"text"`
		Definite bool   `json:"definite"`
	} `json:"result"`
	Done bool `json:"done"`
}

func (r *WSRecognizer) Start(ctx context.Context, language string, onFragment func(string), onEnd func()) error {
	if !r.cfg.Enabled() {
		return ErrUnavailable
	}

	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return ErrListening
	}

	header := http.Header{}
	header.Set("X-Api-App-Key", r.cfg.AppID)
	header.Set("X-Api-Access-Key", r.cfg.AccessToken)

	conn, _, err := r.dialer.DialContext(ctx, r.cfg.URL, header)
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("speech: dial asr backend: %w", err)
	}

	if err := conn.WriteJSON(asrStartFrame{Language: language, Format: "pcm"}); err != nil {
		_ = conn.Close()
		r.mu.Unlock()
		return fmt.Errorf("speech: send start frame: %w", err)
	}

	r.conn = conn
	r.active = true
	once := &sync.Once{}
	r.mu.Unlock()

	finish := func() {
		r.mu.Lock()
		if r.conn == conn {
			r.active = false
			r.conn = nil
		}
		r.mu.Unlock()
		once.Do(onEnd)
	}

	go func() {
		defer finish()
		for {
			var frame asrServerFrame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			if frame.Code != 0 {
				log.Printf("[speech] asr backend error code=%d message=%s", frame.Code, frame.Message)
				return
			}
			if frame.Result.Definite && frame.Result.Text != "" && onFragment != nil {
				onFragment(frame.Result.Text)
			}
			if frame.Done {
				return
			}
		}
	}()

	return nil
}

func (r *WSRecognizer) Feed(chunk []byte) error {
	r.mu.Lock()
	conn := r.conn
	active := r.active
	r.mu.Unlock()

	if !active || conn == nil {
		return ErrUnavailable
	}
	return conn.WriteMessage(websocket.BinaryMessage, chunk)
}

func (r *WSRecognizer) Stop() error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()

	if conn == nil {
		return nil
	}
	// Closing the connection unblocks the read loop, which fires onEnd.
	return conn.Close()
}

var _ Recognizer = (*WSRecognizer)(nil)
var _ Recognizer = Disabled{}
