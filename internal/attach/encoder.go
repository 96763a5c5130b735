package attach

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotImage = errors.New("attach: payload is not an image")
	ErrTooLarge = errors.New("attach: payload exceeds size limit")
)

// DefaultMaxBytes caps a raw upload before encoding.
const DefaultMaxBytes = 4 << 20

// Inline is a self-describing image payload. It is suitable both for
// transmission to the inference backend and for rendering as an image source.
type Inline struct {
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}

// DataURL renders the payload as a browser-displayable data URL.
func (i *Inline) DataURL() string {
	return "data:" + i.MIME + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

type Encoder struct {
	maxBytes int
}

func NewEncoder(maxBytes int) *Encoder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Encoder{maxBytes: maxBytes}
}

// Encode validates raw bytes as an image and wraps them as an inline payload.
// Non-image input and oversized input are rejected without side effects.
func (e *Encoder) Encode(raw []byte) (*Inline, error) {
	if len(raw) == 0 {
		return nil, ErrNotImage
	}
	if len(raw) > e.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(raw), e.maxBytes)
	}

	mt := mimetype.Detect(raw)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}

	return &Inline{MIME: mt.String(), Data: raw}, nil
}
