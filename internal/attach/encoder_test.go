package attach

import (
	"errors"
	"strings"
	"testing"
)

// Magic headers are enough for content sniffing.
var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
)

func TestEncode_AcceptsPNG(t *testing.T) {
	enc := NewEncoder(0)

	inline, err := enc.Encode(pngHeader)
	if err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if inline.MIME != "image/png" {
		t.Fatalf("unexpected mime: %q", inline.MIME)
	}
}

func TestEncode_AcceptsJPEG(t *testing.T) {
	enc := NewEncoder(0)

	inline, err := enc.Encode(jpegHeader)
	if err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if inline.MIME != "image/jpeg" {
		t.Fatalf("unexpected mime: %q", inline.MIME)
	}
}

func TestEncode_RejectsNonImage(t *testing.T) {
	enc := NewEncoder(0)

	if _, err := enc.Encode([]byte("{\"role\":\"user\"}")); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	if _, err := enc.Encode(nil); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage for empty input, got %v", err)
	}
}

func TestEncode_RejectsOversized(t *testing.T) {
	enc := NewEncoder(16)

	raw := append(append([]byte{}, pngHeader...), make([]byte, 32)...)
	if _, err := enc.Encode(raw); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestDataURL(t *testing.T) {
	enc := NewEncoder(0)

	inline, err := enc.Encode(pngHeader)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	url := inline.DataURL()
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected data url prefix: %q", url)
	}
}
