package chat

import (
	"time"

	"github.com/agrimitra/agri-assist/internal/attach"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one immutable turn of the live transcript.
//
// LocalID is client-generated (UUID) and only identifies the turn inside one
// session; it is a different identifier space from the store-assigned ULID a
// persisted turn gets, and the two are never reconciled. Turns loaded from the
// store carry their store id as LocalID so list keys stay stable across
// reloads.
type Message struct {
	LocalID    string         `json:"id"`
	Role       Role           `json:"role"`
	Text       string         `json:"text"`
	Attachment *attach.Inline `json:"attachment,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	IsError    bool           `json:"is_error,omitempty"`
}
