package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agrimitra/agri-assist/internal/attach"
	"github.com/agrimitra/agri-assist/internal/chat"
	"github.com/agrimitra/agri-assist/internal/common"
	"github.com/agrimitra/agri-assist/internal/speech"
)

type sessionView struct {
	Transcript []chat.Message `json:"transcript"`
	Busy       bool           `json:"busy"`
	Listening  bool           `json:"listening"`
	Language   chat.Language  `json:"language"`
}

func viewOf(sess *chat.Session) sessionView {
	return sessionView{
		Transcript: sess.Transcript(),
		Busy:       sess.Busy(),
		Listening:  sess.Listening(),
		Language:   sess.Language(),
	}
}

type openSessionReq struct {
	Language string `json:"language"`
}

// OpenSession creates the per-user conversation session, replacing any
// previous one, and returns the seeded transcript.
func (h *Handler) OpenSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req openSessionReq
	_ = c.ShouldBindJSON(&req) // allow empty {}

	lang := chat.ParseLanguage(req.Language)
	sess := h.Sessions.Open(c.Request.Context(), uid, lang)
	common.Ok(c, viewOf(sess))
}

func (h *Handler) session(c *gin.Context) (*chat.Session, bool) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return nil, false
	}
	sess, ok := h.Sessions.Get(uid)
	if !ok {
		common.Fail(c, http.StatusNotFound, 40005, "no open session")
		return nil, false
	}
	return sess, true
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	common.Ok(c, viewOf(sess))
}

type sendMessageReq struct {
	Text string `json:"text"`
}

// SendMessage replaces the compose buffer and runs the send pipeline. The
// call returns as soon as the user turn is on the transcript; callers poll
// GetSession for the model turn.
func (h *Handler) SendMessage(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	sess.SetCompose(req.Text)
	accepted := sess.Send()
	c.JSON(http.StatusAccepted, gin.H{
		"code":    0,
		"message": "ok",
		"data":    gin.H{"accepted": accepted, "transcript": sess.Transcript()},
	})
}

type attachReq struct {
	// Base64-encoded raw image bytes, optionally a data URL.
	Data string `json:"data" binding:"required"`
}

func (h *Handler) AttachImage(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req attachReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	payload := req.Data
	if idx := strings.Index(payload, ";base64,"); idx >= 0 {
		payload = payload[idx+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid base64 payload")
		return
	}

	if err := sess.AttachImage(raw); err != nil {
		switch {
		case errors.Is(err, attach.ErrTooLarge):
			common.Fail(c, http.StatusRequestEntityTooLarge, 10006, "image too large")
		case errors.Is(err, attach.ErrNotImage):
			common.Fail(c, http.StatusBadRequest, 10005, "not an image")
		default:
			common.Fail(c, http.StatusBadRequest, 10005, "not an image")
		}
		return
	}
	common.Ok(c, nil)
}

func (h *Handler) ClearAttachment(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.ClearAttachment()
	common.Ok(c, nil)
}

// StartVoice begins transcription. A missing speech capability is a passive
// notice, not a server fault.
func (h *Handler) StartVoice(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	if err := sess.StartVoice(c.Request.Context()); err != nil {
		if errors.Is(err, speech.ErrUnavailable) {
			common.Ok(c, gin.H{"listening": false, "notice": "voice input is not supported"})
			return
		}
		common.Fail(c, http.StatusBadGateway, 50201, "failed to start transcription")
		return
	}
	common.Ok(c, gin.H{"listening": true})
}

func (h *Handler) FeedVoice(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	chunk, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil || len(chunk) == 0 {
		common.Fail(c, http.StatusBadRequest, 10007, "empty audio chunk")
		return
	}

	if err := sess.FeedVoice(chunk); err != nil {
		common.Fail(c, http.StatusConflict, 10008, "no active transcription")
		return
	}
	common.Ok(c, nil)
}

func (h *Handler) StopVoice(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.StopVoice()
	common.Ok(c, gin.H{"listening": false})
}

func (h *Handler) CloseSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	h.Sessions.Close(uid)
	common.Ok(c, nil)
}
