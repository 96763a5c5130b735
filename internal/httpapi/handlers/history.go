package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agrimitra/agri-assist/internal/chat"
	"github.com/agrimitra/agri-assist/internal/common"
)

// History returns the persisted log regrouped into question/answer rows,
// newest question first.
func (h *Handler) History(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	rows, err := h.Review.Rows(c.Request.Context(), uid, limit)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to load history")
		return
	}
	common.Ok(c, rows)
}

// ClearHistory deletes the user's entire log. The destructive call requires
// confirm=true; a store failure is surfaced with its raw message.
func (h *Handler) ClearHistory(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	confirmed := c.Query("confirm") == "true"
	if err := h.Review.Clear(c.Request.Context(), uid, confirmed); err != nil {
		if errors.Is(err, chat.ErrNotConfirmed) {
			common.Fail(c, http.StatusBadRequest, 10009, "confirmation required")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to clear history: "+err.Error())
		return
	}
	common.Ok(c, nil)
}
