package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrimitra/agri-assist/internal/chat"
	"github.com/agrimitra/agri-assist/internal/config"
	"github.com/agrimitra/agri-assist/internal/httpapi/middleware"
	"github.com/agrimitra/agri-assist/internal/weather"
)

type Handler struct {
	DB       *gorm.DB
	Cfg      config.Config
	Sessions *chat.Manager
	Review   *chat.Review
	Weather  *weather.Client
}

func NewHandler(db *gorm.DB, cfg config.Config, sessions *chat.Manager, review *chat.Review, wc *weather.Client) *Handler {
	return &Handler{
		DB:       db,
		Cfg:      cfg,
		Sessions: sessions,
		Review:   review,
		Weather:  wc,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
