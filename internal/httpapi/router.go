package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrimitra/agri-assist/internal/chat"
	"github.com/agrimitra/agri-assist/internal/common"
	"github.com/agrimitra/agri-assist/internal/config"
	"github.com/agrimitra/agri-assist/internal/httpapi/handlers"
	"github.com/agrimitra/agri-assist/internal/httpapi/middleware"
	"github.com/agrimitra/agri-assist/internal/weather"
)

func NewRouter(db *gorm.DB, cfg config.Config, sessions *chat.Manager, review *chat.Review, wc *weather.Client) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, sessions, review, wc)

	r.GET("/ping", h.Ping)

	r.POST("/register", h.Register)
	r.POST("/login", h.Login)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))

	authGroup.GET("/me", h.Me)
	authGroup.PUT("/me", h.UpdateMe)

	// Conversation session (one per user, lives while the chat view is open)
	authGroup.POST("/assistant/session", h.OpenSession)
	authGroup.GET("/assistant/session", h.GetSession)
	authGroup.DELETE("/assistant/session", h.CloseSession)
	authGroup.POST("/assistant/message", h.SendMessage)
	authGroup.POST("/assistant/attachment", h.AttachImage)
	authGroup.DELETE("/assistant/attachment", h.ClearAttachment)
	authGroup.POST("/assistant/voice/start", h.StartVoice)
	authGroup.POST("/assistant/voice/audio", h.FeedVoice)
	authGroup.POST("/assistant/voice/stop", h.StopVoice)

	// History review (audit view over the persisted log)
	authGroup.GET("/history", h.History)
	authGroup.DELETE("/history", h.ClearHistory)

	// Rendering-context collaborators
	authGroup.GET("/weather", h.GetWeather)

	return r
}
