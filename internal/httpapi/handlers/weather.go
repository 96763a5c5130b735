package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrimitra/agri-assist/internal/common"
	"github.com/agrimitra/agri-assist/internal/weather"
)

// GetWeather proxies the weather upstream. An unreachable upstream degrades
// to a zero-value report instead of an error; the screen renders either way.
func (h *Handler) GetWeather(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		common.Fail(c, http.StatusBadRequest, 10010, "location required")
		return
	}

	report, err := h.Weather.Get(c.Request.Context(), location)
	if err != nil {
		log.Printf("[weather] lookup failed for %q: %v", location, err)
		common.Ok(c, weather.Fallback(location))
		return
	}
	common.Ok(c, report)
}
