// Package web serves the browser kiosk page and a small JSON API over the
// schedule engine: a 1-second-polled snapshot plus refresh/stop commands.
package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/smokyabdulrahman/adhan-clock/internal/engine"
)

// NewRouter creates and configures the gin router. Debug-only commands are
// only mounted when debug is set.
func NewRouter(e *engine.Engine, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	handler := NewHandler(e)

	// The page poller runs at 1 Hz; 10 rps with a small burst leaves
	// plenty of headroom without letting a stuck client spin.
	limiter := RateLimiter(rate.Limit(10), 20)

	pageCache := cache.New(5*time.Minute, 10*time.Minute)
	r.GET("/", Cache(pageCache, 5*time.Minute), handler.GetKiosk)

	api := r.Group("/api/v1")
	api.Use(limiter)
	{
		api.GET("/snapshot", handler.GetSnapshot)
		api.POST("/refresh", handler.PostRefresh)
		api.POST("/stop-alert", handler.PostStopAlert)

		if debug {
			api.POST("/debug/trigger-alert", handler.PostTriggerAlert)
			api.POST("/debug/simulate", handler.PostSimulate)
		}
	}

	return r
}
