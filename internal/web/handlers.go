package web

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smokyabdulrahman/adhan-clock/internal/engine"
)

// Handler serves the kiosk page and the snapshot/command API.
type Handler struct {
	engine *engine.Engine
	page   *template.Template
}

// NewHandler creates a Handler over the engine.
func NewHandler(e *engine.Engine) *Handler {
	return &Handler{
		engine: e,
		page:   template.Must(template.New("kiosk").Parse(kioskPage)),
	}
}

// GetSnapshot returns the engine's read-only state.
func (h *Handler) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

// PostRefresh starts a full schedule reload.
func (h *Handler) PostRefresh(c *gin.Context) {
	h.engine.Refresh()
	c.JSON(http.StatusAccepted, gin.H{"status": "refreshing"})
}

// PostStopAlert cancels the in-flight alert, if any.
func (h *Handler) PostStopAlert(c *gin.Context) {
	h.engine.StopAlert()
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// PostTriggerAlert (debug) fires the focused prayer's alert immediately.
func (h *Handler) PostTriggerAlert(c *gin.Context) {
	h.engine.TriggerAlertNow()
	c.JSON(http.StatusOK, gin.H{"status": "triggered"})
}

// PostSimulate (debug) runs the full reached-prayer path for the focused
// prayer, bypassing the at-most-once guard.
func (h *Handler) PostSimulate(c *gin.Context) {
	h.engine.SimulateFocusedPrayerReached()
	c.JSON(http.StatusOK, gin.H{"status": "simulated"})
}

// GetKiosk renders the clock page.
func (h *Handler) GetKiosk(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.page.Execute(c.Writer, nil); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
