package handlers

import (
	"net/http"
	"time"

	"planner-backend/infrastructure/config"
	"planner-backend/pkg/common"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	cfg       *config.Config
	startedAt time.Time
	version   string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(version string, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		cfg:       cfg,
		startedAt: time.Now(),
		version:   version,
	}
}

// Health handles GET /health. Alongside liveness it reports which
// optional adapters are configured, so a misconfigured deployment is
// visible without digging through logs.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"adapters": map[string]bool{
			"transcription": h.cfg.OpenAIAPIKey != "",
			"classifier":    h.cfg.GeminiAPIKey != "",
			"calendar":      h.cfg.GoogleRefreshToken != "",
			"sms":           h.cfg.TwilioAccountSID != "",
		},
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
