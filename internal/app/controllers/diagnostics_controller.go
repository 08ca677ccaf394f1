package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/faeln1/go-guild-notifier/internal/app/repositories"
	"github.com/faeln1/go-guild-notifier/internal/app/services"
	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

// GatewayStatus reports whether the gateway session is open.
type GatewayStatus interface {
	Connected() bool
}

// DiagnosticsController exposes reconciliation counters and the notification history.
type DiagnosticsController struct {
	engine  *services.ReconciliationEngine
	history repositories.DepartureHistoryRepository
	gateway GatewayStatus
}

func NewDiagnosticsController(engine *services.ReconciliationEngine, history repositories.DepartureHistoryRepository, gateway GatewayStatus) *DiagnosticsController {
	return &DiagnosticsController{engine: engine, history: history, gateway: gateway}
}

// Stats serves GET /stats.
func (c *DiagnosticsController) Stats(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"connected": c.gateway != nil && c.gateway.Connected(),
	}
	if c.engine != nil {
		payload["cache"] = c.engine.Registry().Stats()
		payload["engine"] = c.engine.Stats()
	}
	writeJSON(w, http.StatusOK, payload)
}

// History serves GET /guilds/{guildID}/history?limit=N.
func (c *DiagnosticsController) History(w http.ResponseWriter, r *http.Request) {
	guildID := strings.TrimSpace(r.PathValue("guildID"))
	if guildID == "" {
		writeError(w, http.StatusBadRequest, ErrInvalidParam)
		return
	}
	limit := repositories.DefaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, ErrInvalidParam)
			return
		}
		limit = n
	}
	if c.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"guildId": guildID, "records": []membership.Record{}})
		return
	}
	records, err := c.history.ListByGuild(r.Context(), membership.GuildID(guildID), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []membership.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"guildId": guildID, "records": records})
}
