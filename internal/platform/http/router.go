package http

import (
	"encoding/json"
	stdhttp "net/http"

	"github.com/faeln1/go-guild-notifier/internal/app/controllers"
	"github.com/faeln1/go-guild-notifier/internal/platform/middleware"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// Version is reported by the root endpoint.
const Version = "0.1.0"

type RouterConfig struct {
	DiagnosticsCtrl *controllers.DiagnosticsController
	RouteCtrl       *controllers.RouteController
	Logger          waLog.Logger
	MasterToken     string
}

func NewRouter(cfg RouterConfig) stdhttp.Handler {
	mux := stdhttp.NewServeMux()
	auth := middleware.MasterToken(cfg.MasterToken)

	mux.HandleFunc("GET /{$}", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		writeJSON(w, stdhttp.StatusOK, map[string]any{
			"status":  "ok",
			"name":    "go-guild-notifier",
			"version": Version,
			"endpoints": map[string]string{
				"health":  "/health",
				"stats":   "/stats",
				"routes":  "/routes",
				"history": "/guilds/{guildID}/history",
			},
		})
	})

	mux.HandleFunc("GET /health", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		writeJSON(w, stdhttp.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.DiagnosticsCtrl != nil {
		mux.Handle("GET /stats", auth(stdhttp.HandlerFunc(cfg.DiagnosticsCtrl.Stats)))
		mux.Handle("GET /guilds/{guildID}/history", auth(stdhttp.HandlerFunc(cfg.DiagnosticsCtrl.History)))
	}
	if cfg.RouteCtrl != nil {
		mux.Handle("GET /routes", auth(stdhttp.HandlerFunc(cfg.RouteCtrl.List)))
		mux.Handle("GET /routes/{guildID}", auth(stdhttp.HandlerFunc(cfg.RouteCtrl.Find)))
		mux.Handle("PUT /routes/{guildID}", auth(stdhttp.HandlerFunc(cfg.RouteCtrl.Set)))
	}

	var handler stdhttp.Handler = mux
	if cfg.Logger != nil {
		handler = middleware.Logging(cfg.Logger)(handler)
	}
	return handler
}

func writeJSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
