package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opbridge/opbridge/internal/config"
	"github.com/opbridge/opbridge/internal/middleware"
)

// MountRoutes registers the relay's routes. The GitHub webhook is a POST
// catch-all so existing hook configurations keep working regardless of the
// path they were registered with; /op-update is carved out for OpenProject.
func MountRoutes(r chi.Router, h *Handlers, handleWS http.HandlerFunc, webhookCfg config.Webhook) {
	r.Get("/health", h.Health)
	r.Get("/ws", handleWS)

	r.Get("/getTodaySummary", h.TodaySummary)
	r.Get("/getTodaySummaryView", h.TodaySummaryView)
	r.Get("/getRoadmaps", h.Roadmaps)
	r.Get("/users", h.Users)
	r.Get("/triggerNow", h.TriggerNow)
	r.Get("/triggerDueUsers", h.TriggerDueUsers)

	r.Post("/op-update", h.OPWebhook)
	r.With(middleware.GitHubSignature(webhookCfg.Secret, webhookCfg.VerifySignatures)).
		Post("/*", h.GitHubWebhook)
}
