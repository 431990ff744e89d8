package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/opbridge/opbridge/internal/config"
	"github.com/opbridge/opbridge/internal/domain/directory"
	"github.com/opbridge/opbridge/internal/logger"
	"github.com/opbridge/opbridge/internal/port/tracker"
	"github.com/opbridge/opbridge/internal/service"
)

// Handlers bundles the request handlers and the services they delegate to.
type Handlers struct {
	vcs       *service.VCSWebhookService
	pm        *service.PMWebhookService
	summary   *service.SummaryService
	reminders *service.ReminderService
	tracker   tracker.Tracker
	cfg       config.Config
}

// NewHandlers creates the handler set.
func NewHandlers(vcs *service.VCSWebhookService, pm *service.PMWebhookService, summary *service.SummaryService, reminders *service.ReminderService, t tracker.Tracker, cfg config.Config) *Handlers {
	return &Handlers{
		vcs:       vcs,
		pm:        pm,
		summary:   summary,
		reminders: reminders,
		tracker:   t,
		cfg:       cfg,
	}
}

// Health reports liveness and which collaborators are configured.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"openproject":       h.cfg.OpenProject.URL != "",
		"chat":              h.cfg.Chat.WebhookURL != "",
		"verify_signatures": h.cfg.Webhook.VerifySignatures,
	})
}

// GitHubWebhook accepts any signature-verified POST and routes it by the
// X-GitHub-Event header. GitHub only needs a 200; the relay answers "OK" for
// everything except payloads it cannot parse.
func (h *Handlers) GitHubWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	deliveryID := r.Header.Get("X-GitHub-Delivery")
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	ctx := logger.WithDeliveryID(r.Context(), deliveryID)

	if err := h.vcs.HandleEvent(ctx, eventType, deliveryID, payload); err != nil {
		slog.Warn("rejected github delivery", "event", eventType, "delivery_id", deliveryID, "error", err)
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}
	writeOK(w)
}

// OPWebhook accepts OpenProject's outbound webhook. No signature check; the
// endpoint is expected to be network-restricted.
func (h *Handlers) OPWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if err := h.pm.HandleEvent(r.Context(), payload); err != nil {
		slog.Warn("rejected openproject delivery", "error", err)
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}
	writeOK(w)
}

// TodaySummary returns the digest aggregate as JSON.
func (h *Handlers) TodaySummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.summary.Aggregate(r.Context()))
}

// TodaySummaryView renders the digest as HTML.
func (h *Handlers) TodaySummaryView(w http.ResponseWriter, r *http.Request) {
	agg := h.summary.Aggregate(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.summary.RenderHTML(w, agg); err != nil {
		slog.Error("render summary view", "error", err)
	}
}

// Roadmaps returns version completion summaries as JSON.
func (h *Handlers) Roadmaps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.summary.Roadmaps(r.Context()))
}

// Users returns the merged user directory.
func (h *Handlers) Users(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, directory.Merge(h.tracker.ListUsers(r.Context())))
}

// TriggerNow runs the daily summary immediately and returns the aggregate.
func (h *Handlers) TriggerNow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.summary.RunDaily(r.Context(), "manual"))
}

// TriggerDueUsers runs the due/overdue reminders immediately.
func (h *Handlers) TriggerDueUsers(w http.ResponseWriter, r *http.Request) {
	h.reminders.Run(r.Context(), "manual")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
