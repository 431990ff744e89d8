package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opbridge/opbridge/internal/adapter/otel"
	"github.com/opbridge/opbridge/internal/adapter/ws"
	"github.com/opbridge/opbridge/internal/domain/workpackage"
	"github.com/opbridge/opbridge/internal/port/broadcast"
	"github.com/opbridge/opbridge/internal/port/tracker"
)

// VCSWebhookService relays GitHub webhook events into tracker comments and
// status changes. A work-package reference ([op-N] or op/N) in the branch
// name or title links the VCS activity to its tracker record; events without
// a reference are acknowledged and dropped.
type VCSWebhookService struct {
	tracker tracker.Tracker
	hub     broadcast.Broadcaster
	metrics *otel.Metrics
}

// NewVCSWebhookService creates the GitHub event router. hub and metrics may
// be nil.
func NewVCSWebhookService(t tracker.Tracker, hub broadcast.Broadcaster, metrics *otel.Metrics) *VCSWebhookService {
	return &VCSWebhookService{tracker: t, hub: hub, metrics: metrics}
}

// HandleEvent dispatches one delivery by its X-GitHub-Event type. The only
// error it returns is a payload parse failure; everything else is handled
// internally so the webhook endpoint can acknowledge GitHub.
func (s *VCSWebhookService) HandleEvent(ctx context.Context, eventType, deliveryID string, payload []byte) error {
	ctx, span := otel.StartWebhookSpan(ctx, "github", eventType, deliveryID)
	defer span.End()

	if s.metrics != nil {
		s.metrics.WebhooksReceived.Add(ctx, 1)
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventWebhookReceived, ws.WebhookReceivedEvent{
			Source:     "github",
			EventType:  eventType,
			DeliveryID: deliveryID,
		})
	}

	switch eventType {
	case "create":
		return s.handleCreate(ctx, payload)
	case "push":
		return s.handlePush(ctx, payload)
	case "pull_request":
		return s.handlePullRequest(ctx, payload)
	case "issue_comment":
		return s.handleIssueComment(ctx, payload)
	default:
		slog.Debug("ignoring github event", "event", eventType, "delivery_id", deliveryID)
		return nil
	}
}

func (s *VCSWebhookService) handleCreate(ctx context.Context, payload []byte) error {
	var raw struct {
		Ref     string `json:"ref"`
		RefType string `json:"ref_type"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return fmt.Errorf("parse github create: %w", err)
	}

	if raw.RefType != "branch" {
		return nil
	}
	id, ok := workpackage.ParseRef(raw.Ref)
	if !ok {
		slog.Debug("branch without work-package reference", "ref", raw.Ref)
		return nil
	}

	s.postComment(ctx, id, fmt.Sprintf("Branch `%s` created", raw.Ref))
	return nil
}

func (s *VCSWebhookService) handlePush(ctx context.Context, payload []byte) error {
	var raw struct {
		Ref     string `json:"ref"`
		Commits []struct {
			ID      string `json:"id"`
			Message string `json:"message"`
		} `json:"commits"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return fmt.Errorf("parse github push: %w", err)
	}

	branch := strings.TrimPrefix(raw.Ref, "refs/heads/")
	id, ok := workpackage.ParseRef(branch)
	if !ok {
		slog.Debug("push without work-package reference", "ref", raw.Ref)
		return nil
	}

	for _, c := range raw.Commits {
		hash := c.ID
		if len(hash) > 7 {
			hash = hash[:7]
		}
		s.postComment(ctx, id, fmt.Sprintf("`%s` %s", hash, firstLine(c.Message)))
	}

	slog.Info("push relayed", "work_package", id, "branch", branch, "commits", len(raw.Commits))
	return nil
}

func (s *VCSWebhookService) handlePullRequest(ctx context.Context, payload []byte) error {
	var raw struct {
		Action      string `json:"action"`
		PullRequest struct {
			Number int    `json:"number"`
			Title  string `json:"title"`
			Merged bool   `json:"merged"`
			Head   struct {
				Ref string `json:"ref"`
			} `json:"head"`
		} `json:"pull_request"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return fmt.Errorf("parse github pull_request: %w", err)
	}

	pr := raw.PullRequest
	id, ok := workpackage.ParseRef(pr.Head.Ref)
	if !ok {
		id, ok = workpackage.ParseRef(pr.Title)
	}
	if !ok {
		slog.Debug("pull request without work-package reference", "pr", pr.Number, "action", raw.Action)
		return nil
	}

	switch {
	case raw.Action == "closed" && pr.Merged:
		s.postComment(ctx, id, fmt.Sprintf("PR #%d `%s` merged", pr.Number, pr.Title))
		if err := s.tracker.MarkDeveloped(ctx, id); err != nil {
			slog.Error("mark developed failed", "work_package", id, "error", err)
		}
	case raw.Action == "opened", raw.Action == "reopened", raw.Action == "ready_for_review":
		s.postComment(ctx, id, fmt.Sprintf("PR #%d `%s` %s", pr.Number, pr.Title, raw.Action))
	}
	return nil
}

func (s *VCSWebhookService) handleIssueComment(ctx context.Context, payload []byte) error {
	var raw struct {
		Action string `json:"action"`
		Issue  struct {
			Title       string `json:"title"`
			PullRequest *struct {
				URL string `json:"url"`
			} `json:"pull_request"`
		} `json:"issue"`
		Comment struct {
			Body string `json:"body"`
			User struct {
				Login string `json:"login"`
			} `json:"user"`
		} `json:"comment"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return fmt.Errorf("parse github issue_comment: %w", err)
	}

	// Only comments on pull requests are relayed; plain issues carry no
	// pull_request key (or an explicit null).
	if raw.Action != "created" || raw.Issue.PullRequest == nil {
		return nil
	}
	id, ok := workpackage.ParseRef(raw.Issue.Title)
	if !ok {
		return nil
	}

	s.postComment(ctx, id, fmt.Sprintf("%s commented: %s", raw.Comment.User.Login, firstLine(raw.Comment.Body)))
	return nil
}

func (s *VCSWebhookService) postComment(ctx context.Context, id, text string) {
	if err := s.tracker.PostComment(ctx, id, text); err != nil {
		return
	}
	if s.metrics != nil {
		s.metrics.CommentsPosted.Add(ctx, 1)
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventCommentPosted, ws.CommentPostedEvent{
			WorkPackageID: id,
			Text:          text,
		})
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimRight(s[:i], "\r")
	}
	return s
}
