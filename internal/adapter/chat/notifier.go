// Package chat delivers notifications to an incoming-webhook chat endpoint.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/opbridge/opbridge/internal/port/notifier"
)

// chunkLimit is the largest message the chat service accepts in one post.
const chunkLimit = 1900

func init() {
	notifier.Register("chat", func(settings map[string]string) (notifier.Notifier, error) {
		return New(settings["name"], settings["webhook_url"]), nil
	})
}

// Notifier posts messages to a single incoming-webhook URL. Messages longer
// than chunkLimit are split into sequential posts; concatenating the chunks
// reproduces the original text exactly.
type Notifier struct {
	name       string
	webhookURL string
	httpClient *http.Client
}

// New creates a chat notifier. An empty webhookURL yields a notifier whose
// Send reports ErrNotConfigured.
func New(name, webhookURL string) *Notifier {
	if name == "" {
		name = "chat"
	}
	return &Notifier{
		name:       name,
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name identifies this notifier in logs and fan-out results.
func (n *Notifier) Name() string {
	return n.name
}

// Send posts the text, chunked if needed. Chunks are posted in order; the
// first failed chunk aborts the remainder.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if n.webhookURL == "" {
		return notifier.ErrNotConfigured
	}

	for _, chunk := range Split(text, chunkLimit) {
		if err := n.post(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) post(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post chat message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("chat webhook returned %d", resp.StatusCode)
	}
	return nil
}

// Split breaks text into pieces no longer than limit, preferring to cut
// after the last newline that fits. The newline stays with the leading
// chunk, so joining the pieces gives back the input byte for byte. A hard
// cut backs up to a rune boundary so no chunk ends mid-character.
func Split(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], '\n') + 1
		if cut == 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
