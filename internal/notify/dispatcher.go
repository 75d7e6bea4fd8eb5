package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"matchoracle/internal/config"
	"matchoracle/internal/models"
	"matchoracle/internal/repository"
)

// Dispatcher drains the notification outbox to the configured webhook. When
// no webhook is configured, rows are marked delivered immediately so the
// outbox does not grow without bound; websocket subscribers got their copy at
// publish time.
type Dispatcher struct {
	Store  repository.Store
	Config config.NotifyConfig
	Logger *zap.Logger

	HTTP *http.Client
}

func (d *Dispatcher) httpClient() *http.Client {
	if d.HTTP != nil {
		return d.HTTP
	}
	timeout := d.Config.WebhookTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// DispatchPending delivers up to one batch of undelivered notifications,
// oldest first. A delivery failure leaves the row undelivered for the next
// run; later rows are still attempted.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	batch := d.Config.DispatchBatch
	if batch <= 0 {
		batch = 100
	}
	items, err := d.Store.ListUndeliveredNotifications(ctx, batch)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, item := range items {
		if err := d.deliver(ctx, item); err != nil {
			if d.Logger != nil {
				d.Logger.Warn("notification delivery failed",
					zap.String("id", item.ID),
					zap.String("event_type", item.EventType),
					zap.Error(err),
				)
			}
			continue
		}
		if err := d.Store.MarkNotificationDelivered(ctx, item.ID, time.Now().UTC()); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}

func (d *Dispatcher) deliver(ctx context.Context, item models.Notification) error {
	url := strings.TrimSpace(d.Config.WebhookURL)
	if url == "" {
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"id":         item.ID,
		"event_type": item.EventType,
		"match_id":   item.MatchID,
		"payload":    json.RawMessage(item.Payload),
		"created_at": item.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook http %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// PruneDelivered removes delivered rows older than the retention window.
func (d *Dispatcher) PruneDelivered(ctx context.Context) (int64, error) {
	retain := d.Config.RetainDelivered
	if retain <= 0 {
		retain = 24 * time.Hour
	}
	return d.Store.DeleteDeliveredNotificationsBefore(ctx, time.Now().UTC().Add(-retain))
}
