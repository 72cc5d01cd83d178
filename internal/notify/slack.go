package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackSink posts events to an incoming-webhook URL.
type SlackSink struct {
	webhookURL string
	channel    string
	client     *http.Client
}

func NewSlackSink(webhookURL, channel string) *SlackSink {
	return &SlackSink{
		webhookURL: webhookURL,
		channel:    channel,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *SlackSink) Publish(ctx context.Context, event Event) error {
	payload := map[string]any{
		"channel": s.channel,
		"text":    fmt.Sprintf("[%s] %s", event.Type, event.Message),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}
