package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultPushEndpoint is the LINE Messaging API push endpoint.
const DefaultPushEndpoint = "https://api.line.me/v2/bot/message/push"

// PushMessenger sends text through a push-message HTTP API authenticated
// with a bearer channel token.
type PushMessenger struct {
	Endpoint string
	Token    string
	Client   *http.Client
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []pushMessage `json:"messages"`
}

type pushMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendText implements Messenger.
func (m *PushMessenger) SendText(ctx context.Context, to, text string) error {
	endpoint := m.Endpoint
	if endpoint == "" {
		endpoint = DefaultPushEndpoint
	}
	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(pushRequest{To: to, Messages: []pushMessage{{Type: "text", Text: text}}})
	if err != nil {
		return fmt.Errorf("encode push: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.Token)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("push message: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode}
	}
	return nil
}
