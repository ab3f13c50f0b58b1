// Package webhook delivers assembled messages to a Feishu custom bot.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/page-digest/internal/types"
)

// DefaultTimeout bounds one delivery when the caller passes no client.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of a rejected response is kept.
const maxErrorBody = 512

// DeliveryError reports a webhook call the bot did not accept.
// StatusCode and Body are set for non-2xx responses; Code and Msg are set
// when the bot answered 2xx with an error result.
type DeliveryError struct {
	StatusCode int
	Body       string
	Code       int
	Msg        string
	Cause      error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feishu API error: %d %s", e.StatusCode, e.Body)
	}
	msg := e.Msg
	if msg == "" {
		msg = "unknown error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("feishu API returned error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("feishu API returned error: %s", msg)
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}

type botResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Deliver posts msg as JSON to the webhook url. A nil client uses one with
// DefaultTimeout.
func Deliver(ctx context.Context, client *http.Client, url string, msg types.OutboundMessage) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("webhook URL is not configured")
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &DeliveryError{Msg: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DeliveryError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &DeliveryError{Msg: "reading response failed", Cause: err}
	}

	var result botResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return &DeliveryError{Msg: "response is not JSON", Cause: err}
	}
	if result.Code != 0 {
		return &DeliveryError{Code: result.Code, Msg: result.Msg}
	}
	return nil
}
