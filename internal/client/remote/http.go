package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/notiapp/notiapp/internal/common"
)

// HTTPClient implements Client over plain HTTP/JSON. The transport it is
// constructed with is expected to be the network mediator, so every request
// goes through the interception and caching rules.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPClient returns a client for the API at baseURL. A nil transport
// falls back to http.DefaultTransport.
func NewHTTPClient(baseURL string, transport http.RoundTripper) *HTTPClient {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Transport: transport, Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) SaveNote(ctx context.Context, clientID, text string) (*SaveResult, error) {
	body := map[string]any{"clientId": clientID, "text": text}
	var result SaveResult
	if err := c.postJSON(ctx, "/api/data/save", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) SyncNotes(ctx context.Context, items []SyncItem) (*SyncResult, error) {
	body := map[string]any{"items": items}
	var result SyncResult
	if err := c.postJSON(ctx, "/api/data/sync", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Subscribe(ctx context.Context, sub WebSubscription, user UserData) error {
	body := map[string]any{"subscription": sub, "userData": user}
	return c.postJSON(ctx, "/api/push/subscribe", body, nil)
}

func (c *HTTPClient) Unsubscribe(ctx context.Context, endpoint string) error {
	body := map[string]any{"endpoint": endpoint}
	return c.postJSON(ctx, "/api/push/unsubscribe", body, nil)
}

func (c *HTTPClient) SendNotification(ctx context.Context, endpoint string, n Notification) error {
	body := map[string]any{"endpoint": endpoint, "notification": n}
	err := c.postJSON(ctx, "/api/push/send", body, nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusGone {
			return common.ErrSubscriptionExpired
		}
	}
	return err
}

func (c *HTTPClient) VAPIDPublicKey(ctx context.Context) (string, error) {
	var result struct {
		PublicKey string `json:"publicKey"`
	}
	if err := c.getJSON(ctx, "/api/push/vapid-key", &result); err != nil {
		return "", err
	}
	return result.PublicKey, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.getJSON(ctx, "/api/health", nil)
}

// statusError carries the HTTP status of a non-2xx response. It wraps
// common.ErrRemoteFailure so callers can match the broad class with
// errors.Is and the exact status when they need it.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.code, e.body)
}

func (e *statusError) Unwrap() error { return common.ErrRemoteFailure }

func (c *HTTPClient) postJSON(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrOffline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(b))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
