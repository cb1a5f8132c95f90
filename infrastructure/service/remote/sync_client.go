package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
)

// Error message prefixes. The sync engine and the logs rely on these to
// tell "never reached the server" apart from "server rejected the request".
const (
	networkErrPrefix = "network error"
	apiErrPrefix     = "sync api error"
)

// Client talks to the remote sync backend. One HTTP call per operation;
// success is strictly HTTP 200 — the backend contract treats every other
// status, 2xx included, as a failed application.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

type envelope struct {
	Table string          `json:"table"`
	Data  json.RawMessage `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func NewClient(baseURL string, log logger.Logger) outbound.RemoteSyncAPI {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log,
	}
}

func (c *Client) Update(ctx context.Context, table string, data json.RawMessage) error {
	return c.send(ctx, http.MethodPatch, "/upload_data", table, data)
}

func (c *Client) Upsert(ctx context.Context, table string, data json.RawMessage) error {
	return c.send(ctx, http.MethodPut, "/upsert_data", table, data)
}

func (c *Client) Delete(ctx context.Context, table string, data json.RawMessage) error {
	return c.send(ctx, http.MethodDelete, "/delete_data", table, data)
}

func (c *Client) send(ctx context.Context, method, path, table string, data json.RawMessage) error {
	body, err := json.Marshal(envelope{Table: table, Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode sync payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "Sync request did not reach the server", map[string]interface{}{
			"method": method,
			"path":   path,
			"table":  table,
		})
		return fmt.Errorf("%s: %w", networkErrPrefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		message := readErrorMessage(resp)
		c.logger.Warn(ctx, "Sync request rejected by server", map[string]interface{}{
			"method": method,
			"path":   path,
			"table":  table,
			"status": resp.StatusCode,
		})
		return fmt.Errorf("%s %d: %s", apiErrPrefix, resp.StatusCode, message)
	}

	return nil
}

// readErrorMessage digs a diagnostic out of a non-ok response: JSON
// message/error field first, then raw body, then the status text.
func readErrorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return http.StatusText(resp.StatusCode)
	}

	var parsed errorBody
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}

	return strings.TrimSpace(string(raw))
}

// IsNetworkError reports whether an error came from the transport rather
// than the backend.
func IsNetworkError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), networkErrPrefix)
}
