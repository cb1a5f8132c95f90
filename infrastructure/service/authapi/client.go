package authapi

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
	"github.com/agrisync/agrisync/domain/entity"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
)

// Client implements AuthProvider against the hosted auth backend
// (GoTrue-compatible token endpoints).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(baseURL, apiKey string, log logger.Logger) outbound.AuthProvider {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: log,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		UserMetadata struct {
			Status string `json:"status"`
		} `json:"user_metadata"`
	} `json:"user"`
}

type authErrorResponse struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	return c.requestToken(ctx, "password", payload)
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*entity.Session, error) {
	payload := map[string]string{
		"refresh_token": refreshToken,
	}
	return c.requestToken(ctx, "refresh_token", payload)
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create sign-out request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", outbound.ErrAuthUnavailable, err)
	}
	defer resp.Body.Close()

	// Sign-out is best effort; an already-invalid token is fine.
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: sign-out returned status %d", outbound.ErrAuthUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) requestToken(ctx context.Context, grantType string, payload map[string]string) (*entity.Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode auth payload: %w", err)
	}

	url := fmt.Sprintf("%s/token?grant_type=%s", c.baseURL, grantType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "Auth backend unreachable", map[string]interface{}{
			"grant_type": grantType,
		})
		return nil, fmt.Errorf("%w: %v", outbound.ErrAuthUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read auth response", outbound.ErrAuthUnavailable)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: auth backend returned status %d", outbound.ErrAuthUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", outbound.ErrAuthRejected, authErrorMessage(raw, resp.StatusCode))
	}

	var token tokenResponse
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: auth response missing access token", outbound.ErrAuthRejected)
	}

	return buildSession(token, time.Now()), nil
}

// buildSession maps a token response to a session, resolving the expiry
// from expires_at (unix seconds) when present, expires_in otherwise.
func buildSession(token tokenResponse, now time.Time) *entity.Session {
	var expiresAt time.Time
	switch {
	case token.ExpiresAt > 0:
		expiresAt = time.Unix(token.ExpiresAt, 0).UTC()
	case token.ExpiresIn > 0:
		expiresAt = now.Add(time.Duration(token.ExpiresIn) * time.Second).UTC()
	}

	status := token.User.UserMetadata.Status
	if status == "" {
		status = entity.UserStatusAuthorized
	}

	return &entity.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiresAt,
		User: entity.SessionUser{
			ID:     token.User.ID,
			Email:  token.User.Email,
			Status: status,
		},
	}
}

func authErrorMessage(raw []byte, status int) string {
	var parsed authErrorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.ErrorDescription != "" {
			return parsed.ErrorDescription
		}
	}
	return http.StatusText(status)
}
