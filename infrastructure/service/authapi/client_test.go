package authapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
)

func testLogger() logger.Logger {
	return logger.NewStructuredLogger(logger.LoggerConfig{Level: "panic", ServiceName: "test"})
}

func TestClient_SignIn_Success(t *testing.T) {
	var gotPath, gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "at",
			"refresh_token": "rt",
			"expires_in": 3600,
			"user": {
				"id": "user-1",
				"email": "agent@coop.co.mz",
				"user_metadata": {"status": "authorized"}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "api-key", testLogger())

	session, err := client.SignIn(context.Background(), "agent@coop.co.mz", "field-password-1")

	require.NoError(t, err)
	assert.Equal(t, "/token?grant_type=password", gotPath)
	assert.Equal(t, "api-key", gotAPIKey)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, "rt", session.RefreshToken)
	assert.Equal(t, entity.UserStatusAuthorized, session.User.Status)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 10*time.Second)
}

func TestClient_SignIn_BlockedStatusIsCarried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"access_token": "at",
			"expires_in": 3600,
			"user": {"id": "u", "user_metadata": {"status": "blocked"}}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", testLogger())

	session, err := client.SignIn(context.Background(), "a@b.co", "password1")

	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusBlocked, session.User.Status)
}

func TestClient_SignIn_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"msg":"Invalid login credentials"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", testLogger())

	_, err := client.SignIn(context.Background(), "a@b.co", "password1")

	require.ErrorIs(t, err, outbound.ErrAuthRejected)
	assert.Contains(t, err.Error(), "Invalid login credentials")
}

func TestClient_SignIn_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", testLogger())

	_, err := client.SignIn(context.Background(), "a@b.co", "password1")

	require.ErrorIs(t, err, outbound.ErrAuthUnavailable)
}

func TestClient_SignIn_UnreachableIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "k", testLogger())

	_, err := client.SignIn(context.Background(), "a@b.co", "password1")

	require.ErrorIs(t, err, outbound.ErrAuthUnavailable)
}

func TestClient_RefreshSession_UsesRefreshGrant(t *testing.T) {
	var gotQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"access_token": "at2", "refresh_token": "rt2", "expires_at": 1790000000, "user": {"id": "u"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", testLogger())

	session, err := client.RefreshSession(context.Background(), "rt")

	require.NoError(t, err)
	assert.Equal(t, "grant_type=refresh_token", gotQuery)
	assert.Equal(t, "at2", session.AccessToken)
	assert.Equal(t, time.Unix(1790000000, 0).UTC(), session.ExpiresAt)
}

func TestClient_SignOut_IgnoresClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", testLogger())

	assert.NoError(t, client.SignOut(context.Background(), "stale-token"))
}

func TestBuildSession_DefaultsStatusToAuthorized(t *testing.T) {
	var token tokenResponse
	token.AccessToken = "at"
	token.ExpiresIn = 60

	session := buildSession(token, time.Now())

	assert.Equal(t, entity.UserStatusAuthorized, session.User.Status)
}
