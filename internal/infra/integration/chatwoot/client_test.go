package chatwoot

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigured(t *testing.T) {
	assert.True(t, NewClient("http://chatwoot.local", "token").Configured())
	assert.False(t, NewClient("http://chatwoot.local", "").Configured())
}

func TestGenerateSSOURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/platform/api/v1/users/11/login", r.URL.Path)
		assert.Equal(t, "token-secreto", r.Header.Get("api_access_token"))
		fmt.Fprint(w, `{"url":"http://chatwoot.local/login?sso_auth_token=abc"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-secreto")

	ssoURL, err := client.GenerateSSOURL(11, 4)

	assert.NoError(t, err)
	// O link já tem query string, então o redirect entra com &
	assert.Equal(t, "http://chatwoot.local/login?sso_auth_token=abc&redirect_url=/app/accounts/4/dashboard", ssoURL)
}

func TestGenerateSSOURLWithoutQueryString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"url":"http://chatwoot.local/login"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")

	ssoURL, err := client.GenerateSSOURL(11, 4)

	assert.NoError(t, err)
	assert.Equal(t, "http://chatwoot.local/login?redirect_url=/app/accounts/4/dashboard", ssoURL)
}

func TestGenerateSSOURLUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid token"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-errado")

	_, err := client.GenerateSSOURL(11, 4)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGenerateSSOURLEmptyURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")

	_, err := client.GenerateSSOURL(11, 4)

	assert.Error(t, err)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://chatwoot.local/", "token")
	assert.Equal(t, "http://chatwoot.local", client.BaseURL())
}
