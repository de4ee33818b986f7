package proxy

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProxyStripsAntiEmbedHeaders(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Content-Security-Policy-Report-Only", "frame-ancestors 'none'")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html>chatwoot</html>")
	}))
	defer upstream.Close()

	handler, err := NewChatwootProxy(upstream.URL)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/app/accounts/4/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy-Report-Only"))
	// O resto da resposta passa intacto
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "chatwoot")
}

func TestProxyForwardsHostAndPath(t *testing.T) {
	var gotPath, gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
	}))
	defer upstream.Close()

	handler, err := NewChatwootProxy(upstream.URL)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/packs/js/app.js?v=123", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "/packs/js/app.js", gotPath)
	assert.Equal(t, "v=123", gotQuery)
}

func TestProxyUpstreamDownReturns502(t *testing.T) {
	// Porta fechada: o proxy responde 502 em vez de estourar
	handler, err := NewChatwootProxy("http://127.0.0.1:1")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestProxyInvalidOrigin(t *testing.T) {
	_, err := NewChatwootProxy("://sem-esquema")
	assert.Error(t, err)
}
