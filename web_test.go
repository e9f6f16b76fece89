package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huujin/valorant-card/catalog"
	"github.com/huujin/valorant-card/hub"
	"github.com/huujin/valorant-card/session"
)

func startServer(t *testing.T, cfg *Config) *httptest.Server {
	t.Helper()

	h := hub.New(session.NewManager(catalog.Default()), zerolog.Nop(), hub.DefaultConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(newRouter(cfg, h))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})

	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func TestRoutes(t *testing.T) {
	cfg := validConfig()
	cfg.prefix = "/veto"
	srv := startServer(t, &cfg)

	t.Run("home", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/veto/")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "/veto/ws")
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	})

	t.Run("healthz", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/veto/healthz")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Ok\n", string(body))
	})

	t.Run("version", func(t *testing.T) {
		_, body := get(t, srv.URL+"/veto/version")
		assert.Equal(t, "valorant-card v"+releaseVersion+"\n", string(body))
	})

	t.Run("robots", func(t *testing.T) {
		_, body := get(t, srv.URL+"/veto/robots.txt")
		assert.Contains(t, string(body), "Disallow: /")
	})

	t.Run("state", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/veto/state")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var snap session.Snapshot
		require.NoError(t, json.Unmarshal(body, &snap))
		assert.Len(t, snap.Game.Cards, catalog.Default().Len())
		assert.False(t, snap.Game.GameActive)
		assert.Empty(t, snap.Participants)
	})

	t.Run("qr", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/veto/qr")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		assert.Equal(t, "\x89PNG", string(body[:4]))
	})

	t.Run("unknown", func(t *testing.T) {
		resp, _ := get(t, srv.URL+"/veto/nope")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestLobbyURL(t *testing.T) {
	cfg := validConfig()
	cfg.prefix = "/veto/"

	r := httptest.NewRequest(http.MethodGet, "http://lan.example:3000/veto/qr", nil)
	assert.Equal(t, "http://lan.example:3000/veto/", lobbyURL(&cfg, r))

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://lan.example:3000/veto/", lobbyURL(&cfg, r))
}

func TestOriginChecker(t *testing.T) {
	check := originChecker(cors.New(cors.Options{AllowedOrigins: []string{"https://veto.example"}}))

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(r), "no origin header")

	r.Header.Set("Origin", "https://veto.example")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://elsewhere.example")
	assert.False(t, check(r))
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.5:4242"
	assert.Equal(t, "10.0.0.5:4242", realIP(r))

	r.Header.Set("X-Real-IP", "192.0.2.7")
	assert.Equal(t, "192.0.2.7:4242", realIP(r))

	r.Header.Set("CF-Connecting-IP", "2001:db8::1")
	assert.Equal(t, "[2001:db8::1]:4242", realIP(r))
}

func TestLoadCatalog(t *testing.T) {
	cfg := validConfig()

	cat, err := loadCatalog(&cfg)
	require.NoError(t, err)
	assert.Equal(t, catalog.Default().Len(), cat.Len())

	cfg.catalog = "missing.yaml"
	_, err = loadCatalog(&cfg)
	assert.Error(t, err)
}
