package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/huujin/valorant-card/catalog"
	"github.com/huujin/valorant-card/hub"
	"github.com/huujin/valorant-card/session"
)

const (
	logDate string        = `2006-01-02T15:04:05.000-07:00`
	timeout time.Duration = 10 * time.Second
)

func securityHeaders(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Permissions-Policy", "geolocation=(), midi=(), sync-xhr=(), microphone=(), camera=(), magnetometer=(), gyroscope=(), fullscreen=(), payment=()")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")

	if cfg.scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

func logServed(r *http.Request, what string, written int, startTime time.Time) {
	log.Debug().
		Str("page", what).
		Int("bytes", written).
		Str("remote", realIP(r)).
		Dur("took", time.Since(startTime).Round(time.Microsecond)).
		Msg("served")
}

func serveHomePage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		body := fmt.Sprintf(`<h1>valorant-card</h1><p>Map veto session. Connect a client to <code>%s/ws</code>.</p>`+
			`<p><a href="%s/qr">Share this lobby</a> · <a href="%s/state">Current state</a></p>`,
			cfg.prefix, cfg.prefix, cfg.prefix)

		written, err := io.WriteString(w, newPage("valorant-card", body))
		if err != nil {
			return
		}

		logServed(r, "home", written, startTime)
	}
}

func serveVersion(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		written, err := w.Write([]byte("valorant-card v" + releaseVersion + "\n"))
		if err != nil {
			return
		}

		logServed(r, "version", written, startTime)
	}
}

func serveHealthCheck(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte("Ok\n"))
	}
}

func serveRobots(cfg *Config) httprouter.Handle {
	const data = "User-agent: *\nDisallow: /\n"

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(data))
	}
}

func serveState(cfg *Config, h *hub.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		snap, err := h.Snapshot(ctx)
		if err != nil {
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}

		data, err := json.Marshal(snap)
		if err != nil {
			http.Error(w, "encoding failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		written, err := w.Write(data)
		if err != nil {
			return
		}

		logServed(r, "state", written, startTime)
	}
}

func serveWS(h *hub.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeWS(w, r)
	}
}

func loadCatalog(cfg *Config) (*catalog.Catalog, error) {
	if cfg.catalog == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.catalog)
}

// originChecker applies the CORS origin list to websocket upgrades. Requests
// without an Origin header come from non-browser clients and are allowed.
func originChecker(c *cors.Cors) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if r.Header.Get("Origin") == "" {
			return true
		}
		return c.OriginAllowed(r)
	}
}

func newRouter(cfg *Config, h *hub.Hub) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		log.Error().Interface("panic", i).Str("path", r.URL.Path).Msg("recovered from panic")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusInternalServerError)

		_, _ = io.WriteString(w, newPage("Server Error", "An error has occurred. Please try again."))
	}

	mux.GET(cfg.prefix+"/", serveHomePage(cfg))

	mux.GET(cfg.prefix+"/ws", serveWS(h))

	mux.GET(cfg.prefix+"/state", serveState(cfg, h))

	mux.GET(cfg.prefix+"/qr", serveQR(cfg))

	mux.GET(cfg.prefix+"/healthz", serveHealthCheck(cfg))

	mux.GET(cfg.prefix+"/robots.txt", serveRobots(cfg))

	mux.GET(cfg.prefix+"/version", serveVersion(cfg))

	if cfg.profile {
		registerProfileHandlers(cfg, mux)
	}

	return mux
}

func ServePage(ctx context.Context, cfg *Config) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	log.Info().Str("version", releaseVersion).Msg("starting valorant-card")

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	manager := session.NewManager(cat, session.WithRosterCapacity(cfg.rosterCapacity))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	})

	h := hub.New(manager, log.With().Str("component", "hub").Logger(), hub.DefaultConfig(), originChecker(c))

	cfg.prefix = strings.TrimSuffix(cfg.prefix, "/")

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           c.Handler(newRouter(cfg, h)),
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: timeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return h.Run(gctx)
	})

	g.Go(func() error {
		log.Info().
			Int("maps", cat.Len()).
			Int("roster_capacity", cfg.rosterCapacity).
			Msgf("listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)

		var err error
		if cfg.tlsKey != "" && cfg.tlsCert != "" {
			err = srv.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
