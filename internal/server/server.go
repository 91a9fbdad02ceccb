// Package server assembles the kiosk's HTTP surface.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/auth"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/metrics"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/middleware"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/service"
)

// Options are the handlers the router mounts.
type Options struct {
	Kiosk *service.KioskService

	// Stream serves GET /v1/stream. Optional.
	Stream http.Handler

	// JWT, when set, requires terminal tokens on RPC and stream routes.
	JWT *auth.JWTManager
}

// New returns the root handler, wrapped with h2c for HTTP/2 without TLS
// (required for Connect's gRPC protocol).
func New(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	interceptors := []connect.Interceptor{}
	if opts.JWT != nil {
		interceptors = append(interceptors, middleware.RequireTerminal(opts.JWT))
	}
	interceptors = append(interceptors, middleware.LoggingInterceptor(service.KioskServiceGetViewProcedure))
	path, handler := service.NewKioskServiceHandler(opts.Kiosk, connect.WithInterceptors(interceptors...))
	r.Mount(path, handler)

	if opts.Stream != nil {
		stream := opts.Stream
		if opts.JWT != nil {
			stream = middleware.RequireTerminalHTTP(opts.JWT)(stream)
		}
		r.Method(http.MethodGet, "/v1/stream", stream)
	}

	return h2c.NewHandler(r, &http2.Server{})
}

// Run serves handler on addr until ctx is cancelled, then drains
// in-flight requests.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
