package platform

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"hellorun/internal/metrics"
	"hellorun/ui"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerConfig holds the HTTP server tunables. TLS is on when both a
// certificate and a key are given.
type HTTPServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	EnableTLS    bool
	CertFile     string
	KeyFile      string
}

// CookieStore signs the surface cookie. The key comes from the environment so
// restarts keep surface identity; the fallback is fine for local demos.
var CookieStore = sessions.NewCookieStore([]byte(cookieKey()))

func cookieKey() string {
	if k := os.Getenv("HELLORUN_COOKIE_KEY"); k != "" {
		return k
	}
	return "hellorun-dev-cookie-key"
}

const surfaceCookie = "hellorun"

// SurfaceMiddleware gives each browser a stable surface id and threads it
// through the request context. One cookie session = one surface = one result
// slot.
func SurfaceMiddleware(store *sessions.CookieStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := store.Get(r, surfaceCookie)
			id, ok := sess.Values["id"].(string)
			if !ok || id == "" {
				id = uuid.NewString()
				sess.Values["id"] = id
				sess.Options = &sessions.Options{
					Path:     "/",
					MaxAge:   60 * 60 * 24 * 7, // 1 week
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				}
				_ = sess.Save(r, w)
			}
			ctx := context.WithValue(r.Context(), surfaceCtxKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RunHTTPServer serves the app until ctx is cancelled. The returned channel
// carries the exit error once: ctx.Err() after a clean drain, or whatever the
// listener or shutdown failed with.
func RunHTTPServer(ctx context.Context, js jetstream.JetStream, cfg HTTPServerConfig) <-chan error {
	errCh := make(chan error, 1)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      newRouter(js),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errCh <- err
			return
		}
		errCh <- ctx.Err()
	}()

	go func() {
		var err error
		if cfg.EnableTLS {
			err = srv.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	return errCh
}

func newRouter(js jetstream.JetStream) *chi.Mux {
	r := chi.NewRouter()
	r.Use(SurfaceMiddleware(CookieStore))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(chiLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// command plane
	r.Post("/command/*", SendCommand(js))
	r.Get("/schema/{type}", CommandSchemaHandler)
	r.Post("/tool/{tool}/run", ToolRunHandler(js))
	r.Post("/console", ConsoleCommandHandler(js))
	r.Post("/surface/view/{view}", SurfaceViewHandler(js))

	// page shell, assets, and the SSE stream that fills the shell
	r.Get("/", templ.Handler(ui.Index()).ServeHTTP)
	staticFS, _ := fs.Sub(ui.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle("/favicon.svg", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(ui.FaviconSVG)
	}))
	r.Get("/ui", UIStream(js))

	return r
}

// chiLogger records one slog line and the request metrics per request.
func chiLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		t0 := time.Now()
		next.ServeHTTP(ww, r)
		duration := time.Since(t0)
		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		metrics.CountHTTPRequest(r.Method, routePattern, ww.Status(), duration)
		slog.Info("http", "method", r.Method, "path", r.URL.Path, "route", routePattern, "status", ww.Status(), "duration", duration)
	})
}

type surfaceCtxKey struct{}

// SurfaceID returns the surface id assigned by SurfaceMiddleware, or "".
func SurfaceID(r *http.Request) string {
	id, _ := r.Context().Value(surfaceCtxKey{}).(string)
	return id
}
