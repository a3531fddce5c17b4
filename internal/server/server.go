// Package server exposes dependency resolution over HTTP.
//
//	GET /v1/resolve?artifact=g:a:v[&exclude=g:a][&optional=g:a][&format=lines|tree|json|dot|svg]
//	GET /healthz
//
// Resolution results are plain text lines by default, or JSON when the
// request accepts application/json. Errors map to 400 for bad requests,
// 404 when a descriptor does not exist and 502 for repository failures.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/mavenclosure/pkg/cache"
	"github.com/matzehuels/mavenclosure/pkg/integrations"
)

// DefaultResultTTL bounds how long a rendered result is reused.
const DefaultResultTTL = time.Hour

// DefaultResolveTimeout bounds one shared resolution. Resolutions are not
// tied to the requests waiting on them, so this is their only deadline.
const DefaultResolveTimeout = 5 * time.Minute

// shutdownTimeout bounds graceful shutdown once the context is done.
const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// Repository is the base URL or local path of the Maven repository.
	Repository string

	// Client performs repository reads. It is shared by all requests so its
	// response cache is shared as well.
	Client *integrations.Client

	// Results caches rendered responses. Nil disables result caching.
	Results   cache.Cache
	ResultTTL time.Duration
	Keyer     cache.Keyer

	// Workers bounds concurrent descriptor fetches per request.
	Workers int

	// ResolveTimeout bounds a resolution shared by identical concurrent
	// requests (default DefaultResolveTimeout).
	ResolveTimeout time.Duration

	// Exclude and Optional apply to every request in addition to the
	// request's own patterns.
	Exclude  []string
	Optional []string

	Logger *log.Logger
}

// Server is the HTTP resolution service.
type Server struct {
	opts    Options
	router  chi.Router
	flights singleflight.Group
}

// New creates a Server. A nil client reads the repository without caching.
func New(opts Options) *Server {
	if opts.Client == nil {
		opts.Client = integrations.NewClient(nil, "maven", 0, nil)
	}
	if opts.Results == nil {
		opts.Results = cache.NewNullCache()
	}
	if opts.ResultTTL <= 0 {
		opts.ResultTTL = DefaultResultTTL
	}
	if opts.ResolveTimeout <= 0 {
		opts.ResolveTimeout = DefaultResolveTimeout
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Server{opts: opts}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/resolve", s.handleResolve)
	})
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", "addr", addr, "repository", s.opts.Repository)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.opts.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// queryList collects repeated and comma-separated values of a parameter.
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
