package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/snaketips/handler"
	"github.com/dmitrymomot/snaketips/internal/leaderboard"
	"github.com/dmitrymomot/snaketips/internal/realtime"
	"github.com/dmitrymomot/snaketips/internal/tips"
	"github.com/dmitrymomot/snaketips/pkg/clientip"
	"github.com/dmitrymomot/snaketips/pkg/environment"
	"github.com/dmitrymomot/snaketips/pkg/httpserver"
	"github.com/dmitrymomot/snaketips/pkg/logger"
	"github.com/dmitrymomot/snaketips/pkg/ratelimiter"
	"github.com/dmitrymomot/snaketips/pkg/requestid"
)

// Prefix is the mount point of the versioned API.
const Prefix = "/api/v1"

// Event types written on the realtime streams.
const (
	TipEvent               = "tip"
	LeaderboardChangeEvent = "leaderboard-change"
)

// Deps are the services the router exposes.
type Deps struct {
	Log         *slog.Logger
	Env         environment.Environment
	Catalogue   *tips.Catalogue
	Tips        *realtime.Channel[tips.Tip]
	Leaderboard *realtime.Channel[leaderboard.ChangeEvent]
	Store       *leaderboard.Store

	// SubmitLimiter throttles score submissions. Nil disables throttling.
	SubmitLimiter *ratelimiter.Bucket
	ClientIP      *clientip.Resolver
	Gatherer      prometheus.Gatherer
	HealthChecks  []func(context.Context) error
}

// NewRouter builds the HTTP handler for the whole service.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	if d.ClientIP == nil {
		d.ClientIP = clientip.New()
	}

	h := &handlers{
		log:         d.Log.With(logger.Component("api")),
		catalogue:   d.Catalogue,
		tips:        d.Tips,
		leaderboard: d.Leaderboard,
		store:       d.Store,
	}
	onError := handler.NewErrorHandler(h.log)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		requestid.Middleware,
		d.ClientIP.Middleware,
		environment.Middleware(d.Env),
		accessLog(h.log),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		onError(handler.NewContext(w, r), handler.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		onError(handler.NewContext(w, r), handler.ErrMethodNotAllowed)
	})

	r.Get("/health", httpserver.HealthCheckHandler(h.log, d.HealthChecks...))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route(Prefix, func(r chi.Router) {
		r.Route("/tips", func(r chi.Router) {
			r.Get("/", handler.Wrap(h.listTips, handler.WithErrorHandler[struct{}](onError)))
			r.Get("/realtime", handler.Wrap(h.streamTips, handler.WithErrorHandler[struct{}](onError)))
		})

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/", handler.Wrap(h.listLeaderboard, handler.WithErrorHandler[struct{}](onError)))
			r.Get("/realtime", handler.Wrap(h.streamLeaderboard, handler.WithErrorHandler[struct{}](onError)))
			r.Get("/player/{playerName}", handler.Wrap(h.playerEntries, handler.WithErrorHandler[struct{}](onError)))
			r.Get("/{entryId}", handler.Wrap(h.getEntry, handler.WithErrorHandler[struct{}](onError)))
			r.Delete("/{entryId}", handler.Wrap(h.deleteEntry, handler.WithErrorHandler[struct{}](onError)))

			r.Group(func(r chi.Router) {
				if d.SubmitLimiter != nil {
					r.Use(submitLimit(d.SubmitLimiter, onError))
				}
				r.Post("/", handler.Wrap(h.submitEntry,
					handler.WithBinders[leaderboard.SubmitRequest](handler.BindJSON()),
					handler.WithErrorHandler[leaderboard.SubmitRequest](onError),
				))
			})
		})
	})

	return r
}

// submitLimit throttles per client address and answers denials with the
// standard JSON error body.
func submitLimit(b *ratelimiter.Bucket, onError handler.ErrorHandler) func(http.Handler) http.Handler {
	return ratelimiter.Middleware(b,
		func(r *http.Request) string { return clientip.FromContext(r.Context()) },
		ratelimiter.WithLimitedHandler(func(w http.ResponseWriter, r *http.Request, _ *ratelimiter.Result) {
			onError(handler.NewContext(w, r), handler.ErrTooManyRequests)
		}),
		ratelimiter.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			onError(handler.NewContext(w, r), err)
		}),
	)
}

// accessLog writes one record per finished request.
func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.LogAttrs(r.Context(), slog.LevelDebug, "request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.String("client_ip", clientip.FromContext(r.Context())),
				logger.Duration(time.Since(start)),
			)
		})
	}
}
