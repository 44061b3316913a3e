package main

import (
	"context"
	"net/http"
	"time"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/catalog"
	"bookreview/internal/httpx"
	"bookreview/internal/profile"
	"bookreview/internal/review"
	"bookreview/internal/session"

	"github.com/rs/zerolog/log"
)

// Services are the application services the routes call into.
type Services struct {
	Auth     *auth.Service
	Sessions *session.Service
	Profiles *profile.Service
	Books    *book.Service
	Reviews  *review.Service
	Catalog  *catalog.Service
}

// RouterOptions configures the middleware chain.
type RouterOptions struct {
	Secret      string
	CORSOrigins []string
	MaxBody     int64
	HSTS        bool
	RateLimit   *httpx.RateLimitMiddleware
	Metrics     *httpx.Metrics
	// Ready reports whether the store is reachable.
	Ready func(ctx context.Context) error
}

// NewRouter registers every route and wraps the mux in the middleware chain.
func NewRouter(svc Services, opts RouterOptions) http.Handler {
	authHandler := auth.NewHTTPHandler(svc.Auth)
	sessionHandler := session.NewHTTPHandler(svc.Sessions)
	profileHandler := profile.NewHTTPHandler(svc.Profiles)
	bookHandler := book.NewHTTPHandler(svc.Books)
	reviewHandler := review.NewHTTPHandler(svc.Reviews)
	catalogHandler := catalog.NewHTTPHandler(svc.Catalog)

	optional := httpx.OptionalAuthMiddleware(opts.Secret, svc.Sessions)
	required := httpx.AuthMiddleware(opts.Secret, svc.Sessions)
	public := func(h http.HandlerFunc) http.Handler { return optional(h) }
	private := func(h http.HandlerFunc) http.Handler { return required(h) }

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := opts.Ready(ctx); err != nil {
				log.Warn().Err(err).Msg("readiness check failed")
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	mux.HandleFunc("POST /v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /v1/auth/refresh", authHandler.Refresh)
	mux.Handle("POST /v1/auth/logout", private(authHandler.Logout))

	mux.Handle("GET /v1/books", public(catalogHandler.List))
	mux.Handle("GET /v1/books/{id}", public(catalogHandler.Detail))
	mux.Handle("GET /v1/genres", public(catalogHandler.Genres))
	mux.Handle("POST /v1/books", public(bookHandler.Create))
	mux.Handle("PUT /v1/books/{id}", public(bookHandler.Update))
	mux.Handle("DELETE /v1/books/{id}", public(bookHandler.Delete))

	mux.Handle("POST /v1/books/{id}/reviews", public(reviewHandler.Create))
	mux.Handle("PUT /v1/reviews/{id}", public(reviewHandler.Update))
	mux.Handle("DELETE /v1/reviews/{id}", public(reviewHandler.Delete))

	mux.Handle("GET /v1/profiles/{id}", public(profileHandler.Get))
	mux.Handle("GET /v1/profiles/{id}/summary", public(profileHandler.Summary))
	mux.Handle("GET /v1/me", private(profileHandler.Me))
	mux.Handle("PATCH /v1/me/profile", private(profileHandler.UpdateMe))
	mux.Handle("GET /v1/me/sessions", private(sessionHandler.ListSessions))
	mux.Handle("DELETE /v1/me/sessions/{id}", private(sessionHandler.DeleteSession))

	var handler http.Handler = mux
	if opts.Metrics != nil {
		handler = opts.Metrics.Middleware(handler)
	}

	mws := []httpx.Middleware{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(opts.HSTS),
		httpx.CORSMiddleware(opts.CORSOrigins),
		httpx.RequestSizeLimitMiddleware(opts.MaxBody),
	}
	if opts.RateLimit != nil {
		mws = append(mws, opts.RateLimit.Middleware)
	}
	return httpx.Chain(handler, mws...)
}
