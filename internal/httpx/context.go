package httpx

import (
	"context"
	"net/http"
	"time"

	"bookreview/internal/policy"
)

type contextKey string

const (
	actorKey     contextKey = "actor"
	tokenKey     contextKey = "token"
	requestIDKey contextKey = "requestID"
)

// TokenInfo identifies the access token that authenticated the request.
type TokenInfo struct {
	ID        string
	ExpiresAt time.Time
}

// ActorFrom returns the acting user, or the anonymous actor.
func ActorFrom(r *http.Request) policy.Actor {
	if v, ok := r.Context().Value(actorKey).(policy.Actor); ok {
		return v
	}
	return policy.Anonymous()
}

// UserIDFrom retrieves the authenticated user id, empty when anonymous.
func UserIDFrom(r *http.Request) string {
	return ActorFrom(r).ID
}

func TokenFrom(r *http.Request) (TokenInfo, bool) {
	v, ok := r.Context().Value(tokenKey).(TokenInfo)
	return v, ok
}

// ContextWithActor returns a new context carrying the actor and its token.
func ContextWithActor(ctx context.Context, actor policy.Actor, token TokenInfo) context.Context {
	ctx = context.WithValue(ctx, actorKey, actor)
	return context.WithValue(ctx, tokenKey, token)
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
