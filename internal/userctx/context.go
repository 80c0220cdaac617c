// Package userctx carries the caller's identity through request contexts.
package userctx

import (
	"context"
	"time"
)

type contextKey struct{}

// Identity is who a request runs as.
type Identity struct {
	UserID string
	Email  string // empty for the local user
	Local  bool   // no token, auth optional

	// SessionID is the token id (jti); empty for the local user.
	SessionID string
	ExpiresAt time.Time
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// WithUserID is WithIdentity for a bare user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return WithIdentity(ctx, Identity{UserID: userID})
}

// GetIdentity returns false when the request is anonymous.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

func GetUserID(ctx context.Context) (string, bool) {
	id, ok := GetIdentity(ctx)
	return id.UserID, ok
}
