package common

import (
	"context"
	"strings"
)

// DefaultUserID scopes portfolio operations when no user identity is supplied.
// Rows written before the user column existed are migrated to this value.
const DefaultUserID = "default"

// UserContext holds the per-request user identity resolved by the HTTP
// middleware from a bearer token or the X-Milhas-User header.
type UserContext struct {
	UserID string
	Source string // "bearer" or "header"
}

type contextKey int

const userContextKey contextKey = iota

// WithUserContext stores a UserContext in the request context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext retrieves the UserContext from context, or nil if absent.
func UserContextFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey).(*UserContext)
	return uc
}

// ResolveUserID returns the UserID from context, or DefaultUserID when no
// user context is present.
func ResolveUserID(ctx context.Context) string {
	if uc := UserContextFromContext(ctx); uc != nil {
		if id := strings.TrimSpace(uc.UserID); id != "" {
			return id
		}
	}
	return DefaultUserID
}
