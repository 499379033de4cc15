package common

import (
	"context"
	"testing"
)

func TestUserContext_RoundTrip(t *testing.T) {
	ctx := context.Background()

	if uc := UserContextFromContext(ctx); uc != nil {
		t.Error("Expected nil UserContext from empty context")
	}

	ctx = WithUserContext(ctx, &UserContext{UserID: "ana", Source: "header"})

	got := UserContextFromContext(ctx)
	if got == nil {
		t.Fatal("Expected non-nil UserContext")
	}
	if got.UserID != "ana" {
		t.Errorf("Expected ana, got %s", got.UserID)
	}
	if got.Source != "header" {
		t.Errorf("Expected header source, got %s", got.Source)
	}
}

func TestResolveUserID(t *testing.T) {
	tests := []struct {
		name string
		uc   *UserContext
		want string
	}{
		{"no context", nil, DefaultUserID},
		{"empty id", &UserContext{}, DefaultUserID},
		{"whitespace id", &UserContext{UserID: "   "}, DefaultUserID},
		{"explicit id", &UserContext{UserID: "bruno"}, "bruno"},
		{"trimmed id", &UserContext{UserID: " carla "}, "carla"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.uc != nil {
				ctx = WithUserContext(ctx, tt.uc)
			}
			if got := ResolveUserID(ctx); got != tt.want {
				t.Errorf("ResolveUserID() = %q, want %q", got, tt.want)
			}
		})
	}
}
