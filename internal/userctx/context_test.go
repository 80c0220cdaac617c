package userctx

import (
	"context"
	"testing"
	"time"
)

func TestIdentityRoundTrip(t *testing.T) {
	if _, ok := GetUserID(context.Background()); ok {
		t.Fatal("empty context must be anonymous")
	}
	if _, ok := GetUserID(WithUserID(context.Background(), "")); ok {
		t.Fatal("blank user id must be anonymous")
	}

	ctx := WithIdentity(context.Background(), Identity{UserID: "u1", Email: "kari@example.com"})
	id, ok := GetIdentity(ctx)
	if !ok || id.UserID != "u1" || id.Email != "kari@example.com" || id.Local {
		t.Fatalf("unexpected identity %+v ok=%v", id, ok)
	}
	if userID, _ := GetUserID(ctx); userID != "u1" {
		t.Fatalf("expected u1, got %q", userID)
	}
	if id.SessionID != "" {
		t.Fatalf("expected no session id, got %q", id.SessionID)
	}
}

func TestIdentityCarriesSession(t *testing.T) {
	exp := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	ctx := WithIdentity(context.Background(), Identity{UserID: "u1", SessionID: "jti-a", ExpiresAt: exp})

	id, ok := GetIdentity(ctx)
	if !ok || id.SessionID != "jti-a" || !id.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected identity %+v ok=%v", id, ok)
	}
}
