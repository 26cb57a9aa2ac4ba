package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/domain"
)

func TestCartService_RequiresSession(t *testing.T) {
	ctx := context.Background()
	mock := &mockStoreAPI{}
	svc := NewCartService(zap.NewNop(), mock, newAuthContext(t))

	if err := svc.Add(ctx, "p1"); !errors.Is(err, domain.ErrSessionMissing) {
		t.Fatalf("expected ErrSessionMissing on add, got %v", err)
	}
	if _, err := svc.Items(ctx); !errors.Is(err, domain.ErrSessionMissing) {
		t.Fatalf("expected ErrSessionMissing on items, got %v", err)
	}
	if err := svc.Remove(ctx, "p1"); !errors.Is(err, domain.ErrSessionMissing) {
		t.Fatalf("expected ErrSessionMissing on remove, got %v", err)
	}
	if len(mock.calls) != 0 {
		t.Fatalf("expected no api calls without session, got %v", mock.calls)
	}
}

func TestCartService_UsesSessionToken(t *testing.T) {
	ctx := context.Background()
	authCtx := newAuthContext(t)
	authCtx.Login(ctx, domain.User{ID: "u1"}, "abc123")
	mock := &mockStoreAPI{cart: []domain.Product{{ID: "p1", Name: "Hat"}}}
	svc := NewCartService(zap.NewNop(), mock, authCtx)

	if err := svc.Add(ctx, "p1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if mock.lastToken != "abc123" {
		t.Fatalf("expected session token, got %q", mock.lastToken)
	}

	items, err := svc.Items(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("items: %+v, %v", items, err)
	}
	if mock.lastUserID != "u1" {
		t.Fatalf("expected session user id, got %q", mock.lastUserID)
	}

	if err := svc.Remove(ctx, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty product id, got %v", err)
	}
}

func TestCartService_KeepsErrorKinds(t *testing.T) {
	ctx := context.Background()
	authCtx := newAuthContext(t)
	authCtx.Login(ctx, domain.User{ID: "u1"}, "abc123")
	mock := &mockStoreAPI{cartErr: &api.NetworkError{Op: "POST /api/checkout", Err: errors.New("connection refused")}}
	svc := NewCartService(zap.NewNop(), mock, authCtx)

	err := svc.Add(ctx, "p1")
	var ne *api.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected network error, got %v", err)
	}
	if api.IsAuthFailure(err) {
		t.Fatalf("network error must not look like an auth failure")
	}
}
