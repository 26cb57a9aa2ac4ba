package auth

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/session"
	"storefront/internal/storage"
)

type brokenStore struct {
	writes int
	clears int
}

func (b *brokenStore) Read(context.Context) (domain.Session, bool) { return domain.Session{}, false }

func (b *brokenStore) Write(context.Context, domain.Session) error {
	b.writes++
	return errors.New("quota exceeded")
}

func (b *brokenStore) Clear(context.Context) error {
	b.clears++
	return errors.New("quota exceeded")
}

func newTestContext(t *testing.T) (*Context, *session.Store) {
	t.Helper()
	store := session.NewStore(storage.NewMemoryKV(), zap.NewNop())
	return NewContext(context.Background(), store, zap.NewNop()), store
}

func TestContext_InitialStateFromStore(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(storage.NewMemoryKV(), zap.NewNop())

	if c := NewContext(ctx, store, zap.NewNop()); c.State() != StateAnonymous {
		t.Fatalf("expected anonymous on empty store, got %s", c.State())
	}

	if err := store.Write(ctx, domain.Session{User: domain.User{ID: "u1", Name: "Alice"}, Token: "abc123"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c := NewContext(ctx, store, zap.NewNop())
	sess, ok := c.Current()
	if !ok || c.State() != StateAuthenticated || sess.User.Name != "Alice" || c.Token() != "abc123" {
		t.Fatalf("expected restored session, got %+v (ok=%v)", sess, ok)
	}
}

func TestContext_LoginThenRead(t *testing.T) {
	ctx := context.Background()
	c, store := newTestContext(t)

	c.Login(ctx, domain.User{ID: "u1", Name: "Alice"}, "abc123")

	sess, ok := c.Current()
	if !ok || sess.User.ID != "u1" || sess.Token != "abc123" {
		t.Fatalf("unexpected current session: %+v", sess)
	}
	persisted, ok := store.Read(ctx)
	if !ok || persisted.User.ID != "u1" || persisted.Token != "abc123" {
		t.Fatalf("unexpected persisted session: %+v", persisted)
	}
}

func TestContext_SecondLoginWins(t *testing.T) {
	ctx := context.Background()
	c, store := newTestContext(t)

	c.Login(ctx, domain.User{ID: "u1", Name: "Alice"}, "token-a")
	c.Login(ctx, domain.User{ID: "u2", Name: "Bob"}, "token-b")

	sess, _ := c.Current()
	if sess.User.ID != "u2" || sess.User.Name != "Bob" || sess.Token != "token-b" {
		t.Fatalf("expected second login, got %+v", sess)
	}
	persisted, _ := store.Read(ctx)
	if persisted.User.ID != "u2" || persisted.Token != "token-b" {
		t.Fatalf("expected second login persisted, got %+v", persisted)
	}
}

func TestContext_LogoutClears(t *testing.T) {
	ctx := context.Background()
	c, store := newTestContext(t)

	c.Login(ctx, domain.User{ID: "u1"}, "abc123")
	c.Logout(ctx)

	if c.State() != StateAnonymous || c.Token() != "" {
		t.Fatalf("expected anonymous after logout")
	}
	if _, ok := store.Read(ctx); ok {
		t.Fatalf("expected store cleared after logout")
	}
}

func TestContext_LogoutWhenAnonymous(t *testing.T) {
	ctx := context.Background()
	c, store := newTestContext(t)

	calls := 0
	c.Subscribe(func(_ domain.Session, authenticated bool) {
		calls++
		if authenticated {
			t.Fatalf("expected anonymous notification")
		}
	})

	c.Logout(ctx)
	c.Logout(ctx)

	if c.State() != StateAnonymous {
		t.Fatalf("expected to remain anonymous")
	}
	if _, ok := store.Read(ctx); ok {
		t.Fatalf("expected storage to stay cleared")
	}
	if calls != 2 {
		t.Fatalf("expected 2 notifications, got %d", calls)
	}
}

func TestContext_SubscribersSeeNewStateSynchronously(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t)

	var seen []string
	c.Subscribe(func(s domain.Session, authenticated bool) {
		current, ok := c.Current()
		if ok != authenticated || current.Token != s.Token {
			t.Fatalf("stale read inside listener: current=%+v notified=%+v", current, s)
		}
		seen = append(seen, "first:"+s.Token)
	})
	c.Subscribe(func(s domain.Session, _ bool) {
		seen = append(seen, "second:"+s.Token)
	})

	c.Login(ctx, domain.User{ID: "u1"}, "abc123")
	if len(seen) != 2 || seen[0] != "first:abc123" || seen[1] != "second:abc123" {
		t.Fatalf("expected both listeners notified in order before Login returned, got %v", seen)
	}

	c.Logout(ctx)
	if len(seen) != 4 || seen[2] != "first:" || seen[3] != "second:" {
		t.Fatalf("expected logout notifications, got %v", seen)
	}
}

func TestContext_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t)

	calls := 0
	unsubscribe := c.Subscribe(func(domain.Session, bool) { calls++ })
	c.Login(ctx, domain.User{ID: "u1"}, "abc123")
	unsubscribe()
	unsubscribe()
	c.Logout(ctx)

	if calls != 1 {
		t.Fatalf("expected 1 call before unsubscribe, got %d", calls)
	}
}

func TestContext_StorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := &brokenStore{}
	c := NewContext(ctx, store, zap.NewNop())

	notified := false
	c.Subscribe(func(domain.Session, bool) { notified = true })

	c.Login(ctx, domain.User{ID: "u1"}, "abc123")
	if c.State() != StateAuthenticated || !notified {
		t.Fatalf("expected in-memory login despite storage failure")
	}
	c.Logout(ctx)
	if c.State() != StateAnonymous {
		t.Fatalf("expected in-memory logout despite storage failure")
	}
	if store.writes != 1 || store.clears != 2 {
		t.Fatalf("expected one write and two clears, got %d/%d", store.writes, store.clears)
	}
}

func TestContext_LoginWithPartialSessionIsIgnored(t *testing.T) {
	ctx := context.Background()
	c, store := newTestContext(t)

	c.Login(ctx, domain.User{ID: "u1", Name: "Alice"}, "abc123")
	calls := 0
	c.Subscribe(func(domain.Session, bool) { calls++ })

	c.Login(ctx, domain.User{ID: "u2"}, "")
	c.Login(ctx, domain.User{}, "token-b")

	sess, ok := c.Current()
	if !ok || sess.User.ID != "u1" || sess.Token != "abc123" {
		t.Fatalf("expected previous session kept, got %+v (ok=%v)", sess, ok)
	}
	persisted, ok := store.Read(ctx)
	if !ok || persisted.User.ID != "u1" {
		t.Fatalf("expected previous session still persisted, got %+v", persisted)
	}
	if calls != 0 {
		t.Fatalf("expected no notification for an ignored login, got %d", calls)
	}

	anon, _ := newTestContext(t)
	anon.Login(ctx, domain.User{ID: "u2"}, "")
	if anon.State() != StateAnonymous {
		t.Fatalf("expected anonymous context to stay anonymous")
	}
}

// flakyKV acepta las primeras okWrites llamadas a SetMany y luego falla.
type flakyKV struct {
	storage.KV
	okWrites int
	writes   int
}

func (f *flakyKV) SetMany(ctx context.Context, entries map[string]string) error {
	f.writes++
	if f.writes > f.okWrites {
		return errors.New("disk full")
	}
	return f.KV.SetMany(ctx, entries)
}

func TestContext_FailedWriteDoesNotRestoreOlderSession(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{KV: storage.NewMemoryKV(), okWrites: 1}
	store := session.NewStore(kv, zap.NewNop())
	c := NewContext(ctx, store, zap.NewNop())

	c.Login(ctx, domain.User{ID: "u1", Name: "Alice"}, "token-a")
	c.Login(ctx, domain.User{ID: "u2", Name: "Bob"}, "token-b")

	sess, ok := c.Current()
	if !ok || sess.User.ID != "u2" {
		t.Fatalf("expected Bob in memory, got %+v", sess)
	}

	restarted := NewContext(ctx, store, zap.NewNop())
	if got, ok := restarted.Current(); ok {
		t.Fatalf("expected no session after restart, got %+v", got)
	}
}
