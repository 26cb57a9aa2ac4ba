package auth

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// SessionStore es la persistencia que usa Context; session.Store la implementa.
type SessionStore interface {
	Read(ctx context.Context) (domain.Session, bool)
	Write(ctx context.Context, s domain.Session) error
	Clear(ctx context.Context) error
}

// Listener recibe la sesion nueva tras cada transicion.
// authenticated es false despues de un logout.
type Listener func(s domain.Session, authenticated bool)

// Context es la unica fuente de verdad sobre quien esta logueado.
// Se inyecta en cada consumidor; no hay estado global.
type Context struct {
	store  SessionStore
	logger *zap.Logger

	// transition serializa login/logout junto con la notificacion.
	transition sync.Mutex

	mu        sync.RWMutex
	current   domain.Session
	listeners []*subscription
}

type subscription struct {
	fn Listener
}

// NewContext toma el estado inicial del store: autenticado si habia una sesion valida.
func NewContext(ctx context.Context, store SessionStore, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Context{store: store, logger: logger}
	if sess, ok := store.Read(ctx); ok {
		c.current = sess
	}
	return c
}

func (c *Context) Current() (domain.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.current.Valid()
}

func (c *Context) State() State {
	if _, ok := c.Current(); ok {
		return StateAuthenticated
	}
	return StateAnonymous
}

// Token devuelve el bearer token actual o "" si no hay sesion.
func (c *Context) Token() string {
	sess, _ := c.Current()
	return sess.Token
}

// Login nunca falla. Un error de persistencia se registra y el estado en memoria
// cambia igual; en ese caso se borra lo persistido para que un reinicio no
// restaure una sesion anterior.
// Un par sin token o sin id de usuario no forma sesion: se ignora y se
// conserva el estado actual, sin notificar.
func (c *Context) Login(ctx context.Context, user domain.User, token string) {
	sess := domain.Session{User: user, Token: token}
	if !sess.Valid() {
		c.logger.Warn("login without user id or token ignored",
			zap.Bool("has_user_id", user.ID != ""),
			zap.Bool("has_token", token != ""),
		)
		return
	}

	c.transition.Lock()
	defer c.transition.Unlock()

	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()

	if err := c.store.Write(ctx, sess); err != nil {
		c.logger.Warn("persist session failed", zap.Error(err), zap.String("user_id", user.ID))
		if err := c.store.Clear(ctx); err != nil {
			c.logger.Warn("clear stale session failed", zap.Error(err))
		}
	}
	c.notify(sess, true)
}

// Logout nunca falla y es idempotente.
func (c *Context) Logout(ctx context.Context) {
	c.transition.Lock()
	defer c.transition.Unlock()

	c.mu.Lock()
	c.current = domain.Session{}
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("clear session failed", zap.Error(err))
	}
	c.notify(domain.Session{}, false)
}

// Subscribe registra fn y devuelve la funcion para darse de baja.
// fn no debe llamar a Login ni a Logout.
func (c *Context) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscription{fn: fn}
	c.mu.Lock()
	c.listeners = append(c.listeners, sub)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.listeners {
				if s == sub {
					c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Context) notify(sess domain.Session, authenticated bool) {
	c.mu.RLock()
	listeners := make([]*subscription, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, l := range listeners {
		l.fn(sess, authenticated)
	}
}
