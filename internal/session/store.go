package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/storage"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

var ErrInvalidSession = errors.New("session: user and token are both required")

// Store persiste la sesion actual como dos entradas independientes del KV.
type Store struct {
	kv     storage.KV
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Store)

// WithExpiryCheck descarta al leer las sesiones cuyo token es un JWT vencido.
func WithExpiryCheck(now func() time.Time) Option {
	return func(s *Store) {
		if now == nil {
			now = time.Now
		}
		s.now = now
	}
}

func NewStore(kv storage.KV, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{kv: kv, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read nunca falla: cualquier dato ausente o corrupto equivale a no tener sesion.
func (s *Store) Read(ctx context.Context) (domain.Session, bool) {
	token, ok, err := s.kv.Get(ctx, tokenKey)
	if err != nil {
		s.logger.Debug("session token read failed", zap.Error(err))
		return domain.Session{}, false
	}
	if !ok {
		return domain.Session{}, false
	}

	rawUser, ok, err := s.kv.Get(ctx, userKey)
	if err != nil {
		s.logger.Debug("session user read failed", zap.Error(err))
		return domain.Session{}, false
	}
	if !ok {
		return domain.Session{}, false
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logger.Debug("session user malformed", zap.Error(err))
		return domain.Session{}, false
	}

	sess := domain.Session{User: user, Token: token}
	if !sess.Valid() {
		return domain.Session{}, false
	}
	if s.now != nil && tokenExpired(token, s.now()) {
		s.logger.Debug("session token expired", zap.String("user_id", user.ID))
		return domain.Session{}, false
	}
	return sess, true
}

func (s *Store) Write(ctx context.Context, sess domain.Session) error {
	if !sess.Valid() {
		return ErrInvalidSession
	}
	rawUser, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	if err := s.kv.SetMany(ctx, map[string]string{
		tokenKey: sess.Token,
		userKey:  string(rawUser),
	}); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear es idempotente.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, tokenKey, userKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// tokenExpired solo mira el exp de tokens con forma de JWT; la firma no se verifica
// porque el cliente no tiene la clave.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
