package service

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

// CartAPI son los endpoints del carrito; todos requieren bearer token.
type CartAPI interface {
	AddToCart(ctx context.Context, token, productID string) error
	CartProducts(ctx context.Context, token, userID string) ([]domain.Product, error)
	RemoveFromCart(ctx context.Context, token, productID string) error
}

// CartService opera el carrito del usuario logueado.
type CartService struct {
	logger  *zap.Logger
	api     CartAPI
	session SessionManager
}

func NewCartService(logger *zap.Logger, cartAPI CartAPI, session SessionManager) *CartService {
	return &CartService{
		logger:  logger,
		api:     cartAPI,
		session: session,
	}
}

func (s *CartService) Add(ctx context.Context, productID string) error {
	sess, err := s.requireSession()
	if err != nil {
		return err
	}
	if err := requireProductID(productID); err != nil {
		return err
	}
	if err := s.api.AddToCart(ctx, sess.Token, productID); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}

func (s *CartService) Items(ctx context.Context) ([]domain.Product, error) {
	sess, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	items, err := s.api.CartProducts(ctx, sess.Token, sess.User.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	return items, nil
}

func (s *CartService) Remove(ctx context.Context, productID string) error {
	sess, err := s.requireSession()
	if err != nil {
		return err
	}
	if err := requireProductID(productID); err != nil {
		return err
	}
	if err := s.api.RemoveFromCart(ctx, sess.Token, productID); err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}
	return nil
}

func (s *CartService) requireSession() (domain.Session, error) {
	sess, ok := s.session.Current()
	if !ok {
		return domain.Session{}, domain.ErrSessionMissing
	}
	return sess, nil
}

func requireProductID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Err: validation.Errors{"productId": errBlank}}
	}
	return nil
}
