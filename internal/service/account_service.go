package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/domain"
)

var (
	ErrLoginRejected    = errors.New("login rejected")
	ErrRegisterRejected = errors.New("registration rejected")
)

// AccountAPI son los endpoints de autenticacion que usa AccountService.
type AccountAPI interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
	Register(ctx context.Context, name, email, password string) (bool, error)
}

// SessionManager es la parte del auth.Context que necesitan los servicios.
type SessionManager interface {
	Login(ctx context.Context, user domain.User, token string)
	Logout(ctx context.Context)
	Current() (domain.Session, bool)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required),
	)
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required),
	)
}

// AccountService coordina login, registro y logout.
type AccountService struct {
	logger  *zap.Logger
	api     AccountAPI
	session SessionManager
}

func NewAccountService(logger *zap.Logger, accountAPI AccountAPI, session SessionManager) *AccountService {
	return &AccountService{
		logger:  logger,
		api:     accountAPI,
		session: session,
	}
}

// Login valida el formulario, autentica contra la API y abre la sesion.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate(in); err != nil {
		return domain.User{}, err
	}

	res, err := s.api.Login(ctx, in.Email, in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("login: %w", err)
	}
	if res.Token == "" || res.User.ID == "" {
		s.logger.Warn("login response without token or user")
		return domain.User{}, ErrLoginRejected
	}

	s.session.Login(ctx, res.User, res.Token)
	return res.User, nil
}

// Register crea la cuenta; no abre sesion.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate(in); err != nil {
		return err
	}

	ok, err := s.api.Register(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if !ok {
		return ErrRegisterRejected
	}
	return nil
}

func (s *AccountService) Logout(ctx context.Context) {
	s.session.Logout(ctx)
}

// Current devuelve la sesion activa.
func (s *AccountService) Current() (domain.Session, bool) {
	return s.session.Current()
}
