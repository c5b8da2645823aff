// Package auth signs users in and up against the backend and hands the
// result to the session store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/validation"
)

// Messages shown to the user when the backend gives no reason.
const (
	MsgLoginFailed  = "Login failed. Please check your credentials."
	MsgSignupFailed = "Signup failed. Please try again."
	MsgServerError  = "Server error. Please try again later."
)

// Error is a failed login or signup. Message is safe to show the user.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var errMissingToken = fmt.Errorf("%w: response has no token", backend.ErrBadResponse)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Backend is the slice of the API client auth needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (backend.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (backend.AuthResult, error)
}

// Session receives the identity after a successful call.
type Session interface {
	Login(ctx context.Context, token string, profile domain.Profile) error
}

type Service struct {
	backend   Backend
	session   Session
	validator *validation.Validator
	log       *slog.Logger
}

func NewService(b Backend, s Session, log *slog.Logger) *Service {
	return &Service{
		backend:   b,
		session:   s,
		validator: validation.New(),
		log:       log,
	}
}

// Login returns *validation.FormError for bad input without calling the
// backend, and *Error for rejected or failed calls.
func (s *Service) Login(ctx context.Context, in LoginInput) (domain.Identity, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Check(in); err != nil {
		return domain.Guest, err
	}

	res, err := s.backend.Login(ctx, in.Email, in.Password)
	if err != nil {
		return domain.Guest, s.fail(ctx, "login", MsgLoginFailed, err)
	}
	return s.establish(ctx, "login", MsgLoginFailed, res, in.Email, "")
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (domain.Identity, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Check(in); err != nil {
		return domain.Guest, err
	}

	res, err := s.backend.Register(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		return domain.Guest, s.fail(ctx, "signup", MsgSignupFailed, err)
	}
	return s.establish(ctx, "signup", MsgSignupFailed, res, in.Email, in.Name)
}

func (s *Service) establish(ctx context.Context, op, fallback string, res backend.AuthResult, email, name string) (domain.Identity, error) {
	if strings.TrimSpace(res.Token) == "" {
		return domain.Guest, s.fail(ctx, op, fallback, errMissingToken)
	}
	profile := profileFrom(res.User, email, name)
	if err := s.session.Login(ctx, res.Token, profile); err != nil {
		s.log.ErrorContext(ctx, op+" could not be saved", slog.String("error", err.Error()))
		return domain.Guest, &Error{Message: MsgServerError, Err: err}
	}
	return domain.Identity{Token: strings.TrimSpace(res.Token), Profile: profile}, nil
}

// fail maps a backend error to the text the user sees: the backend's own
// message when it sent one, fallback for other rejections, and the
// generic server error when the backend could not be reached.
func (s *Service) fail(ctx context.Context, op, fallback string, err error) error {
	s.log.WarnContext(ctx, op+" failed", slog.String("error", err.Error()))

	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return &Error{Message: apiErr.Message, Err: err}
	case errors.Is(err, backend.ErrBadResponse):
		return &Error{Message: fallback, Err: err}
	default:
		return &Error{Message: MsgServerError, Err: err}
	}
}

// profileFrom fills what the backend left out: the email typed in the
// form, the name from the email's local part, the customer role.
func profileFrom(user *domain.Profile, email, name string) domain.Profile {
	var p domain.Profile
	if user != nil {
		p = *user
	}
	if p.Email == "" {
		p.Email = email
	}
	if p.Name == "" {
		p.Name = name
	}
	if p.Name == "" {
		p.Name, _, _ = strings.Cut(p.Email, "@")
	}
	if p.Role == "" {
		p.Role = domain.RoleCustomer
	}
	return p
}
