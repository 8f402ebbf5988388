package auth

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/threadswap/storefront/internal/api"
)

// Poster is the part of *api.Client the auth endpoints use.
type Poster interface {
	Post(ctx context.Context, path string, body, out any) error
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"eqfield=Password"`
}

type authResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Service signs the session in against the backend.
type Service struct {
	api     Poster
	session *Session
}

func NewService(p Poster, s *Session) *Service {
	return &Service{api: p, session: s}
}

var validate = validator.New()

func (r LoginRequest) Validate() error { return credentialsError(validate.Struct(r)) }
func (r RegisterRequest) Validate() error { return credentialsError(validate.Struct(r)) }

func credentialsError(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &api.ValidationError{Msg: err.Error()}
	}
	switch fe := verrs[0]; fe.StructField() {
	case "Email":
		return &api.ValidationError{Field: "email", Msg: "enter a valid email address"}
	case "Password":
		if fe.Tag() == "min" {
			return &api.ValidationError{Field: "password", Msg: "password must be at least 8 characters"}
		}
		return &api.ValidationError{Field: "password", Msg: "password is required"}
	case "PasswordConfirm":
		return &api.ValidationError{Field: "password_confirm", Msg: "passwords do not match"}
	}
	return &api.ValidationError{Msg: err.Error()}
}

// Login calls POST /auth/login and adopts the returned token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (User, error) {
	if err := req.Validate(); err != nil {
		return User{}, err
	}
	return s.signIn(ctx, "/auth/login", req)
}

// Register calls POST /auth/register and adopts the returned token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	if err := req.Validate(); err != nil {
		return User{}, err
	}
	body := LoginRequest{Email: req.Email, Password: req.Password}
	return s.signIn(ctx, "/auth/register", body)
}

func (s *Service) signIn(ctx context.Context, path string, body LoginRequest) (User, error) {
	var res authResponse
	if err := s.api.Post(ctx, path, body, &res); err != nil {
		return User{}, err
	}
	if err := s.session.SignIn(ctx, res.Token, res.User); err != nil {
		return User{}, err
	}
	slog.Info("signed in", "user_id", res.User.ID)
	return res.User, nil
}
