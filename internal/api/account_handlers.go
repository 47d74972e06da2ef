package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mybglist/mybglist-server/internal/domain"
	"github.com/mybglist/mybglist-server/internal/service"
)

func (s *Server) registerAccountRoutes() {
	var limited huma.Middlewares
	if s.limiter != nil {
		limited = huma.Middlewares{rateLimitMiddleware(s.api, s.limiter, s.logger)}
	}

	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/account/register",
		Summary:       "Register",
		Description:   "Creates an account without roles",
		Tags:          []string{"Account"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   limited,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/account/login",
		Summary:     "Login",
		Description: "Exchanges credentials for a PASETO access token",
		Tags:        []string{"Account"},
		Middlewares: limited,
	}, s.handleLogin)
}

// RegisterInput wraps the registration body for Huma.
type RegisterInput struct {
	Body service.RegisterRequest
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body *domain.User
}

// LoginInput wraps the login body for Huma.
type LoginInput struct {
	Body service.LoginRequest
}

// LoginOutput wraps the token response for Huma.
type LoginOutput struct {
	Body *service.LoginResponse
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*UserOutput, error) {
	user, err := s.services.Account.Register(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	resp, err := s.services.Account.Login(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &LoginOutput{Body: resp}, nil
}
