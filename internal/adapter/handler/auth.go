package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/errors"
	authDTO "github.com/johnquangdev/minutes360/internal/adapter/dto/auth"
	"github.com/johnquangdev/minutes360/internal/adapter/presenter"
	"github.com/johnquangdev/minutes360/internal/usecase/auth"
)

// AuthService is the part of the auth usecase the handler needs
type AuthService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*auth.AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*auth.AuthResponse, error)
	SignOut(ctx context.Context, token string) error
}

// Auth handles authentication HTTP requests
type Auth struct {
	authService  AuthService
	secureCookie bool
	logger       *zap.Logger
}

// NewAuth creates a new auth handler
func NewAuth(authService AuthService, secureCookie bool, logger *zap.Logger) *Auth {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auth{
		authService:  authService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// SignUp creates an account and starts a session
// @Summary      Sign up
// @Description  Creates an account with email and password and returns a session token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      auth.SignUpRequest  true  "Sign-up request"
// @Success      200      {object}  auth.AuthResponse
// @Failure      400      {object}  common.ErrorResponse  "Invalid email or weak password"
// @Failure      409      {object}  common.ErrorResponse  "User already exists"
// @Failure      502      {object}  common.ErrorResponse  "Authentication provider failed"
// @Router       /auth/signup [post]
func (h *Auth) SignUp(c echo.Context) error {
	var req authDTO.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, err)
	}

	resp, err := h.authService.SignUp(c.Request().Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	SetCookie(c, AccessTokenCookie, resp.AccessToken, int(resp.ExpiresIn), h.secureCookie)
	return HandleSuccess(h.logger, c, presenter.ToAuthResponse(resp))
}

// SignIn starts a session for an existing account
// @Summary      Sign in
// @Description  Signs in with email and password and returns a session token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      auth.SignInRequest  true  "Sign-in request"
// @Success      200      {object}  auth.AuthResponse
// @Failure      400      {object}  common.ErrorResponse  "Invalid request"
// @Failure      401      {object}  common.ErrorResponse  "Invalid email or password"
// @Router       /auth/signin [post]
func (h *Auth) SignIn(c echo.Context) error {
	var req authDTO.SignInRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, err)
	}

	resp, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	SetCookie(c, AccessTokenCookie, resp.AccessToken, int(resp.ExpiresIn), h.secureCookie)
	return HandleSuccess(h.logger, c, presenter.ToAuthResponse(resp))
}

// SignOut revokes the current session token
// @Summary      Sign out
// @Description  Revokes the session token and drops the pipeline session
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.MessageResponse
// @Failure      401  {object}  common.ErrorResponse  "User not authenticated"
// @Router       /auth/signout [post]
func (h *Auth) SignOut(c echo.Context) error {
	token := ExtractToken(c.Request())
	if token == "" {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	if err := h.authService.SignOut(c.Request().Context(), token); err != nil {
		return HandleError(h.logger, c, err)
	}

	DeleteCookie(c, AccessTokenCookie)
	return HandleSuccess(h.logger, c, map[string]string{"message": "Signed out"})
}

// Me returns the authenticated user
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  auth.UserResponse
// @Failure      401  {object}  common.ErrorResponse  "User not authenticated"
// @Router       /auth/me [get]
func (h *Auth) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToUserResponse(user))
}
