package handler

import (
	stdErrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
)

// AccessTokenCookie is the cookie carrying the API session token
const AccessTokenCookie = "access_token"

// ExtractToken extracts the authentication token from the request
// It checks both the Authorization header and cookies
func ExtractToken(r *http.Request) string {
	// Try Authorization header first
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}

	// Try cookie as fallback
	cookie, err := r.Cookie(AccessTokenCookie)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// SetCookie sets an HTTP cookie with common security settings
func SetCookie(c echo.Context, name, value string, maxAge int, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// DeleteCookie deletes an HTTP cookie by setting MaxAge to -1
func DeleteCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// currentUser returns the user stored by the auth middleware
func currentUser(c echo.Context) (*entities.User, error) {
	user, ok := c.Get("user").(*entities.User)
	if !ok || user == nil {
		return nil, errors.ErrUnauthenticated()
	}
	return user, nil
}

// pathIndex parses a non-negative integer path parameter
func pathIndex(c echo.Context, name string) (int, error) {
	idx, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errors.ErrValidation(name + " must be an integer")
	}
	return idx, nil
}

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code           interface{}       `json:"code,omitempty"`
	Message        string            `json:"message,omitempty"`
	Info           string            `json:"info,omitempty"`
	Details        map[string]string `json:"details,omitempty"`
	UpstreamStatus int               `json:"upstream_status,omitempty"`
	UpstreamBody   string            `json:"upstream_body,omitempty"`
	Data           interface{}       `json:"data,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	return handleErrorWithData(logger, c, err, nil)
}

// handleErrorWithData writes an error envelope that still carries a partial result,
// used when a stage failure leaves usable output behind
func handleErrorWithData(logger *zap.Logger, c echo.Context, err error, data interface{}) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
			Details: appErr.Details,
			Data:    data,
		}
		if remote, ok := errors.AsRemote(err); ok {
			body.UpstreamStatus = remote.UpstreamStatus
			body.UpstreamBody = remote.UpstreamBody
		}

		status := appErr.HTTPCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return c.JSON(status, body)
	}

	var httpErr *echo.HTTPError
	if stdErrors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, errs{
			Code:    errors.ErrorCode_INVALID_PAYLOAD,
			Message: http.StatusText(httpErr.Code),
			Info:    err.Error(),
		})
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}
