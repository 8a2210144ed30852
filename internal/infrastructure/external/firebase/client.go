package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/pkg/config"
)

// Client calls the Firebase Identity Toolkit REST API for email/password accounts
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates an Identity Toolkit client using values from the provided config
func NewClient(cfg *config.FirebaseConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type updateRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IDToken     string `json:"idToken"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp creates an account and sets its display name
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*entities.User, error) {
	var account accountResponse
	err := c.call(ctx, "accounts:signUp", credentialsRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &account)
	if err != nil {
		return nil, err
	}

	if displayName != "" {
		var updated accountResponse
		err := c.call(ctx, "accounts:update", updateRequest{
			IDToken:     account.IDToken,
			DisplayName: displayName,
		}, &updated)
		if err != nil {
			// the account exists at this point; keep it and fall back to the derived name
			c.logger.Warn("Failed to set display name", zap.String("user_id", account.LocalID), zap.Error(err))
			displayName = ""
		}
	}

	c.logger.Info("Account created", zap.String("user_id", account.LocalID))
	return entities.NewUser(account.LocalID, account.Email, displayName), nil
}

// SignIn verifies an email and password
func (c *Client) SignIn(ctx context.Context, email, password string) (*entities.User, error) {
	var account accountResponse
	err := c.call(ctx, "accounts:signInWithPassword", credentialsRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &account)
	if err != nil {
		return nil, err
	}
	return entities.NewUser(account.LocalID, account.Email, account.DisplayName), nil
}

func (c *Client) call(ctx context.Context, method string, payload, out interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return errors.ErrInternal(err)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", c.baseURL, method, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return errors.ErrInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		var cause error = err
		if ue, ok := err.(*url.Error); ok {
			cause = ue.Err
		}
		return errors.ErrAuthProviderFailed(fmt.Errorf("%s: %w", method, cause))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.ErrAuthProviderFailed(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		var er errorResponse
		_ = json.Unmarshal(body, &er)
		return mapError(method, resp.StatusCode, er.Error.Message, payload)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.ErrAuthProviderFailed(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// mapError converts Identity Toolkit error messages such as "EMAIL_EXISTS" or
// "INVALID_PASSWORD : ..." into application errors
func mapError(method string, status int, message string, payload interface{}) error {
	code := strings.TrimSpace(strings.SplitN(message, ":", 2)[0])
	switch code {
	case "EMAIL_EXISTS":
		var email string
		if req, ok := payload.(credentialsRequest); ok {
			email = req.Email
		}
		return errors.ErrUserAlreadyExists(email)
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return errors.ErrInvalidCredentials()
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return errors.ErrValidation("invalid email address")
	case "WEAK_PASSWORD", "MISSING_PASSWORD":
		return errors.ErrValidation("password should be at least 6 characters")
	}
	return errors.ErrAuthProviderFailed(errors.ErrRemoteService("firebase", status, message, nil)).
		WithDetail("method", method)
}
