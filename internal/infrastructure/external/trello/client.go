package trello

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
)

const serviceName = "trello"

// CredentialSource supplies the key and token used for every request
type CredentialSource interface {
	Get() entities.Credentials
}

// Client is a thin wrapper over the Trello REST API.
// Requests are never retried; CreateCard is not idempotent.
type Client struct {
	baseURL string
	creds   CredentialSource
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a Trello client. baseURL includes the API version, e.g. https://api.trello.com/1
func NewClient(baseURL string, creds CredentialSource, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// cardPayload is the body of POST /cards
type cardPayload struct {
	ListID      string `json:"idList"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	Key         string `json:"key"`
	Token       string `json:"token"`
}

// ListBoards returns the boards of the token's owner
func (c *Client) ListBoards(ctx context.Context) ([]entities.Board, error) {
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}

	var boards []entities.Board
	if err := c.get(ctx, "/members/me/boards", creds, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// ListLists returns the lists of a board
func (c *Client) ListLists(ctx context.Context, boardID string) ([]entities.List, error) {
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(boardID) == "" {
		return nil, errors.ErrValidation("board id is required")
	}

	var lists []entities.List
	if err := c.get(ctx, "/boards/"+url.PathEscape(boardID)+"/lists", creds, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// ListMembers returns the members of a board
func (c *Client) ListMembers(ctx context.Context, boardID string) ([]entities.Member, error) {
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(boardID) == "" {
		return nil, errors.ErrValidation("board id is required")
	}

	var members []entities.Member
	if err := c.get(ctx, "/boards/"+url.PathEscape(boardID)+"/members", creds, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// CreateCard creates a card in the given list
func (c *Client) CreateCard(ctx context.Context, card entities.CardRequest) (*entities.Card, error) {
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(card.ListID) == "" {
		return nil, errors.ErrValidation("list id is required")
	}
	if strings.TrimSpace(card.Name) == "" {
		return nil, errors.ErrValidation("card name is required")
	}

	var created entities.Card
	err = c.post(ctx, "/cards", cardPayload{
		ListID:      card.ListID,
		Name:        card.Name,
		Description: card.Description,
		Key:         creds.APIKey,
		Token:       creds.Token,
	}, &created)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Trello card created",
		zap.String("card_id", created.ID),
		zap.String("list_id", card.ListID),
	)
	return &created, nil
}

// checklistPayload is the body of POST /cards/{id}/checklists
type checklistPayload struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Token string `json:"token"`
}

// checkItemPayload is the body of POST /checklists/{id}/checkItems
type checkItemPayload struct {
	Name    string `json:"name"`
	Pos     string `json:"pos"`
	Checked bool   `json:"checked"`
	Key     string `json:"key"`
	Token   string `json:"token"`
}

// CreateChecklist adds an empty checklist to a card
func (c *Client) CreateChecklist(ctx context.Context, cardID, name string) (*entities.Checklist, error) {
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cardID) == "" {
		return nil, errors.ErrValidation("card id is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.ErrValidation("checklist name is required")
	}

	var checklist entities.Checklist
	path := "/cards/" + url.PathEscape(cardID) + "/checklists"
	if err := c.post(ctx, path, checklistPayload{Name: name, Key: creds.APIKey, Token: creds.Token}, &checklist); err != nil {
		return nil, err
	}

	c.logger.Info("Trello checklist created",
		zap.String("checklist_id", checklist.ID),
		zap.String("card_id", cardID),
	)
	return &checklist, nil
}

// AddCheckItem appends an unchecked item to the bottom of a checklist
func (c *Client) AddCheckItem(ctx context.Context, checklistID, name string) (*entities.CheckItem, error) {
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(checklistID) == "" {
		return nil, errors.ErrValidation("checklist id is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.ErrValidation("check item name is required")
	}

	var item entities.CheckItem
	path := "/checklists/" + url.PathEscape(checklistID) + "/checkItems"
	payload := checkItemPayload{Name: name, Pos: "bottom", Key: creds.APIKey, Token: creds.Token}
	if err := c.post(ctx, path, payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) credentials() (entities.Credentials, error) {
	var creds entities.Credentials
	if c.creds != nil {
		creds = c.creds.Get()
	}
	if !creds.IsComplete() {
		return creds, errors.ErrConfiguration("Trello API key and token are required")
	}
	return creds, nil
}

func (c *Client) get(ctx context.Context, path string, creds entities.Credentials, out interface{}) error {
	q := url.Values{}
	q.Set("key", creds.APIKey)
	q.Set("token", creds.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return errors.ErrInternal(err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

// post sends payload as JSON; credentials travel inside the payload, never in the URL
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return errors.ErrInternal(fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return errors.ErrInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	// path only; the query string carries credentials
	path := req.URL.Path

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Trello request failed",
			zap.String("method", req.Method),
			zap.String("path", path),
			zap.Error(stripURL(err)),
		)
		return errors.ErrRemoteService(serviceName, 0, "", stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.ErrRemoteService(serviceName, resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Trello returned error status",
			zap.String("method", req.Method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return errors.ErrRemoteService(serviceName, resp.StatusCode, string(body), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.ErrRemoteService(serviceName, resp.StatusCode, string(body), fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// stripURL drops the request URL from transport errors so the token never reaches logs
func stripURL(err error) error {
	if ue, ok := err.(*url.Error); ok {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
