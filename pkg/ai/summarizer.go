package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/pkg/config"
)

const summarizationService = "summarization"

// SummarizerClient calls the summarization service's /summarize and /task_extractor endpoints
type SummarizerClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewSummarizerClient creates a summarization client using values from the provided config
func NewSummarizerClient(cfg *config.SummarizationConfig, logger *zap.Logger) *SummarizerClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := 2 * time.Minute
	base := ""
	if cfg != nil {
		base = cfg.BaseURL
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}
	return &SummarizerClient{
		baseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type textRequest struct {
	Text string `json:"text"`
}

// Summarize returns the four summary sections for a transcript
func (c *SummarizerClient) Summarize(ctx context.Context, transcript string) (entities.SummarySections, error) {
	body, err := c.post(ctx, "/summarize", transcript)
	if err != nil {
		return entities.SummarySections{}, err
	}
	sections, err := parseSummary(body)
	if err != nil {
		return entities.SummarySections{}, errors.ErrRemoteService(summarizationService, http.StatusOK, string(body), err)
	}
	return sections, nil
}

// ExtractTasks returns the action items found in text
func (c *SummarizerClient) ExtractTasks(ctx context.Context, text string) ([]entities.Task, error) {
	body, err := c.post(ctx, "/task_extractor", text)
	if err != nil {
		return nil, err
	}
	tasks, err := parseTasks(body)
	if err != nil {
		return nil, errors.ErrRemoteService(summarizationService, http.StatusOK, string(body), err)
	}
	return tasks, nil
}

func (c *SummarizerClient) post(ctx context.Context, path, text string) ([]byte, error) {
	b, err := json.Marshal(textRequest{Text: text})
	if err != nil {
		return nil, errors.ErrInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, errors.ErrInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Summarization request failed", zap.String("path", path), zap.Error(err))
		return nil, errors.ErrRemoteService(summarizationService, 0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ErrRemoteService(summarizationService, resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Summarization service returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, errors.ErrRemoteService(summarizationService, resp.StatusCode, errorBody(body), nil)
	}
	return body, nil
}

// summarySections is the nested {summary:{...}} shape; the same field names are also
// accepted at the top level
type summarySections struct {
	KeyDiscussionPoints flexText `json:"key_discussion_points"`
	DecisionsMade       flexText `json:"decisions_made"`
	ActionItems         flexText `json:"action_items"`
	PendingQuestions    flexText `json:"pending_questions"`
}

func (s summarySections) toEntity() entities.SummarySections {
	return entities.SummarySections{
		KeyDiscussionPoints: string(s.KeyDiscussionPoints),
		DecisionsMade:       string(s.DecisionsMade),
		ActionItems:         string(s.ActionItems),
		PendingQuestions:    string(s.PendingQuestions),
	}
}

type summaryResponse struct {
	summarySections
	Summary   json.RawMessage `json:"summary"`
	Text      flexText        `json:"text"`
	KeyPoints flexText        `json:"key_points"`
	// camelCase variant seen from older deployments
	KeyPointsAlt flexText `json:"keyPoints"`
}

// parseSummary decodes either {summary:{sections}} or the flat {summary|text, key_points} shape.
// In the flat shape the summary text and key points become the key discussion points.
func parseSummary(body []byte) (entities.SummarySections, error) {
	var resp summaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entities.SummarySections{}, fmt.Errorf("failed to decode summary: %w", err)
	}

	raw := bytes.TrimSpace(resp.Summary)
	if len(raw) > 0 && raw[0] == '{' {
		var nested summarySections
		if err := json.Unmarshal(raw, &nested); err != nil {
			return entities.SummarySections{}, fmt.Errorf("failed to decode summary sections: %w", err)
		}
		return nested.toEntity(), nil
	}

	sections := resp.summarySections.toEntity()
	if sections != (entities.SummarySections{}) {
		return sections, nil
	}

	var text flexText
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &text); err != nil {
			return entities.SummarySections{}, fmt.Errorf("failed to decode summary text: %w", err)
		}
	}
	if text == "" {
		text = resp.Text
	}
	keyPoints := resp.KeyPoints
	if keyPoints == "" {
		keyPoints = resp.KeyPointsAlt
	}

	var parts []string
	for _, p := range []flexText{text, keyPoints} {
		if strings.TrimSpace(string(p)) != "" {
			parts = append(parts, string(p))
		}
	}
	return entities.SummarySections{KeyDiscussionPoints: strings.Join(parts, "\n")}, nil
}

type remoteTask struct {
	Assignee    string   `json:"assignee"`
	Task        string   `json:"task"`
	Description string   `json:"description"`
	DueDate     flexText `json:"due_date"`
	Priority    flexText `json:"priority"`
}

type tasksResponse struct {
	Tasks []remoteTask `json:"tasks"`
}

// parseTasks decodes {tasks:[...]} and normalizes every task
func parseTasks(body []byte) ([]entities.Task, error) {
	var resp tasksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]entities.Task, 0, len(resp.Tasks))
	for _, rt := range resp.Tasks {
		description := rt.Task
		if description == "" {
			description = rt.Description
		}
		// unknown priorities fall back to None
		priority, _ := entities.ParsePriority(string(rt.Priority))
		tasks = append(tasks, entities.NewTask(rt.Assignee, description, string(rt.DueDate), priority))
	}
	return tasks, nil
}
