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

const groqService = "groq"

const summaryPrompt = `You summarize meeting transcripts. Respond with JSON only, no prose, in exactly this shape:
{"summary":{"key_discussion_points":["..."],"decisions_made":["..."],"action_items":["..."],"pending_questions":["..."]}}
Use an empty list for a section with nothing to report.

Transcript:
%s`

const taskPrompt = `Extract the action items from the meeting notes below. Respond with JSON only, no prose, in exactly this shape:
{"tasks":[{"assignee":"name or empty","task":"what to do","due_date":"date or N/A","priority":"High|Medium|Low|No Priority"}]}

Notes:
%s`

// GroqClient is a minimal client for Groq chat completions, used as a summarizer and task extractor
type GroqClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewGroqClient creates a Groq client using values from the provided config
func NewGroqClient(cfg *config.GroqConfig, timeout time.Duration, logger *zap.Logger) *GroqClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	base := "https://api.groq.com"
	model := "llama-3.1-70b-versatile"
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
		if cfg.BaseURL != "" {
			base = cfg.BaseURL
		}
		if cfg.Model != "" {
			model = cfg.Model
		}
	}

	return &GroqClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(base, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatMessage is one message of a chat completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize asks the model for the four summary sections of a transcript
func (g *GroqClient) Summarize(ctx context.Context, transcript string) (entities.SummarySections, error) {
	content, err := g.complete(ctx, fmt.Sprintf(summaryPrompt, transcript))
	if err != nil {
		return entities.SummarySections{}, err
	}
	sections, err := parseSummary([]byte(extractJSON(content)))
	if err != nil {
		return entities.SummarySections{}, errors.ErrRemoteService(groqService, http.StatusOK, content, err)
	}
	return sections, nil
}

// ExtractTasks asks the model for the action items found in text
func (g *GroqClient) ExtractTasks(ctx context.Context, text string) ([]entities.Task, error) {
	content, err := g.complete(ctx, fmt.Sprintf(taskPrompt, text))
	if err != nil {
		return nil, err
	}
	tasks, err := parseTasks([]byte(extractJSON(content)))
	if err != nil {
		return nil, errors.ErrRemoteService(groqService, http.StatusOK, content, err)
	}
	return tasks, nil
}

// complete sends one user message and returns the assistant content
func (g *GroqClient) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := ChatRequest{
		Model:       g.model,
		Messages:    []ChatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
		MaxTokens:   8000,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.ErrInternal(err)
	}

	endpoint := g.baseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", errors.ErrInternal(err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("Groq request failed", zap.Error(err))
		return "", errors.ErrRemoteService(groqService, 0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.ErrRemoteService(groqService, resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		g.logger.Warn("Groq returned error status", zap.Int("status", resp.StatusCode))
		return "", errors.ErrRemoteService(groqService, resp.StatusCode, errorBody(body), nil)
	}

	var cr ChatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", errors.ErrRemoteService(groqService, resp.StatusCode, string(body), fmt.Errorf("failed to decode response: %w", err))
	}
	if len(cr.Choices) == 0 {
		return "", errors.ErrRemoteService(groqService, resp.StatusCode, string(body), fmt.Errorf("empty response from groq"))
	}
	return cr.Choices[0].Message.Content, nil
}

// extractJSON strips markdown code fences and any prose around the outermost JSON object
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
