package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/johnquangdev/minutes360/pkg/config"
)

func TestExtractJSON(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```":       `{"a":1}`,
		"```\n{\"a\":1}\n```":           `{"a":1}`,
		"Here you go: {\"a\":1} thanks": `{"a":1}`,
		`{"a":1}`:                       `{"a":1}`,
	}
	for in, want := range tests {
		if got := extractJSON(in); got != want {
			t.Fatalf("extractJSON(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGroqClient_Summarize(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer g-key" {
			t.Fatalf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if req.Model != "test-model" || !strings.Contains(req.Messages[0].Content, "we agreed") {
			t.Fatalf("unexpected request %+v", req)
		}
		content := "```json\n{\"summary\":{\"key_discussion_points\":[\"Launch\"],\"decisions_made\":[\"Ship\"]}}\n```"
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []interface{}{map[string]interface{}{"message": map[string]string{"content": content}}},
		})
	}))
	defer ts.Close()

	g := NewGroqClient(&config.GroqConfig{APIKey: "g-key", BaseURL: ts.URL, Model: "test-model"}, 0, nil)
	sections, err := g.Summarize(context.Background(), "we agreed to ship")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sections.KeyDiscussionPoints != "Launch" || sections.DecisionsMade != "Ship" {
		t.Fatalf("unexpected sections %+v", sections)
	}
}

func TestGroqClient_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	g := NewGroqClient(&config.GroqConfig{APIKey: "g-key", BaseURL: ts.URL}, 0, nil)
	if _, err := g.ExtractTasks(context.Background(), "notes"); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}
