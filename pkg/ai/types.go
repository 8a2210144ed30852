package ai

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ProgressFunc receives the bytes sent so far and the total request size
type ProgressFunc func(sent, total int64)

// TranscriptionResult is the text and optional duration returned for one media file
type TranscriptionResult struct {
	Text            string
	DurationSeconds *float64
}

// NoTranscriptText replaces an empty transcription
const NoTranscriptText = "No transcript returned."

// flexText decodes a JSON string or a list of strings; lists are joined with newlines
type flexText string

func (f *flexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexText(s)
	case '[':
		var items []interface{}
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			switch v := item.(type) {
			case string:
				lines = append(lines, v)
			case nil:
			default:
				b, _ := json.Marshal(v)
				lines = append(lines, string(b))
			}
		}
		*f = flexText(strings.Join(lines, "\n"))
	default:
		*f = flexText(data)
	}
	return nil
}

// flexFloat decodes a JSON number or numeric string; anything else decodes to nil
type flexFloat struct {
	value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		f.value = &v
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			f.value = &parsed
		}
	}
	return nil
}

// errorBody extracts an "error" or "message" field from a JSON error response, falling back to
// the raw body text
func errorBody(body []byte) string {
	var payload struct {
		Error   interface{} `json:"error"`
		Message string      `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch v := payload.Error.(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]interface{}:
			if msg, ok := v["message"].(string); ok && msg != "" {
				return msg
			}
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}
