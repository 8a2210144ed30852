package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/pkg/config"
)

const transcriptionService = "transcription"

// TranscriberClient uploads media to the transcription service and returns its transcript
type TranscriberClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewTranscriberClient creates a transcription client using values from the provided config
func NewTranscriberClient(cfg *config.TranscriptionConfig, logger *zap.Logger) *TranscriberClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := 10 * time.Minute
	base := ""
	if cfg != nil {
		base = cfg.BaseURL
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}
	return &TranscriberClient{
		baseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// transcriptionResponse accepts both {response:{transcription,duration}} and the flat shape
type transcriptionResponse struct {
	Response *struct {
		Transcription flexText  `json:"transcription"`
		Duration      flexFloat `json:"duration"`
	} `json:"response"`
	Transcription flexText  `json:"transcription"`
	Duration      flexFloat `json:"duration"`
}

// Transcribe posts the file as multipart field "file" to /api/video/upload.
// progress, when non-nil, is called as the request body is written.
func (c *TranscriberClient) Transcribe(ctx context.Context, file *entities.UploadedFile, progress ProgressFunc) (*TranscriptionResult, error) {
	if file == nil {
		return nil, errors.ErrValidation("no file selected")
	}

	body, contentType, err := multipartBody(file)
	if err != nil {
		return nil, errors.ErrInternal(fmt.Errorf("failed to build upload body: %w", err))
	}

	total := int64(body.Len())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/video/upload",
		&progressReader{r: body, total: total, onProgress: progress})
	if err != nil {
		return nil, errors.ErrInternal(err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	c.logger.Info("📤 Uploading file for transcription",
		zap.String("file_name", file.Name),
		zap.Int64("size", file.Size()),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.ErrRemoteService(transcriptionService, 0, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.ErrRemoteService(transcriptionService, resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Transcription service returned error status",
			zap.String("file_name", file.Name),
			zap.Int("status", resp.StatusCode),
		)
		return nil, errors.ErrRemoteService(transcriptionService, resp.StatusCode, errorBody(raw), nil)
	}

	var tr transcriptionResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, errors.ErrRemoteService(transcriptionService, resp.StatusCode, string(raw), fmt.Errorf("failed to decode response: %w", err))
	}

	result := &TranscriptionResult{
		Text:            string(tr.Transcription),
		DurationSeconds: tr.Duration.value,
	}
	if tr.Response != nil {
		result.Text = string(tr.Response.Transcription)
		result.DurationSeconds = tr.Response.Duration.value
	}
	if strings.TrimSpace(result.Text) == "" {
		result.Text = NoTranscriptText
	}
	return result, nil
}

func multipartBody(file *entities.UploadedFile) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Name)))
	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// progressReader reports cumulative bytes read; counts only grow
type progressReader struct {
	r          io.Reader
	total      int64
	onProgress ProgressFunc

	mu   sync.Mutex
	sent int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.onProgress != nil {
		p.mu.Lock()
		p.sent += int64(n)
		sent := p.sent
		p.mu.Unlock()
		p.onProgress(sent, p.total)
	}
	return n, err
}
