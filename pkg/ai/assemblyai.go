package ai

import (
	"bytes"
	"context"
	"fmt"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/pkg/config"
)

const assemblyService = "assemblyai"

// transcriptAPI is the part of the AssemblyAI SDK the transcriber needs
type transcriptAPI interface {
	upload(ctx context.Context, data []byte) (string, error)
	submit(ctx context.Context, audioURL string) (aai.Transcript, error)
	get(ctx context.Context, id string) (aai.Transcript, error)
}

type sdkTranscripts struct {
	client *aai.Client
}

func (s sdkTranscripts) upload(ctx context.Context, data []byte) (string, error) {
	return s.client.Upload(ctx, bytes.NewReader(data))
}

func (s sdkTranscripts) submit(ctx context.Context, audioURL string) (aai.Transcript, error) {
	params := &aai.TranscriptOptionalParams{
		LanguageDetection: aai.Bool(true),
	}
	return s.client.Transcripts.SubmitFromURL(ctx, audioURL, params)
}

func (s sdkTranscripts) get(ctx context.Context, id string) (aai.Transcript, error) {
	return s.client.Transcripts.Get(ctx, id)
}

// AssemblyAIClient transcribes media with the AssemblyAI SDK, polling until the transcript is ready
type AssemblyAIClient struct {
	api          transcriptAPI
	pollInterval time.Duration
	maxWait      time.Duration
	logger       *zap.Logger
}

// NewAssemblyAIClient creates an AssemblyAI transcriber using the provided config
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig, logger *zap.Logger) *AssemblyAIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &AssemblyAIClient{
		api:          sdkTranscripts{client: aai.NewClient(cfg.APIKey)},
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
		logger:       logger,
	}
	if c.pollInterval <= 0 {
		c.pollInterval = 3 * time.Second
	}
	if c.maxWait <= 0 {
		c.maxWait = 15 * time.Minute
	}
	return c
}

// Transcribe uploads the file, submits a transcript job and waits for it to finish.
// Progress covers the upload step only.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, file *entities.UploadedFile, progress ProgressFunc) (*TranscriptionResult, error) {
	if file == nil {
		return nil, errors.ErrValidation("no file selected")
	}

	total := file.Size()
	if progress != nil {
		progress(0, total)
	}

	c.logger.Info("📤 Uploading file to AssemblyAI",
		zap.String("file_name", file.Name),
		zap.Int64("size", total),
	)
	uploadURL, err := c.api.upload(ctx, file.Data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.ErrRemoteService(assemblyService, 0, "", fmt.Errorf("failed to upload to AssemblyAI: %w", err))
	}
	if progress != nil {
		progress(total, total)
	}

	submitted, err := c.api.submit(ctx, uploadURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.ErrRemoteService(assemblyService, 0, "", fmt.Errorf("failed to submit transcript: %w", err))
	}
	if submitted.ID == nil {
		return nil, errors.ErrRemoteService(assemblyService, 0, "", fmt.Errorf("transcript id missing from response"))
	}
	transcriptID := *submitted.ID

	c.logger.Info("🎙️ Transcription job submitted",
		zap.String("transcript_id", transcriptID),
		zap.String("status", string(submitted.Status)),
	)

	transcript, err := c.waitForTranscript(ctx, transcriptID)
	if err != nil {
		return nil, err
	}

	result := &TranscriptionResult{Text: NoTranscriptText}
	if transcript.Text != nil && *transcript.Text != "" {
		result.Text = *transcript.Text
	}
	if transcript.AudioDuration != nil {
		d := float64(*transcript.AudioDuration)
		result.DurationSeconds = &d
	}

	c.logger.Info("✅ Transcript completed",
		zap.String("transcript_id", transcriptID),
		zap.Int("text_length", len(result.Text)),
	)
	return result, nil
}

// waitForTranscript polls with exponential backoff until the transcript completes or fails
func (c *AssemblyAIClient) waitForTranscript(ctx context.Context, id string) (aai.Transcript, error) {
	var transcript aai.Transcript

	poll := func() error {
		t, err := c.api.get(ctx, id)
		if err != nil {
			// transient API errors are retried
			return err
		}
		switch t.Status {
		case aai.TranscriptStatusCompleted:
			transcript = t
			return nil
		case aai.TranscriptStatusError:
			msg := "AssemblyAI transcription failed"
			if t.Error != nil {
				msg = *t.Error
			}
			return backoff.Permanent(errors.ErrRemoteService(assemblyService, 0, msg, nil))
		default:
			return fmt.Errorf("transcript %s still %s", id, t.Status)
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.pollInterval
	bo.MaxInterval = 4 * c.pollInterval
	bo.MaxElapsedTime = c.maxWait

	if err := backoff.Retry(poll, backoff.WithContext(bo, ctx)); err != nil {
		if ctx.Err() != nil {
			return transcript, ctx.Err()
		}
		if _, ok := errors.AsRemote(err); ok {
			return transcript, err
		}
		return transcript, errors.ErrRemoteService(assemblyService, 0, "", fmt.Errorf("transcript %s not ready: %w", id, err))
	}
	return transcript, nil
}
