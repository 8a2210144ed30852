package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/internal/usecase/keyword"
	"github.com/johnquangdev/minutes360/pkg/stagecontext"
)

// TaskSet is the result of task extraction
type TaskSet struct {
	Tasks    []entities.Task `json:"tasks"`
	Keywords []string        `json:"keywords"`
}

// Summarize sends the transcript to the summarizer, stores the summary and appends a
// meeting record to the session history
func (o *Orchestrator) Summarize(ctx context.Context) (*entities.Summary, error) {
	var transcript *entities.Transcript
	prev, err := o.enter(entities.StageSummarizing, func() error {
		if o.transcript == nil {
			return errors.ErrPrecondition("no transcript available, upload a file first")
		}
		transcript = o.transcript.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sctx, cancel := stagecontext.StageBegin(ctx, o.id, string(entities.StageSummarizing), o.timeouts.Summarize)
	defer cancel()

	o.logger.Info("📝 Generating summary", append(stagecontext.Fields(sctx),
		zap.Int("text_length", len(transcript.Text)),
	)...)

	sections, err := o.summarizer.Summarize(sctx, transcript.Text)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastActivity = time.Now()

	if err != nil {
		sumErr := errors.ErrSummarization(err)
		o.fail(prev, sumErr)
		o.logger.Error("❌ Summarization failed", append(stagecontext.Fields(sctx), zap.Error(err))...)
		return nil, sumErr
	}

	summary := entities.NewSummary(sections, transcript.DurationSeconds)
	record := entities.NewMeetingRecord(transcript, summary)
	if err := o.history.Append(record); err != nil {
		appErr := errors.ErrInternal(err)
		o.fail(prev, appErr)
		return nil, appErr
	}

	o.summary = summary
	o.tasks = nil
	o.keywords = nil
	o.stage = entities.StageSummarized

	o.logger.Info("✅ Summary generated", append(stagecontext.Fields(sctx),
		zap.String("record_id", record.ID.String()),
	)...)
	return summary.Clone(), nil
}

// ExtractTasks extracts action items from the summary and computes its keywords.
// A remote failure is not fatal: the stage still advances with no tasks and the
// returned TaskSet is accompanied by a TaskExtractionError.
func (o *Orchestrator) ExtractTasks(ctx context.Context) (*TaskSet, error) {
	var actionItems, keywordSource string
	_, err := o.enter(entities.StageExtractingTasks, func() error {
		if o.summary == nil {
			return errors.ErrPrecondition("no summary available, generate a summary first")
		}
		actionItems = o.summary.ActionItems
		keywordSource = o.summary.KeywordSource()
		return nil
	})
	if err != nil {
		return nil, err
	}

	tctx, cancel := stagecontext.StageBegin(ctx, o.id, string(entities.StageExtractingTasks), o.timeouts.ExtractTasks)
	defer cancel()

	tasks, err := o.summarizer.ExtractTasks(tctx, actionItems)
	keywords := keyword.Extract(keywordSource)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastActivity = time.Now()
	o.keywords = keywords
	o.stage = entities.StageTasksReady

	if err != nil {
		extractErr := errors.ErrTaskExtraction(err)
		o.tasks = []entities.Task{}
		o.fail(entities.StageTasksReady, extractErr)
		o.logger.Warn("⚠️ Task extraction failed", append(stagecontext.Fields(tctx), zap.Error(err))...)
		return &TaskSet{Tasks: []entities.Task{}, Keywords: cloneStrings(keywords)}, extractErr
	}

	o.tasks = tasks
	if o.tasks == nil {
		o.tasks = []entities.Task{}
	}

	o.logger.Info("✅ Tasks extracted", append(stagecontext.Fields(tctx),
		zap.Int("task_count", len(tasks)),
		zap.Int("keyword_count", len(keywords)),
	)...)
	return &TaskSet{Tasks: cloneTasks(o.tasks), Keywords: cloneStrings(keywords)}, nil
}

func cloneTasks(tasks []entities.Task) []entities.Task {
	out := make([]entities.Task, len(tasks))
	copy(out, tasks)
	return out
}

func cloneStrings(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}

func cloneCard(card *entities.Card) *entities.Card {
	c := *card
	if card.Checklist != nil {
		cl := *card.Checklist
		cl.Items = append([]entities.CheckItem(nil), card.Checklist.Items...)
		c.Checklist = &cl
	}
	return &c
}
