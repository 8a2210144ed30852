package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
)

// EditTranscript replaces the transcript text
func (o *Orchestrator) EditTranscript(text string) (*entities.Transcript, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastActivity = time.Now()

	if o.transcript == nil {
		return nil, errors.ErrPrecondition("no transcript to edit")
	}
	o.transcript.Text = text
	return o.transcript.Clone(), nil
}

// EditSummary applies the non-nil fields of patch to the summary
func (o *Orchestrator) EditSummary(patch entities.SummaryPatch) (*entities.Summary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastActivity = time.Now()

	if o.summary == nil {
		return nil, errors.ErrPrecondition("no summary to edit")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, errors.ErrValidation("summary title cannot be empty")
	}
	patch.Apply(o.summary)
	return o.summary.Clone(), nil
}

// AddTask appends a task to the working set
func (o *Orchestrator) AddTask(task entities.Task) ([]entities.Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastActivity = time.Now()

	if o.summary == nil {
		return nil, errors.ErrPrecondition("no summary available, generate a summary first")
	}
	if !task.Priority.IsValid() && task.Priority != "" {
		return nil, errors.ErrValidation(entities.ErrInvalidPriority.Error())
	}
	o.tasks = append(o.tasks, entities.NewTask(task.Assignee, task.Description, task.DueDate, task.Priority))
	return cloneTasks(o.tasks), nil
}

// UpdateTask replaces the task at index
func (o *Orchestrator) UpdateTask(index int, task entities.Task) ([]entities.Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastActivity = time.Now()

	if err := o.checkTaskIndex(index); err != nil {
		return nil, err
	}
	if !task.Priority.IsValid() && task.Priority != "" {
		return nil, errors.ErrValidation(entities.ErrInvalidPriority.Error())
	}
	o.tasks[index] = entities.NewTask(task.Assignee, task.Description, task.DueDate, task.Priority)
	return cloneTasks(o.tasks), nil
}

// DeleteTask removes the task at index
func (o *Orchestrator) DeleteTask(index int) ([]entities.Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastActivity = time.Now()

	if err := o.checkTaskIndex(index); err != nil {
		return nil, err
	}
	o.tasks = append(o.tasks[:index], o.tasks[index+1:]...)
	return cloneTasks(o.tasks), nil
}

// checkTaskIndex validates index against the task list; mu must be held
func (o *Orchestrator) checkTaskIndex(index int) error {
	if o.summary == nil {
		return errors.ErrPrecondition("no tasks to edit")
	}
	if index < 0 || index >= len(o.tasks) {
		return errors.ErrValidation(fmt.Sprintf("task index %d out of range", index)).
			WithDetail("task_count", fmt.Sprint(len(o.tasks)))
	}
	return nil
}

// LoadRecord makes a copy of a stored meeting the live transcript and summary
func (o *Orchestrator) LoadRecord(id uuid.UUID) (*entities.MeetingRecord, error) {
	record, err := o.history.Get(id)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastActivity = time.Now()

	if o.stage.IsBusy() {
		return nil, errors.ErrPrecondition(fmt.Sprintf("cannot load a meeting while %s is in progress", o.stage))
	}

	o.transcript = record.Transcript.Clone()
	o.summary = record.Summary.Clone()
	o.tasks = nil
	o.keywords = nil
	o.lastCard = nil
	o.lastError = ""
	o.stage = entities.StageSummarized

	o.logger.Info("Meeting loaded from history", zap.String("record_id", id.String()))
	return record, nil
}

// History returns the meetings summarized in this session, oldest first
func (o *Orchestrator) History() []*entities.MeetingRecord {
	o.touch()
	return o.history.List()
}
