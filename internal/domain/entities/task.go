package entities

import (
	"fmt"
	"strings"
)

// NoDueDate marks a task without a due date
const NoDueDate = "N/A"

// UnassignedTask is used when the extractor returns no assignee
const UnassignedTask = "Unassigned"

// NoTasksDescription is the card description used when no task was extracted
const NoTasksDescription = "No specific tasks were extracted from the meeting."

// Priority is the urgency attached to a task
type Priority string

const (
	PriorityNone   Priority = "None"
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// IsValid checks if the priority is one of the known values
func (p Priority) IsValid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority maps free-form priority text to a Priority.
// "No Priority", empty and unrecognized values become PriorityNone; ok is false only for
// unrecognized non-empty input.
func ParsePriority(raw string) (p Priority, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none", "no priority", "n/a":
		return PriorityNone, true
	case "low":
		return PriorityLow, true
	case "medium", "normal":
		return PriorityMedium, true
	case "high", "urgent":
		return PriorityHigh, true
	}
	return PriorityNone, false
}

// Task is a single action item destined for the task board
type Task struct {
	Assignee    string   `json:"assignee"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date"`
	Priority    Priority `json:"priority"`
}

// NewTask builds a task, defaulting empty assignee and due date
func NewTask(assignee, description, dueDate string, priority Priority) Task {
	if strings.TrimSpace(assignee) == "" {
		assignee = UnassignedTask
	}
	if strings.TrimSpace(dueDate) == "" {
		dueDate = NoDueDate
	}
	if !priority.IsValid() {
		priority = PriorityNone
	}
	return Task{
		Assignee:    assignee,
		Description: description,
		DueDate:     dueDate,
		Priority:    priority,
	}
}

// Render formats the task as one card-description line:
// "<assignee>: <description> (Due: <date>) [<priority>]" with the due-date suffix omitted
// for N/A and the priority suffix omitted for None.
func (t Task) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", t.Assignee, t.Description)
	if t.DueDate != "" && t.DueDate != NoDueDate {
		fmt.Fprintf(&b, " (Due: %s)", t.DueDate)
	}
	if t.Priority != "" && t.Priority != PriorityNone {
		fmt.Fprintf(&b, " [%s]", t.Priority)
	}
	return b.String()
}

// RenderTasks builds the card description for a task list
func RenderTasks(tasks []Task) string {
	if len(tasks) == 0 {
		return NoTasksDescription
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, t.Render())
	}
	return strings.Join(lines, "\n")
}
