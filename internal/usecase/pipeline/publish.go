package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/internal/usecase/keyword"
	"github.com/johnquangdev/minutes360/pkg/stagecontext"
)

// PublishRequest selects where the card is created
type PublishRequest struct {
	BoardID string
	ListID  string
}

// CardPreview is the card Publish would create
type CardPreview struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Tasks       []entities.Task `json:"tasks"`
	Keywords    []string        `json:"keywords"`
}

// CardPreview recomputes the keyword set and renders the card without publishing it
func (o *Orchestrator) CardPreview() (*CardPreview, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastActivity = time.Now()

	if o.summary == nil {
		return nil, errors.ErrPrecondition("no summary available, generate a summary first")
	}

	o.keywords = keyword.Extract(o.summary.KeywordSource())
	return &CardPreview{
		Name:        o.summary.Title,
		Description: entities.RenderTasks(o.tasks),
		Tasks:       cloneTasks(o.tasks),
		Keywords:    cloneStrings(o.keywords),
	}, nil
}

// Publish creates a card named after the summary with one line per task
func (o *Orchestrator) Publish(ctx context.Context, req PublishRequest) (*entities.Card, error) {
	if !o.creds.Get().IsComplete() {
		return nil, errors.ErrConfiguration("Trello API key and token must be set before publishing")
	}
	listID := strings.TrimSpace(req.ListID)
	if listID == "" {
		return nil, errors.ErrValidation("please select a list")
	}

	var (
		card  entities.CardRequest
		tasks []entities.Task
	)
	prev, err := o.enter(entities.StagePublishing, func() error {
		if o.summary == nil {
			return errors.ErrPrecondition("no summary available, generate a summary first")
		}
		boardID := req.BoardID
		if boardID == "" {
			boardID = o.selectedBoard
		}
		if lists, ok := o.lists[boardID]; ok && !containsList(lists, listID) {
			return errors.ErrValidation("selected list does not belong to the board").
				WithDetail("board_id", boardID).
				WithDetail("list_id", listID)
		}
		card = entities.CardRequest{
			ListID:      listID,
			Name:        o.summary.Title,
			Description: entities.RenderTasks(o.tasks),
		}
		tasks = cloneTasks(o.tasks)
		return nil
	})
	if err != nil {
		return nil, err
	}

	pctx, cancel := stagecontext.StageBegin(ctx, o.id, string(entities.StagePublishing), o.timeouts.Publish)
	defer cancel()

	o.logger.Info("📌 Publishing card", append(stagecontext.Fields(pctx), zap.String("list_id", listID))...)

	created, err := o.boards.CreateCard(pctx, card)
	if err == nil {
		// the card exists; a checklist failure is reported on it and does not fail the stage
		checklist, clErr := o.publishChecklist(pctx, created.ID, tasks)
		created.Checklist = checklist
		if clErr != nil {
			created.ChecklistError = errorMessage(clErr)
			o.logger.Warn("⚠️ Checklist not completed", append(stagecontext.Fields(pctx),
				zap.String("card_id", created.ID),
				zap.Error(clErr),
			)...)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastActivity = time.Now()

	if err != nil {
		pubErr := errors.ErrPublish(err)
		o.fail(prev, pubErr)
		o.logger.Error("❌ Publish failed", append(stagecontext.Fields(pctx), zap.Error(err))...)
		return nil, pubErr
	}

	if created.ChecklistError != "" {
		o.lastError = created.ChecklistError
	}
	o.tasks = nil
	o.keywords = nil
	o.lastCard = created
	o.stage = entities.StagePublished

	o.logger.Info("✅ Card published", append(stagecontext.Fields(pctx), zap.String("card_id", created.ID))...)
	return cloneCard(created), nil
}

// publishChecklist adds one check item per task to a new checklist on the card. No checklist
// is created for an empty task list. On failure the checklist holds the items added so far.
func (o *Orchestrator) publishChecklist(ctx context.Context, cardID string, tasks []entities.Task) (*entities.Checklist, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	checklist, err := o.boards.CreateChecklist(ctx, cardID, entities.ChecklistName)
	if err != nil {
		return nil, fmt.Errorf("failed to create checklist: %w", err)
	}
	for _, t := range tasks {
		item, err := o.boards.AddCheckItem(ctx, checklist.ID, t.Render())
		if err != nil {
			return checklist, fmt.Errorf("failed to add check item: %w", err)
		}
		checklist.Items = append(checklist.Items, *item)
	}
	return checklist, nil
}

// Boards lists the boards visible with the session credentials
func (o *Orchestrator) Boards(ctx context.Context) ([]entities.Board, error) {
	o.touch()
	boards, err := o.boards.ListBoards(ctx)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.boardCache = boards
	o.mu.Unlock()
	return boards, nil
}

// BoardSelection is the lists and members of the selected board
type BoardSelection struct {
	BoardID string            `json:"board_id"`
	Lists   []entities.List   `json:"lists"`
	Members []entities.Member `json:"members"`
}

// SelectBoard fetches and caches the lists and members of a board and makes it the
// default board for Publish
func (o *Orchestrator) SelectBoard(ctx context.Context, boardID string) (*BoardSelection, error) {
	o.touch()
	lists, err := o.Lists(ctx, boardID)
	if err != nil {
		return nil, err
	}
	members, err := o.Members(ctx, boardID)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.selectedBoard = boardID
	o.mu.Unlock()

	return &BoardSelection{BoardID: boardID, Lists: lists, Members: members}, nil
}

// Lists fetches the lists of a board and caches them
func (o *Orchestrator) Lists(ctx context.Context, boardID string) ([]entities.List, error) {
	lists, err := o.boards.ListLists(ctx, boardID)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	o.lists[boardID] = lists
	o.mu.Unlock()
	return lists, nil
}

// Members fetches the members of a board and caches them
func (o *Orchestrator) Members(ctx context.Context, boardID string) ([]entities.Member, error) {
	members, err := o.boards.ListMembers(ctx, boardID)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	o.members[boardID] = members
	o.mu.Unlock()
	return members, nil
}

// Credentials returns the masked session credentials
func (o *Orchestrator) Credentials() entities.Credentials {
	return o.creds.Masked()
}

// CredentialsConfigured reports whether both key and token are set
func (o *Orchestrator) CredentialsConfigured() bool {
	return o.creds.Get().IsComplete()
}

// SetCredentials updates the non-empty halves of the credentials and drops cached board data
func (o *Orchestrator) SetCredentials(apiKey, token string) entities.Credentials {
	o.creds.Set(strings.TrimSpace(apiKey), strings.TrimSpace(token))

	o.mu.Lock()
	o.lastActivity = time.Now()
	o.boardCache = nil
	o.selectedBoard = ""
	o.lists = make(map[string][]entities.List)
	o.members = make(map[string][]entities.Member)
	o.mu.Unlock()

	o.logger.Info("Trello credentials updated")
	return o.creds.Masked()
}

func (o *Orchestrator) touch() {
	o.mu.Lock()
	o.lastActivity = time.Now()
	o.mu.Unlock()
}

func containsList(lists []entities.List, listID string) bool {
	for _, l := range lists {
		if l.ID == listID {
			return true
		}
	}
	return false
}
