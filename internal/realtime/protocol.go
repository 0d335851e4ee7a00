package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"taskboard/internal/model"
)

const maxTitleLength = 255
const maxAssignmentLength = 50

// TaskStore is the persistence surface the session protocol reads and mutates.
// GetByID returns (nil, nil) when no such task exists; the write methods
// report how many rows they touched.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uint) (*model.Task, error)
	ListByBoard(ctx context.Context, boardID uint) ([]model.Task, error)
	SetCompleted(ctx context.Context, id uint, completed bool) (int64, error)
	SetAssignedTo(ctx context.Context, id uint, assignedTo *string) (int64, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

// BoardRegistry answers whether a board exists before a connection is admitted
// to its room.
type BoardRegistry interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// Protocol is the board session state machine. Each connection is either
// unbound or bound to exactly one board; every mutating event is authorized
// against the bound board before the store is touched, and every committed
// mutation is fanned out to the board's room.
type Protocol struct {
	tasks    TaskStore
	boards   BoardRegistry
	hub      *Hub
	sessions *SessionRegistry
}

func NewProtocol(tasks TaskStore, boards BoardRegistry, hub *Hub, sessions *SessionRegistry) *Protocol {
	return &Protocol{
		tasks:    tasks,
		boards:   boards,
		hub:      hub,
		sessions: sessions,
	}
}

// HandleFrame dispatches one inbound frame from a connection. Frames from the
// same connection are handled sequentially by the caller; a handler never
// interleaves with itself.
func (p *Protocol) HandleFrame(ctx context.Context, sub Subscriber, frame Envelope) {
	switch frame.Event {
	case EventJoinBoard:
		p.handleJoinBoard(ctx, sub, frame.Data)
	case EventCreateTask:
		p.handleCreateTask(ctx, sub, frame.Data)
	case EventToggleTask:
		p.handleToggleTask(ctx, sub, frame.Data)
	case EventSetTaskAssignment:
		p.handleSetTaskAssignment(ctx, sub, frame.Data)
	case EventDeleteTask:
		p.handleDeleteTask(ctx, sub, frame.Data)
	default:
		log.Printf("⚠️  Unknown event %q from connection %s", frame.Event, sub.ID())
	}
}

// Disconnect cleans up room membership and the session binding after the
// transport goes away.
func (p *Protocol) Disconnect(sub Subscriber) {
	p.hub.LeaveAllBoardRooms(sub)
	p.sessions.Drop(sub.ID())
	log.Printf("Connection closed: %s", sub.ID())
}

func (p *Protocol) handleJoinBoard(ctx context.Context, sub Subscriber, data json.RawMessage) {
	var req joinBoardRequest
	if err := json.Unmarshal(data, &req); err != nil || req.BoardID == nil {
		log.Printf("⚠️  Invalid boardId from %s", sub.ID())
		p.sendError(sub, "Invalid Board ID provided.")
		return
	}

	// Model IDs are unsigned; a non-positive ID can never match a row, so it
	// takes the not-found path without a store round trip.
	if *req.BoardID < 1 {
		p.sendError(sub, fmt.Sprintf("Board with ID %d not found.", *req.BoardID))
		return
	}
	boardID := uint(*req.BoardID)

	exists, err := p.boards.Exists(ctx, boardID)
	if err != nil || !exists {
		log.Printf("⚠️  Join attempt failed: board %d not found for connection %s", boardID, sub.ID())
		p.sendError(sub, fmt.Sprintf("Board with ID %d not found.", boardID))
		return
	}

	// Rebinding unbinds from any previous board room first; a connection is
	// never a member of two rooms.
	p.hub.LeaveAllBoardRooms(sub)
	binding := p.sessions.Bind(sub.ID(), boardID, req.Nickname)
	p.hub.Join(sub, boardID)
	log.Printf("'%s' (connection %s) joined board %d", binding.Nickname, sub.ID(), boardID)

	tasks, err := p.tasks.ListByBoard(ctx, boardID)
	if err != nil {
		log.Printf("❌ Error fetching initial tasks for board %d: %v", boardID, err)
		p.sendError(sub, "Could not fetch tasks for this board.")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	sub.Deliver(Message{Event: EventInitialTasks, Data: tasks})
}

func (p *Protocol) handleCreateTask(ctx context.Context, sub Subscriber, data json.RawMessage) {
	binding, ok := p.checkBoardContext(sub)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.Unmarshal(data, &req); err != nil {
		p.sendError(sub, "Invalid task title (1-255 characters).")
		return
	}
	title := trimmedTitle(req.Title)
	if title == "" {
		log.Printf("⚠️  Invalid title from %s on board %d", sub.ID(), binding.BoardID)
		p.sendError(sub, "Invalid task title (1-255 characters).")
		return
	}

	task := &model.Task{
		BoardID:    binding.BoardID,
		Title:      title,
		Completed:  false,
		AssignedTo: nil, // new tasks start unassigned
	}
	if err := p.tasks.Create(ctx, task); err != nil {
		log.Printf("❌ DB error inserting task %q for board %d: %v", title, binding.BoardID, err)
		p.sendError(sub, "Failed to save task.")
		return
	}

	log.Printf("Task %q (board %d) created with ID %d by '%s'", title, binding.BoardID, task.ID, binding.Nickname)
	p.hub.Broadcast(binding.BoardID, EventTaskCreated, task)
}

func (p *Protocol) handleToggleTask(ctx context.Context, sub Subscriber, data json.RawMessage) {
	binding, ok := p.checkBoardContext(sub)
	if !ok {
		return
	}

	taskID, ok := p.decodeTaskID(sub, data)
	if !ok {
		return
	}

	task, ok := p.verifyTaskOnBoard(ctx, sub, taskID, binding)
	if !ok {
		return
	}

	// Read-modify-write without a concurrency token: two connections toggling
	// the same task at once may both read the same prior value and collapse
	// into a single effective flip. Last write wins.
	newStatus := !task.Completed
	changed, err := p.tasks.SetCompleted(ctx, task.ID, newStatus)
	if err != nil {
		log.Printf("❌ DB error updating task %d on board %d: %v", task.ID, binding.BoardID, err)
		p.sendError(sub, "Failed to update task status.")
		return
	}
	if changed == 0 {
		log.Printf("⚠️  Toggle of task %d had no effect", task.ID)
		return
	}

	p.hub.Broadcast(binding.BoardID, EventTaskUpdated, taskCompletionUpdate{ID: task.ID, Completed: newStatus})
}

func (p *Protocol) handleSetTaskAssignment(ctx context.Context, sub Subscriber, data json.RawMessage) {
	binding, ok := p.checkBoardContext(sub)
	if !ok {
		return
	}

	var req setAssignmentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Printf("⚠️  Invalid assignment payload from %s", sub.ID())
		p.sendError(sub, "Invalid assignment format provided.")
		return
	}
	if req.TaskID == nil || *req.TaskID < 1 {
		p.sendError(sub, "Invalid task ID format.")
		return
	}

	assignment := normalizeAssignment(req.Assignment)

	task, ok := p.verifyTaskOnBoard(ctx, sub, uint(*req.TaskID), binding)
	if !ok {
		return
	}

	changed, err := p.tasks.SetAssignedTo(ctx, task.ID, assignment)
	if err != nil {
		log.Printf("❌ DB error updating assignment for task %d on board %d: %v", task.ID, binding.BoardID, err)
		p.sendError(sub, "Failed to update assignment.")
		return
	}
	if changed == 0 {
		log.Printf("⚠️  Assignment update of task %d had no effect", task.ID)
		return
	}

	p.hub.Broadcast(binding.BoardID, EventTaskUpdated, taskAssignmentUpdate{ID: task.ID, AssignedTo: assignment})
}

func (p *Protocol) handleDeleteTask(ctx context.Context, sub Subscriber, data json.RawMessage) {
	binding, ok := p.checkBoardContext(sub)
	if !ok {
		return
	}

	taskID, ok := p.decodeTaskID(sub, data)
	if !ok {
		return
	}

	task, ok := p.verifyTaskOnBoard(ctx, sub, taskID, binding)
	if !ok {
		return
	}

	deleted, err := p.tasks.Delete(ctx, task.ID)
	if err != nil {
		log.Printf("❌ DB error deleting task %d on board %d: %v", task.ID, binding.BoardID, err)
		p.sendError(sub, "Failed to delete task.")
		return
	}
	if deleted == 0 {
		log.Printf("⚠️  Delete of task %d had no effect", task.ID)
		return
	}

	log.Printf("Task %d (board %d) deleted by '%s'", task.ID, binding.BoardID, binding.Nickname)
	p.hub.Broadcast(binding.BoardID, EventTaskDeleted, taskDeletedPayload{ID: task.ID})
}

// checkBoardContext returns the connection's binding, or emits a context error
// when the connection is unbound. Unbound connections never reach the store.
func (p *Protocol) checkBoardContext(sub Subscriber) (Binding, bool) {
	binding, ok := p.sessions.Get(sub.ID())
	if !ok {
		log.Printf("⚠️  Action denied: connection %s is not associated with a board", sub.ID())
		p.sendError(sub, "Action failed: Board context is missing. Please rejoin the board.")
		return Binding{}, false
	}
	return binding, true
}

// verifyTaskOnBoard looks a task up and checks it belongs to the connection's
// bound board. A task on a different board is reported exactly like a missing
// one, so cross-board existence never leaks.
func (p *Protocol) verifyTaskOnBoard(ctx context.Context, sub Subscriber, taskID uint, binding Binding) (*model.Task, bool) {
	task, err := p.tasks.GetByID(ctx, taskID)
	if err != nil {
		log.Printf("❌ DB error finding task %d: %v", taskID, err)
		p.sendError(sub, "Database error finding task.")
		return nil, false
	}
	if task == nil {
		p.sendError(sub, fmt.Sprintf("Task with ID %d not found on this board.", taskID))
		return nil, false
	}
	if task.BoardID != binding.BoardID {
		log.Printf("⚠️  Connection %s ('%s') on board %d tried to access task %d from board %d",
			sub.ID(), binding.Nickname, binding.BoardID, taskID, task.BoardID)
		p.sendError(sub, fmt.Sprintf("Task with ID %d not found on this board.", taskID))
		return nil, false
	}
	return task, true
}

// decodeTaskID reads the bare numeric payload used by toggleTask and deleteTask.
func (p *Protocol) decodeTaskID(sub Subscriber, data json.RawMessage) (uint, bool) {
	var taskID int64
	if err := json.Unmarshal(data, &taskID); err != nil {
		p.sendError(sub, "Invalid task ID format.")
		return 0, false
	}
	if taskID < 1 {
		p.sendError(sub, fmt.Sprintf("Task with ID %d not found on this board.", taskID))
		return 0, false
	}
	return uint(taskID), true
}

func (p *Protocol) sendError(sub Subscriber, message string) {
	sub.Deliver(Message{Event: EventError, Data: message})
}

func trimmedTitle(title string) string {
	trimmed := strings.TrimSpace(title)
	if len([]rune(trimmed)) > maxTitleLength {
		return ""
	}
	return trimmed
}

func normalizeAssignment(assignment *string) *string {
	if assignment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*assignment)
	if trimmed == "" {
		return nil // empty assignment means unassign
	}
	if runes := []rune(trimmed); len(runes) > maxAssignmentLength {
		trimmed = string(runes[:maxAssignmentLength])
	}
	return &trimmed
}
