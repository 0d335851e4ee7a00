package realtime

import "encoding/json"

// Client -> server event names.
const (
	EventJoinBoard         = "joinBoard"
	EventCreateTask        = "createTask"
	EventToggleTask        = "toggleTask"
	EventSetTaskAssignment = "setTaskAssignment"
	EventDeleteTask        = "deleteTask"
)

// Server -> client event names.
const (
	EventInitialTasks = "initialTasks"
	EventTaskCreated  = "taskCreated"
	EventTaskUpdated  = "taskUpdated"
	EventTaskDeleted  = "taskDeleted"
	EventError        = "error"
)

// Envelope is a single inbound wire frame. Data stays raw until the event
// handler knows which payload shape to decode.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Message is a single outbound frame.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type joinBoardRequest struct {
	BoardID  *int64 `json:"boardId"`
	Nickname string `json:"nickname"`
}

type createTaskRequest struct {
	Title string `json:"title"`
}

type setAssignmentRequest struct {
	TaskID     *int64  `json:"taskId"`
	Assignment *string `json:"assignment"`
}

// taskUpdated payloads carry only the changed field.

type taskCompletionUpdate struct {
	ID        uint `json:"id"`
	Completed bool `json:"completed"`
}

type taskAssignmentUpdate struct {
	ID         uint    `json:"id"`
	AssignedTo *string `json:"assignedTo"`
}

type taskDeletedPayload struct {
	ID uint `json:"id"`
}
