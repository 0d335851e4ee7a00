package realtime

import "sync"

// Subscriber is a live connection handle the hub can deliver frames to.
// Deliver must not block; a subscriber that cannot keep up drops frames.
type Subscriber interface {
	ID() string
	Deliver(msg Message)
}

// Hub routes broadcasts to board rooms. A room is the set of subscribers
// currently bound to one board; it exists only while at least one subscriber
// is in it. A subscriber is in at most one room at a time.
type Hub struct {
	mu     sync.Mutex
	rooms  map[uint]map[string]Subscriber
	member map[string]uint // connection ID -> board whose room it occupies
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[uint]map[string]Subscriber),
		member: make(map[string]uint),
	}
}

// Join adds the subscriber to the board's room. Idempotent; joining a room
// while in another one leaves the old room first.
func (h *Hub) Join(sub Subscriber, boardID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(sub.ID())

	room, ok := h.rooms[boardID]
	if !ok {
		room = make(map[string]Subscriber)
		h.rooms[boardID] = room
	}
	room[sub.ID()] = sub
	h.member[sub.ID()] = boardID
}

// LeaveAllBoardRooms removes the subscriber from whatever room it occupies.
func (h *Hub) LeaveAllBoardRooms(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(sub.ID())
}

func (h *Hub) leaveLocked(connID string) {
	boardID, ok := h.member[connID]
	if !ok {
		return
	}
	delete(h.member, connID)
	room := h.rooms[boardID]
	delete(room, connID)
	if len(room) == 0 {
		delete(h.rooms, boardID)
	}
}

// Broadcast delivers an event to every subscriber in the board's room,
// including the originator if it is a member. Delivery happens under the hub
// lock, so broadcasts for one board reach all members in the order they were
// triggered.
func (h *Hub) Broadcast(boardID uint, event string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.rooms[boardID] {
		sub.Deliver(Message{Event: event, Data: data})
	}
}

// RoomSize reports how many subscribers are currently in the board's room.
func (h *Hub) RoomSize(boardID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[boardID])
}
