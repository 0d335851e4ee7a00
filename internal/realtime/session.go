package realtime

import (
	"strings"
	"sync"
)

const maxNicknameLength = 30

// Binding is a connection's association with a board room and the nickname
// under which that connection acts. It lives only as long as the connection.
type Binding struct {
	BoardID  uint
	Nickname string
}

// SessionRegistry tracks each live connection's board binding, keyed by
// connection ID. A connection holds at most one binding; rebinding replaces
// the previous one.
type SessionRegistry struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		bindings: make(map[string]Binding),
	}
}

// Bind associates a connection with a board. The requested nickname is trimmed
// and truncated; when blank, a guest name derived from the connection ID is
// used instead. Returns the binding now in effect.
func (s *SessionRegistry) Bind(connID string, boardID uint, requestedNickname string) Binding {
	nickname := strings.TrimSpace(requestedNickname)
	if nickname == "" {
		nickname = "Guest_" + shortID(connID)
	} else if runes := []rune(nickname); len(runes) > maxNicknameLength {
		nickname = string(runes[:maxNicknameLength])
	}

	binding := Binding{BoardID: boardID, Nickname: nickname}

	s.mu.Lock()
	s.bindings[connID] = binding
	s.mu.Unlock()

	return binding
}

// Get returns the connection's current binding, if any.
func (s *SessionRegistry) Get(connID string) (Binding, bool) {
	s.mu.RLock()
	binding, ok := s.bindings[connID]
	s.mu.RUnlock()
	return binding, ok
}

// Drop discards the connection's binding on disconnect.
func (s *SessionRegistry) Drop(connID string) {
	s.mu.Lock()
	delete(s.bindings, connID)
	s.mu.Unlock()
}

func shortID(connID string) string {
	if len(connID) > 4 {
		return connID[:4]
	}
	return connID
}
