package state

import "sync"

type session struct {
	state string
	temp  map[string]any
}

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*session
}

// NewMemoryManager returns a Manager backed by process memory.
func NewMemoryManager() Manager {
	return &memoryManager{sessions: make(map[int64]*session)}
}

func (m *memoryManager) getOrCreate(userID int64) *session {
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s := &session{temp: make(map[string]any)}
	m.sessions[userID] = s
	return s
}

func (m *memoryManager) SetState(userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getOrCreate(userID).state = state
}

func (m *memoryManager) GetState(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return s.state
	}
	return ""
}

func (m *memoryManager) HasState(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return ok && s.state != ""
}

func (m *memoryManager) SetTemp(userID int64, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getOrCreate(userID).temp[key] = value
}

func (m *memoryManager) GetTemp(userID int64, key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	v, ok := s.temp[key]
	return v, ok
}

func (m *memoryManager) ClearTemp(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		delete(s.temp, key)
	}
}

func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
