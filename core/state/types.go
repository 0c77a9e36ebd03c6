package state

// Manager stores and mutates per-user dialog sessions.
type Manager interface {
	// SetState sets the current dialog state for the user.
	SetState(userID int64, state string)
	// GetState returns the current state, or "" when no session exists.
	GetState(userID int64) string
	// HasState reports whether the user has an active session.
	HasState(userID int64) bool
	// SetTemp stores a temporary key/value pair in the user session.
	SetTemp(userID int64, key string, value any)
	// GetTemp returns a temporary value and whether it was present.
	GetTemp(userID int64, key string) (any, bool)
	// ClearTemp removes a single temporary key.
	ClearTemp(userID int64, key string)
	// Clear removes the whole session for the user.
	Clear(userID int64)
}

// TempString fetches a temp value and coerces it to string.
func TempString(m Manager, userID int64, key string) (string, bool) {
	v, ok := m.GetTemp(userID, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
