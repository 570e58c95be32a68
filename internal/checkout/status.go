package checkout

// Status tracks a single checkout attempt through the commit protocol.
type Status string

const (
	StatusIdle       Status = "IDLE"
	StatusValidating Status = "VALIDATING"
	StatusCommitting Status = "COMMITTING"
	StatusCommitted  Status = "COMMITTED"
	StatusFailed     Status = "FAILED"
)

func (s Status) IsTerminal() bool {
	return s == StatusCommitted || s == StatusFailed
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether moving from s to next is legal. There are
// no partial or retry sub-states; a failed attempt starts over from idle.
func CanTransitionTo(s, next Status) bool {
	switch s {
	case StatusIdle:
		return next == StatusValidating
	case StatusValidating:
		return next == StatusCommitting || next == StatusFailed
	case StatusCommitting:
		return next == StatusCommitted || next == StatusFailed
	default:
		return false
	}
}
