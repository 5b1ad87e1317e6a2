package period

import "fmt"

// State is the lifecycle state of a period.
type State string

const (
	StatePreparing State = "preparing"
	StateActive    State = "active"
	StateArchived  State = "archived"
	StateUnlocked  State = "unlocked"
)

// ParseState validates a state name.
func ParseState(s string) (State, error) {
	switch st := State(s); st {
	case StatePreparing, StateActive, StateArchived, StateUnlocked:
		return st, nil
	}
	return "", fmt.Errorf("unknown period state %q", s)
}

func (s State) String() string { return string(s) }

// Editable reports whether normal write paths may modify the period.
func (s State) Editable() bool {
	return s == StateActive || s == StateUnlocked || s == StatePreparing
}

// AutoSave reports whether the autosave ticker refreshes the period.
func (s State) AutoSave() bool {
	return s == StateActive || s == StateUnlocked
}
