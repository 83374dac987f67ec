package domain

import "go.trai.ch/zerr"

// State is a controller lifecycle state.
type State uint8

const (
	// StateParsed is the state of a controller that has been built but not installed.
	StateParsed State = iota
	// StateInstalling means the static partition is being populated.
	StateInstalling
	// StateInstalled means installation succeeded and the controller is waiting to activate.
	StateInstalled
	// StateActivating means stale partitions are being removed.
	StateActivating
	// StateActivated means the controller intercepts requests.
	StateActivated
	// StateRedundant means the controller was superseded or failed to install.
	StateRedundant
)

var stateNames = [...]string{
	StateParsed:     "parsed",
	StateInstalling: "installing",
	StateInstalled:  "installed",
	StateActivating: "activating",
	StateActivated:  "activated",
	StateRedundant:  "redundant",
}

// String returns the lifecycle state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return zerr.With(ErrInvalidState, "state", string(text))
}

// transitions lists the allowed successors of each state.
var transitions = map[State][]State{
	StateParsed:     {StateInstalling, StateRedundant},
	StateInstalling: {StateInstalled, StateRedundant},
	StateInstalled:  {StateActivating, StateRedundant},
	StateActivating: {StateActivated, StateRedundant},
	StateActivated:  {StateRedundant},
}

// Transition returns next if it is a legal successor of s.
func (s State) Transition(next State) (State, error) {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return next, nil
		}
	}
	return s, zerr.With(zerr.With(ErrInvalidTransition, "from", s.String()), "to", next.String())
}
