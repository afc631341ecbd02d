package app

// State represents the current application state.
type State int

const (
	StateLogin   State = iota // collecting credentials
	StateLoading              // restoring history after auth
	StateIdle                 // ready for user input
	StateSending              // waiting for the assistant reply
)

func (s State) String() string {
	switch s {
	case StateLogin:
		return "login"
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}
