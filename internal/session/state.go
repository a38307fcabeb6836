package session

// State is the informal lifecycle of a configurator session.
type State int

const (
	StateLoading State = iota
	StateReady
	StateMutating
	StateSwitchingLine
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateMutating:
		return "mutating"
	case StateSwitchingLine:
		return "switching_line"
	}
	return "unknown"
}
