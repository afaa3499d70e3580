package stream

// State is a session lifecycle phase.
type State int32

const (
	Connecting State = iota
	Replaying
	Tailing
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Replaying:
		return "replaying"
	case Tailing:
		return "tailing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
