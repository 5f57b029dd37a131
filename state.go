package w4113

// State tracks the engine's stream lifecycle. Transitions happen only
// on the dispatcher goroutine: Idle -> Reloading -> Running on success,
// -> Failed on a reload error. A Failed engine stays down until the
// next explicit reload request.
type State int

const (
	Idle State = iota
	Reloading
	Running
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Reloading:
		return "reloading"
	case Running:
		return "running"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
