package bootstrap

type State int32

const (
	StateNotStarted State = iota
	StateTimezoneSet
	StateRuntimeStarting
	StateRuntimeRunning
	StateStartupFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateTimezoneSet:
		return "TIMEZONE_SET"
	case StateRuntimeStarting:
		return "RUNTIME_STARTING"
	case StateRuntimeRunning:
		return "RUNTIME_RUNNING"
	case StateStartupFailed:
		return "STARTUP_FAILED"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}
