package health

import (
	"sync/atomic"
	"time"

	"profitly/shared/timezone"
)

type ServerState int32

const (
	ServerStateStarting ServerState = iota
	ServerStateReady
	ServerStateInGracePeriod
	ServerStateInCleanupPeriod
	ServerStateStopped
)

func (s ServerState) String() string {
	switch s {
	case ServerStateStarting:
		return "STARTING"
	case ServerStateReady:
		return "READY"
	case ServerStateInGracePeriod:
		return "GRACE_PERIOD"
	case ServerStateInCleanupPeriod:
		return "CLEANUP_PERIOD"
	case ServerStateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// State is the lifecycle of the HTTP server, shared between the transport
// that drives it and the handlers that report it.
type State struct {
	current atomic.Int32
	created time.Time
}

func NewState() *State {
	return &State{created: timezone.Now()}
}

func (s *State) Set(state ServerState) {
	s.current.Store(int32(state))
}

func (s *State) Get() ServerState {
	return ServerState(s.current.Load())
}

// Created is when the component graph was built.
func (s *State) Created() time.Time {
	return s.created
}

// AcceptingTraffic reports whether the server should receive new requests.
func (s *State) AcceptingTraffic() bool {
	return s.Get() == ServerStateReady
}
