package database

import (
	"sync/atomic"

	"go.mongodb.org/mongo-driver/mongo/description"
)

// ConnState is the three-valued connectivity signal used by readiness.
type ConnState int32

const (
	StateConnecting ConnState = iota
	StateConnected
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// connTracker records the latest state and the reason of the last
// disconnect.  Driver monitor callbacks write it from their own goroutines.
type connTracker struct {
	state   atomic.Int32
	lastErr atomic.Value // errBox
	closed  atomic.Bool
}

type errBox struct{ err error }

func (t *connTracker) set(s ConnState, err error) {
	if t.closed.Load() {
		return
	}
	t.state.Store(int32(s))
	if s == StateConnected {
		t.lastErr.Store(errBox{})
		return
	}
	if err != nil {
		t.lastErr.Store(errBox{err: err})
	}
}

// observe derives the state from a whole topology description, so one
// unreachable member of a replica set does not hide a healthy one.
func (t *connTracker) observe(topo description.Topology) {
	s, err := topologyState(topo)
	t.set(s, err)
}

// topologyState is connected while at least one server has a known kind.
// Otherwise it is disconnected once some server reported an error, and
// still connecting before any server answered.
func topologyState(topo description.Topology) (ConnState, error) {
	var firstErr error
	for _, srv := range topo.Servers {
		if srv.Kind != description.Unknown {
			return StateConnected, nil
		}
		if firstErr == nil && srv.LastError != nil {
			firstErr = srv.LastError
		}
	}
	if firstErr != nil {
		return StateDisconnected, firstErr
	}
	return StateConnecting, nil
}

// close pins the state to disconnected; late monitor events are ignored.
func (t *connTracker) close(reason error) {
	t.closed.Store(true)
	t.state.Store(int32(StateDisconnected))
	t.lastErr.Store(errBox{err: reason})
}

func (t *connTracker) get() ConnState { return ConnState(t.state.Load()) }

func (t *connTracker) err() error {
	if b, ok := t.lastErr.Load().(errBox); ok {
		return b.err
	}
	return nil
}
