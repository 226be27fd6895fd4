package carlink

import (
	"fmt"

	"github.com/autokit/carlink/internal/protocol"
)

// StateKind enumerates the connection lifecycle states.
type StateKind int

const (
	StateDisconnected StateKind = iota
	StateInitializing
	StateOpening
	StateAwaitingPhone
	StatePaired
	StateReconnecting
	StateFailed
)

func (k StateKind) String() string {
	switch k {
	case StateDisconnected:
		return "Disconnected"
	case StateInitializing:
		return "Initializing"
	case StateOpening:
		return "Opening"
	case StateAwaitingPhone:
		return "AwaitingPhone"
	case StatePaired:
		return "Paired"
	case StateReconnecting:
		return "Reconnecting"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("StateKind(%d)", int(k))
	}
}

// State is the connection state with its per-state payload: the paired phone
// type, the reconnect attempt counter, or the terminal failure reason. Owned
// exclusively by the Node; external readers get copies.
type State struct {
	Kind      StateKind
	PhoneType protocol.PhoneType // valid when Kind == StatePaired
	Attempt   int                // valid when Kind == StateReconnecting
	Reason    string             // valid when Kind == StateFailed
}

func (s State) String() string {
	switch s.Kind {
	case StatePaired:
		return fmt.Sprintf("Paired(%s)", s.PhoneType)
	case StateReconnecting:
		return fmt.Sprintf("Reconnecting(%d)", s.Attempt)
	case StateFailed:
		return fmt.Sprintf("Failed(%s)", s.Reason)
	default:
		return s.Kind.String()
	}
}

// Status projects the state onto the strings the host surface displays.
func (s State) Status() string {
	switch s.Kind {
	case StateDisconnected:
		return "Disconnected"
	case StateInitializing, StateOpening, StateAwaitingPhone:
		return "Connecting..."
	case StatePaired:
		return "Connected - " + s.PhoneType.String()
	case StateReconnecting:
		return "Reconnecting..."
	case StateFailed:
		return "Failed: " + s.Reason
	default:
		return s.Kind.String()
	}
}
