package carlink

import (
	"testing"

	"github.com/autokit/carlink/internal/protocol"
)

func TestStateStatusStrings(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{"disconnected", State{Kind: StateDisconnected}, "Disconnected"},
		{"initializing", State{Kind: StateInitializing}, "Connecting..."},
		{"opening", State{Kind: StateOpening}, "Connecting..."},
		{"awaiting phone", State{Kind: StateAwaitingPhone}, "Connecting..."},
		{"paired carplay", State{Kind: StatePaired, PhoneType: protocol.PhoneCarPlay}, "Connected - CarPlay"},
		{"paired android auto", State{Kind: StatePaired, PhoneType: protocol.PhoneAndroidAuto}, "Connected - AndroidAuto"},
		{"reconnecting", State{Kind: StateReconnecting, Attempt: 3}, "Reconnecting..."},
		{"failed", State{Kind: StateFailed, Reason: "device gone"}, "Failed: device gone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	s := State{Kind: StatePaired, PhoneType: protocol.PhoneCarPlay}
	if got := s.String(); got != "Paired(CarPlay)" {
		t.Errorf("String() = %q, want %q", got, "Paired(CarPlay)")
	}
	s = State{Kind: StateReconnecting, Attempt: 2}
	if got := s.String(); got != "Reconnecting(2)" {
		t.Errorf("String() = %q, want %q", got, "Reconnecting(2)")
	}
}
