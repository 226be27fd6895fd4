package carlink

// Microphone is the host's audio capture collaborator. The Node starts it
// when the phone opens a Siri or phone call session and stops it when the
// session ends; captured samples come back through Node.SendAudio. Capture
// itself is the host's responsibility, not the engine's.
type Microphone interface {
	Start() error
	Stop() error
}

// NopMicrophone satisfies Microphone for hosts without audio capture.
type NopMicrophone struct{}

func (NopMicrophone) Start() error { return nil }
func (NopMicrophone) Stop() error  { return nil }
