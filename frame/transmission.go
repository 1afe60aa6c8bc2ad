package frame

// Transmission is the tagged choice the codec decodes a byte stream into:
// either a Heartbeat (one or more bare line terminators) or a CompleteFrame.
// It plays the role the teacher's protocol.Header+body pair plays for
// mini-RPC frames, but a STOMP transmission carries no fixed-size header —
// the heartbeat/frame tag is determined by what follows the line terminators.
type Transmission struct {
	// Heartbeat is true iff this transmission is a keepalive with no frame.
	Heartbeat bool
	// Frame is non-nil iff Heartbeat is false.
	Frame *Frame
}

// HeartbeatTransmission is the singleton-shaped heartbeat transmission.
func HeartbeatTransmission() Transmission {
	return Transmission{Heartbeat: true}
}

// FrameTransmission wraps a decoded frame as a transmission.
func FrameTransmission(f *Frame) Transmission {
	return Transmission{Frame: f}
}
