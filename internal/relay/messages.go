package relay

// Client → server control message types.
const (
	ControlStartListening = "startListening"
	ControlStopListening  = "stopListening"
	ControlSetCharacter   = "setCharacter"
)

// ModeBrowserAudio is the only supported audio source: raw PCM frames
// streamed over the client WebSocket.
const ModeBrowserAudio = "browser-audio"

// Server → client message types.
const (
	MessageStatus            = "status"
	MessageTranscript        = "transcript"
	MessagePartialTranscript = "partialTranscript"
	MessageResponse          = "response"
	MessageError             = "error"
)

// ControlMessage is a JSON text frame from the client.
type ControlMessage struct {
	Type      string `json:"type"`
	Mode      string `json:"mode,omitempty"`
	Character string `json:"character,omitempty"`
}

// OutboundMessage is a JSON text frame to the client.
type OutboundMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	Text      string `json:"text,omitempty"`
	Character string `json:"character,omitempty"`
}
