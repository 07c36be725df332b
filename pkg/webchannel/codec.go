package webchannel

import (
	"encoding/json"
	"fmt"
)

// DecodeStatus classifies one inbound event. The classification decides
// whether a pending call keeps waiting or settles, so decoding never panics
// and never returns a bare failure for traffic that merely is not ours.
type DecodeStatus int

const (
	// DecodeNotOurs marks traffic for another channel or another protocol
	// entirely. It is ignored without logging.
	DecodeNotOurs DecodeStatus = iota

	// DecodeRemoteError marks a well-formed rejection sent by the host.
	DecodeRemoteError

	// DecodeMalformed marks an event addressed to us whose message shape is
	// not part of the protocol.
	DecodeMalformed

	// DecodeOK marks a well-formed protocol response.
	DecodeOK
)

// String returns the classification in the form used by logs and the
// monitor UI.
func (s DecodeStatus) String() string {
	switch s {
	case DecodeNotOurs:
		return "not_ours"
	case DecodeRemoteError:
		return "remote_error"
	case DecodeMalformed:
		return "malformed"
	case DecodeOK:
		return "ok"
	default:
		return fmt.Sprintf("decode_status(%d)", int(s))
	}
}

// Decoded is the outcome of classifying one inbound event. Message is set
// for DecodeOK; Err is set for DecodeRemoteError and DecodeMalformed.
type Decoded struct {
	Status  DecodeStatus
	Message Response
	Err     error
}

// EncodeRequest wraps a request in the channel envelope and serializes it to
// the single JSON string the transport expects as its payload.
func EncodeRequest(req Request) (string, error) {
	payload, err := json.Marshal(Envelope{ID: ChannelID, Message: req})
	if err != nil {
		return "", fmt.Errorf("marshal request envelope: %w", err)
	}
	return string(payload), nil
}

// DecodeInbound classifies one inbound event against the protocol. Events
// for other channels, or whose message is absent or not an object, are
// reported as not ours. An object with a string error field is a remote
// rejection. An object with a string type field is a response and is
// returned without validating the variant; callers match the type they
// expect. Everything else addressed to this channel is malformed.
func DecodeInbound(ev InboundEvent) Decoded {
	if ev.Detail.ID != ChannelID {
		return Decoded{Status: DecodeNotOurs}
	}

	message, ok := ev.Detail.Message.(map[string]any)
	if !ok || message == nil {
		return Decoded{Status: DecodeNotOurs}
	}

	if text, ok := message["error"].(string); ok {
		return Decoded{Status: DecodeRemoteError, Err: &RemoteError{Message: text}}
	}

	msgType, ok := message["type"].(string)
	if !ok {
		return Decoded{Status: DecodeMalformed, Err: ErrMalformedEvent}
	}

	enabled, _ := message["menuButtonIsEnabled"].(bool)
	return Decoded{
		Status:  DecodeOK,
		Message: Response{Type: MessageType(msgType), MenuButtonIsEnabled: enabled},
	}
}

// DecodeRequestPayload parses the serialized envelope of one outgoing
// request. The privileged side and the monitor use it to read traffic
// dispatched by the client.
func DecodeRequestPayload(payload any) (Envelope, error) {
	text, ok := payload.(string)
	if !ok {
		return Envelope{}, fmt.Errorf("request payload is %T, want string", payload)
	}

	var env Envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal request envelope: %w", err)
	}
	return env, nil
}
