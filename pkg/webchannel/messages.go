// Package webchannel implements the typed request/response protocol the
// profiler web app uses to talk to the privileged browser host. The host
// only offers a fire-and-forget broadcast mechanism, so this package layers
// envelope encoding, one-shot response correlation, and a typed client on
// top of a substrate.Bus.
package webchannel

// ChannelID scopes bridge traffic among other WebChannel users sharing the
// same substrate. Inbound events carrying any other id are ignored.
const ChannelID = "profiler.firefox.com"

// Event names of the two broadcast directions. Requests travel to the
// privileged side, responses come back from it.
const (
	RequestEventName  = "WebChannelMessageToChrome"
	ResponseEventName = "WebChannelMessageToContent"
)

// MessageType discriminates the closed set of protocol messages.
type MessageType string

// Request message types sent by the web side.
const (
	TypeStatusQuery      MessageType = "STATUS_QUERY"
	TypeEnableMenuButton MessageType = "ENABLE_MENU_BUTTON"
)

// Response message types answered by the privileged side.
const (
	TypeStatusResponse       MessageType = "STATUS_RESPONSE"
	TypeEnableMenuButtonDone MessageType = "ENABLE_MENU_BUTTON_DONE"
)

// Request is an outgoing protocol message. Every live variant carries only
// its type tag.
type Request struct {
	Type MessageType `json:"type"`
}

// Response is a decoded incoming protocol message. Fields beyond Type are
// variant-specific; only STATUS_RESPONSE populates MenuButtonIsEnabled.
type Response struct {
	Type                MessageType `json:"type"`
	MenuButtonIsEnabled bool        `json:"menuButtonIsEnabled,omitempty"`
}

// Envelope is the wire wrapper around one outgoing request. It is serialized
// to a single JSON string before dispatch.
type Envelope struct {
	ID      string  `json:"id"`
	Message Request `json:"message"`
}

// InboundEvent is the raw delivery arriving from the privileged side. The
// identifier is structured, but Message stays untrusted until DecodeInbound
// has validated its shape.
type InboundEvent struct {
	Detail Detail `json:"detail"`
}

// Detail carries the channel identifier and the unvalidated message payload
// of one inbound event.
type Detail struct {
	ID      string `json:"id"`
	Message any    `json:"message,omitempty"`
}
