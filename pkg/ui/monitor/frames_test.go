package monitor

import (
	"strings"
	"testing"
	"time"

	"github.com/jalleeeee/profiler/pkg/substrate"
	"github.com/jalleeeee/profiler/pkg/webchannel"
)

func TestFrameFromEventClassifiesTraffic(t *testing.T) {
	requestPayload, err := webchannel.EncodeRequest(webchannel.Request{Type: webchannel.TypeStatusQuery})
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}

	inbound := func(message any) any {
		return webchannel.InboundEvent{Detail: webchannel.Detail{
			ID:      webchannel.ChannelID,
			Message: message,
		}}
	}

	tests := []struct {
		name  string
		ev    substrate.Event
		kind  frameKind
		label string
	}{
		{
			name:  "bridge request",
			ev:    substrate.Event{Name: webchannel.RequestEventName, Payload: requestPayload},
			kind:  kindRequest,
			label: "STATUS_QUERY",
		},
		{
			name:  "unreadable request payload",
			ev:    substrate.Event{Name: webchannel.RequestEventName, Payload: 7},
			kind:  kindForeign,
			label: "unreadable",
		},
		{
			name:  "foreign request",
			ev:    substrate.Event{Name: webchannel.RequestEventName, Payload: `{"id":"screenshots.firefox.com","message":{"type":"STATUS_QUERY"}}`},
			kind:  kindForeign,
			label: "screenshots.firefox.com",
		},
		{
			name:  "status response",
			ev:    substrate.Event{Name: webchannel.ResponseEventName, Payload: inbound(map[string]any{"type": "STATUS_RESPONSE", "menuButtonIsEnabled": true})},
			kind:  kindResponse,
			label: "STATUS_RESPONSE",
		},
		{
			name:  "remote error response",
			ev:    substrate.Event{Name: webchannel.ResponseEventName, Payload: inbound(map[string]any{"error": "boom"})},
			kind:  kindError,
			label: "remote_error",
		},
		{
			name:  "malformed response",
			ev:    substrate.Event{Name: webchannel.ResponseEventName, Payload: inbound(map[string]any{"type": 4})},
			kind:  kindError,
			label: "malformed",
		},
		{
			name:  "unexpected event name",
			ev:    substrate.Event{Name: "WebChannelMessageToNowhere"},
			kind:  kindForeign,
			label: "WebChannelMessageToNowhere",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := frameFromEvent(tt.ev, time.Now())
			if got.kind != tt.kind {
				t.Fatalf("frame kind = %v, want %v", got.kind, tt.kind)
			}
			if got.label != tt.label {
				t.Fatalf("frame label = %q, want %q", got.label, tt.label)
			}
		})
	}
}

func TestStatusResponseFrameShowsFlag(t *testing.T) {
	ev := substrate.Event{
		Name: webchannel.ResponseEventName,
		Payload: webchannel.InboundEvent{Detail: webchannel.Detail{
			ID:      webchannel.ChannelID,
			Message: map[string]any{"type": "STATUS_RESPONSE", "menuButtonIsEnabled": true},
		}},
	}

	got := frameFromEvent(ev, time.Now())
	if !strings.Contains(got.body, "menuButtonIsEnabled=true") {
		t.Fatalf("frame body %q does not show the flag", got.body)
	}
}
