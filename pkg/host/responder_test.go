package host

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jalleeeee/profiler/pkg/config"
	"github.com/jalleeeee/profiler/pkg/substrate"
	"github.com/jalleeeee/profiler/pkg/webchannel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startResponder runs a responder over the given bus and tears it down with
// the test. It returns once the responder is subscribed.
func startResponder(t *testing.T, bus substrate.Bus, cfg config.HostConfig) *Responder {
	t.Helper()

	responder, err := NewResponder(bus, cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewResponder() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- responder.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("responder did not stop")
		}
	})

	select {
	case <-responder.Ready():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for responder to subscribe")
	}
	return responder
}

func publishRequest(t *testing.T, bus substrate.Bus, id string, message map[string]any) {
	t.Helper()

	payload, err := json.Marshal(map[string]any{"id": id, "message": message})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	if ok := bus.Publish(context.Background(), substrate.Event{
		Name:    webchannel.RequestEventName,
		Payload: string(payload),
	}); !ok {
		t.Fatal("publish request failed")
	}
}

func receiveReply(t *testing.T, events <-chan substrate.Event) webchannel.Decoded {
	t.Helper()

	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("response stream closed")
		}
		inbound, isInbound := ev.Payload.(webchannel.InboundEvent)
		if !isInbound {
			t.Fatalf("response payload is %T, want webchannel.InboundEvent", ev.Payload)
		}
		return webchannel.DecodeInbound(inbound)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for a reply")
	}
	return webchannel.Decoded{}
}

func assertNoReply(t *testing.T, events <-chan substrate.Event) {
	t.Helper()

	select {
	case ev := <-events:
		t.Fatalf("unexpected reply: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNewResponderRequiresBus(t *testing.T) {
	if _, err := NewResponder(nil, config.HostConfig{}, nil); err == nil {
		t.Fatal("NewResponder(nil) did not return an error")
	}
}

func TestStatusQueryAnswered(t *testing.T) {
	bus := substrate.NewBroadcast()
	t.Cleanup(bus.Close)
	startResponder(t, bus, config.HostConfig{MenuButtonEnabled: true})

	replies, unsubscribe := bus.Subscribe(context.Background(), webchannel.ResponseEventName)
	t.Cleanup(unsubscribe)

	publishRequest(t, bus, webchannel.ChannelID, map[string]any{"type": "STATUS_QUERY"})

	decoded := receiveReply(t, replies)
	if decoded.Status != webchannel.DecodeOK {
		t.Fatalf("reply status = %v, want %v", decoded.Status, webchannel.DecodeOK)
	}
	if decoded.Message.Type != webchannel.TypeStatusResponse {
		t.Fatalf("reply type = %q, want %q", decoded.Message.Type, webchannel.TypeStatusResponse)
	}
	if !decoded.Message.MenuButtonIsEnabled {
		t.Fatal("menuButtonIsEnabled = false, want true")
	}
}

func TestEnableMenuButtonFlipsState(t *testing.T) {
	bus := substrate.NewBroadcast()
	t.Cleanup(bus.Close)
	responder := startResponder(t, bus, config.HostConfig{})

	replies, unsubscribe := bus.Subscribe(context.Background(), webchannel.ResponseEventName)
	t.Cleanup(unsubscribe)

	publishRequest(t, bus, webchannel.ChannelID, map[string]any{"type": "ENABLE_MENU_BUTTON"})

	decoded := receiveReply(t, replies)
	if decoded.Status != webchannel.DecodeOK {
		t.Fatalf("reply status = %v, want %v", decoded.Status, webchannel.DecodeOK)
	}
	if decoded.Message.Type != webchannel.TypeEnableMenuButtonDone {
		t.Fatalf("reply type = %q, want %q", decoded.Message.Type, webchannel.TypeEnableMenuButtonDone)
	}
	if !responder.MenuButtonEnabled() {
		t.Fatal("MenuButtonEnabled() = false after enable, want true")
	}
}

func TestEnableMenuButtonDenied(t *testing.T) {
	bus := substrate.NewBroadcast()
	t.Cleanup(bus.Close)
	responder := startResponder(t, bus, config.HostConfig{DenyEnable: true})

	replies, unsubscribe := bus.Subscribe(context.Background(), webchannel.ResponseEventName)
	t.Cleanup(unsubscribe)

	publishRequest(t, bus, webchannel.ChannelID, map[string]any{"type": "ENABLE_MENU_BUTTON"})

	decoded := receiveReply(t, replies)
	if decoded.Status != webchannel.DecodeRemoteError {
		t.Fatalf("reply status = %v, want %v", decoded.Status, webchannel.DecodeRemoteError)
	}
	if responder.MenuButtonEnabled() {
		t.Fatal("MenuButtonEnabled() = true after denied enable, want false")
	}
}

func TestUnknownMessageTypeGetsErrorReply(t *testing.T) {
	bus := substrate.NewBroadcast()
	t.Cleanup(bus.Close)
	startResponder(t, bus, config.HostConfig{})

	replies, unsubscribe := bus.Subscribe(context.Background(), webchannel.ResponseEventName)
	t.Cleanup(unsubscribe)

	publishRequest(t, bus, webchannel.ChannelID, map[string]any{"type": "GET_PROFILE"})

	decoded := receiveReply(t, replies)
	if decoded.Status != webchannel.DecodeRemoteError {
		t.Fatalf("reply status = %v, want %v", decoded.Status, webchannel.DecodeRemoteError)
	}
	var remoteErr *webchannel.RemoteError
	if !errors.As(decoded.Err, &remoteErr) {
		t.Fatalf("reply error = %v, want *webchannel.RemoteError", decoded.Err)
	}
	if !strings.Contains(remoteErr.Message, "GET_PROFILE") {
		t.Fatalf("error message %q does not name the unknown type", remoteErr.Message)
	}
}

func TestForeignChannelRequestIgnored(t *testing.T) {
	bus := substrate.NewBroadcast()
	t.Cleanup(bus.Close)
	startResponder(t, bus, config.HostConfig{})

	replies, unsubscribe := bus.Subscribe(context.Background(), webchannel.ResponseEventName)
	t.Cleanup(unsubscribe)

	publishRequest(t, bus, "screenshots.firefox.com", map[string]any{"type": "STATUS_QUERY"})

	assertNoReply(t, replies)
}

func TestUndecodableRequestPayloadIgnored(t *testing.T) {
	bus := substrate.NewBroadcast()
	t.Cleanup(bus.Close)
	startResponder(t, bus, config.HostConfig{})

	replies, unsubscribe := bus.Subscribe(context.Background(), webchannel.ResponseEventName)
	t.Cleanup(unsubscribe)

	for _, payload := range []any{42, "{not json"} {
		if ok := bus.Publish(context.Background(), substrate.Event{
			Name:    webchannel.RequestEventName,
			Payload: payload,
		}); !ok {
			t.Fatal("publish request failed")
		}
	}

	assertNoReply(t, replies)
}

func TestResponderStopsWhenBusCloses(t *testing.T) {
	bus := substrate.NewBroadcast()

	responder, err := NewResponder(bus, config.HostConfig{}, discardLogger())
	if err != nil {
		t.Fatalf("NewResponder() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- responder.Run(context.Background()) }()

	select {
	case <-responder.Ready():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for responder to subscribe")
	}

	bus.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Run() returned nil after bus close, want error")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Run to exit")
	}
}

func TestResponseDelayHonored(t *testing.T) {
	bus := substrate.NewBroadcast()
	t.Cleanup(bus.Close)
	startResponder(t, bus, config.HostConfig{MenuButtonEnabled: true, ResponseDelayMS: 60})

	replies, unsubscribe := bus.Subscribe(context.Background(), webchannel.ResponseEventName)
	t.Cleanup(unsubscribe)

	start := time.Now()
	publishRequest(t, bus, webchannel.ChannelID, map[string]any{"type": "STATUS_QUERY"})

	decoded := receiveReply(t, replies)
	if decoded.Status != webchannel.DecodeOK {
		t.Fatalf("reply status = %v, want %v", decoded.Status, webchannel.DecodeOK)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("reply arrived after %v, want at least 50ms", elapsed)
	}
}
