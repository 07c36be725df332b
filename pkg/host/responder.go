// Package host simulates the privileged browser side of the bridge. The
// responder subscribes to request traffic, answers in the wire shapes the
// web side decodes, and owns the one piece of state the protocol exposes:
// whether the profiler menu button is enabled.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jalleeeee/profiler/pkg/config"
	"github.com/jalleeeee/profiler/pkg/substrate"
	"github.com/jalleeeee/profiler/pkg/webchannel"
)

// Responder answers bridge requests. It is safe for concurrent use.
type Responder struct {
	bus   substrate.Bus
	log   *slog.Logger
	delay time.Duration
	deny  bool

	ready     chan struct{}
	readyOnce sync.Once

	mu      sync.Mutex
	enabled bool
}

// NewResponder builds a responder from host configuration. A nil logger
// falls back to slog.Default.
func NewResponder(bus substrate.Bus, cfg config.HostConfig, log *slog.Logger) (*Responder, error) {
	if bus == nil {
		return nil, errors.New("substrate bus is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Responder{
		bus:     bus,
		log:     log.With("component", "host.responder"),
		delay:   cfg.ResponseDelay(),
		deny:    cfg.DenyEnable,
		ready:   make(chan struct{}),
		enabled: cfg.MenuButtonEnabled,
	}, nil
}

// MenuButtonEnabled reports the current menu button state.
func (r *Responder) MenuButtonEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

func (r *Responder) setMenuButtonEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// Ready is closed once the responder is subscribed and answering. Callers
// that dispatch requests right after starting Run should wait on it first.
func (r *Responder) Ready() <-chan struct{} {
	return r.ready
}

// Run answers request traffic until ctx is done or the substrate closes.
func (r *Responder) Run(ctx context.Context) error {
	events, unsubscribe := r.bus.Subscribe(ctx, webchannel.RequestEventName)
	defer unsubscribe()

	r.readyOnce.Do(func() { close(r.ready) })
	r.log.Info("Host responder started",
		"menu_button_enabled", r.MenuButtonEnabled(),
		"deny_enable", r.deny,
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("request event stream closed")
			}
			r.handle(ctx, ev)
		}
	}
}

// handle answers one request event. Undecodable payloads and foreign channel
// ids are ignored without a reply; everything addressed to us is answered,
// unknown types with a protocol error.
func (r *Responder) handle(ctx context.Context, ev substrate.Event) {
	envelope, err := webchannel.DecodeRequestPayload(ev.Payload)
	if err != nil {
		r.log.Debug("Ignoring undecodable request payload", "error", err)
		return
	}
	if envelope.ID != webchannel.ChannelID {
		r.log.Debug("Ignoring request for another channel", "channel_id", envelope.ID)
		return
	}

	if r.delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.delay):
		}
	}

	switch envelope.Message.Type {
	case webchannel.TypeStatusQuery:
		r.reply(ctx, map[string]any{
			"type":                string(webchannel.TypeStatusResponse),
			"menuButtonIsEnabled": r.MenuButtonEnabled(),
		})

	case webchannel.TypeEnableMenuButton:
		if r.deny {
			r.replyError(ctx, "ENABLE_MENU_BUTTON is not allowed by this host")
			return
		}
		r.setMenuButtonEnabled(true)
		r.reply(ctx, map[string]any{
			"type": string(webchannel.TypeEnableMenuButtonDone),
		})

	default:
		r.replyError(ctx, fmt.Sprintf("unknown message type: %s", envelope.Message.Type))
	}
}

// reply publishes one response event carrying the given message object.
func (r *Responder) reply(ctx context.Context, message map[string]any) {
	ev := substrate.Event{
		Name: webchannel.ResponseEventName,
		Payload: webchannel.InboundEvent{
			Detail: webchannel.Detail{ID: webchannel.ChannelID, Message: message},
		},
	}
	if ok := r.bus.Publish(ctx, ev); !ok {
		r.log.Warn("Dropped reply, substrate unavailable")
		return
	}
	r.log.Debug("Answered request", "reply", message)
}

func (r *Responder) replyError(ctx context.Context, text string) {
	r.log.Warn("Rejecting request", "error", text)
	r.reply(ctx, map[string]any{"error": text})
}
