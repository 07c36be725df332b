package webchannel

import (
	"context"
	"log/slog"

	"github.com/jalleeeee/profiler/pkg/substrate"
)

// pendingRequest is the correlation state for one in-flight call: the
// response type that settles it, its own substrate subscription, and the
// idempotent stop closure that removes the listener.
type pendingRequest struct {
	expect MessageType
	events <-chan substrate.Event
	stop   func()
	log    *slog.Logger
}

// listenFor registers a response listener before anything is dispatched, so
// a host that answers synchronously cannot slip a response past the caller.
func (c *Client) listenFor(ctx context.Context, expect MessageType) *pendingRequest {
	events, unsubscribe := c.bus.Subscribe(ctx, ResponseEventName)
	return &pendingRequest{
		expect: expect,
		events: events,
		stop:   unsubscribe,
		log:    c.log,
	}
}

// wait consumes inbound events until a terminal outcome settles the call.
// Traffic for other channels and responses of other types keep the listener
// alive; every terminal path removes it exactly once.
func (p *pendingRequest) wait(ctx context.Context) (Response, error) {
	for {
		select {
		case <-ctx.Done():
			p.stop()
			return Response{}, ctx.Err()

		case ev, ok := <-p.events:
			if !ok {
				p.stop()
				return Response{}, ErrSubstrateClosed
			}

			inbound, ok := ev.Payload.(InboundEvent)
			if !ok {
				continue
			}

			decoded := DecodeInbound(inbound)
			switch decoded.Status {
			case DecodeNotOurs:
				continue

			case DecodeRemoteError:
				p.stop()
				p.log.Warn("Request rejected by remote end", "error", decoded.Err)
				return Response{}, decoded.Err

			case DecodeMalformed:
				p.stop()
				p.log.Warn("Malformed event received on channel", "channel_id", ChannelID)
				return Response{}, decoded.Err

			case DecodeOK:
				if decoded.Message.Type != p.expect {
					continue
				}
				p.stop()
				p.log.Debug("Received response", "type", string(decoded.Message.Type))
				return decoded.Message, nil
			}
		}
	}
}
