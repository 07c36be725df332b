package webchannel

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jalleeeee/profiler/pkg/substrate"
)

// Client is the typed façade over the request/response protocol. Callers see
// plain method calls; the broadcast substrate, envelopes, and correlation
// stay behind it. A Client is safe for concurrent use, and concurrent calls
// of the same type all settle from a single matching response.
type Client struct {
	bus substrate.Bus
	log *slog.Logger
}

// NewClient builds a client on top of the given substrate. A nil logger
// falls back to slog.Default.
func NewClient(bus substrate.Bus, log *slog.Logger) (*Client, error) {
	if bus == nil {
		return nil, errors.New("substrate bus is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		bus: bus,
		log: log.With("component", "webchannel"),
	}, nil
}

// QueryMenuButtonEnabled asks the privileged side whether the profiler menu
// button is currently enabled. It blocks until a response settles the call
// or ctx is done; the client imposes no deadline of its own.
func (c *Client) QueryMenuButtonEnabled(ctx context.Context) (bool, error) {
	resp, err := c.roundTrip(ctx, Request{Type: TypeStatusQuery}, TypeStatusResponse)
	if err != nil {
		return false, err
	}
	return resp.MenuButtonIsEnabled, nil
}

// EnableMenuButton asks the privileged side to enable the profiler menu
// button and blocks until the host confirms, the host rejects, or ctx is
// done.
func (c *Client) EnableMenuButton(ctx context.Context) error {
	_, err := c.roundTrip(ctx, Request{Type: TypeEnableMenuButton}, TypeEnableMenuButtonDone)
	return err
}

// roundTrip performs one request/response exchange: register the response
// listener, dispatch the encoded request, then wait for a terminal outcome.
func (c *Client) roundTrip(ctx context.Context, req Request, expect MessageType) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := EncodeRequest(req)
	if err != nil {
		return Response{}, err
	}

	pending := c.listenFor(ctx, expect)

	if ok := c.bus.Publish(ctx, substrate.Event{Name: RequestEventName, Payload: payload}); !ok {
		pending.stop()
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		return Response{}, ErrSubstrateClosed
	}
	c.log.Debug("Sent request", "type", string(req.Type))

	return pending.wait(ctx)
}
