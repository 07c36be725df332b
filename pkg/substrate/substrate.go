// Package substrate provides the broadcast event layer that connects the web
// side of the bridge to the privileged host side. Events are scoped by name
// and fan out to every listener subscribed to that name; payloads are opaque
// to the substrate itself.
package substrate

import "context"

// Event is a single named broadcast delivery with an opaque payload.
type Event struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// Bus is the injectable pub/sub contract the bridge components build on.
//
// Publish reports whether the event was accepted; it returns false once the
// bus is closed or the context is done. Subscribe returns the delivery
// channel for one listener plus an idempotent unsubscribe function. The
// channel closes after unsubscribe, context cancellation, or bus shutdown.
type Bus interface {
	Publish(ctx context.Context, ev Event) bool
	Subscribe(ctx context.Context, name string) (<-chan Event, func())
}
