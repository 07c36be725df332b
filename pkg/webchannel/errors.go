package webchannel

import "errors"

// Terminal failures a bridge call can settle with. RemoteError carries the
// host's own message; the sentinels cover local decode and transport faults.
var (
	// ErrMalformedEvent reports an inbound event addressed to this channel
	// whose message payload does not match any known shape.
	ErrMalformedEvent = errors.New("webchannel: malformed event received")

	// ErrSubstrateClosed reports that the broadcast substrate shut down
	// while a call was being dispatched or awaited.
	ErrSubstrateClosed = errors.New("webchannel: substrate closed")
)

// RemoteError is a failure the privileged side reported through the protocol
// itself, as opposed to a local decode or transport fault.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "webchannel: remote error: " + e.Message
}
