package monitor

import (
	"fmt"
	"time"

	"github.com/jalleeeee/profiler/pkg/substrate"
	"github.com/jalleeeee/profiler/pkg/webchannel"
)

type direction int

const (
	directionOutbound direction = iota
	directionInbound
)

type frameKind int

const (
	kindRequest frameKind = iota
	kindResponse
	kindError
	kindForeign
)

// frame is one rendered line of bridge traffic.
type frame struct {
	at        time.Time
	direction direction
	kind      frameKind
	label     string
	body      string
}

// frameFromEvent classifies one substrate event for display. The monitor
// never drops an event: traffic it cannot decode still shows up, tagged as
// foreign or unreadable.
func frameFromEvent(ev substrate.Event, at time.Time) frame {
	switch ev.Name {
	case webchannel.RequestEventName:
		return requestFrame(ev, at)
	case webchannel.ResponseEventName:
		return responseFrame(ev, at)
	default:
		return frame{
			at:        at,
			direction: directionInbound,
			kind:      kindForeign,
			label:     ev.Name,
			body:      "unexpected event name",
		}
	}
}

func requestFrame(ev substrate.Event, at time.Time) frame {
	out := frame{at: at, direction: directionOutbound}

	env, err := webchannel.DecodeRequestPayload(ev.Payload)
	if err != nil {
		out.kind = kindForeign
		out.label = "unreadable"
		out.body = err.Error()
		return out
	}
	if env.ID != webchannel.ChannelID {
		out.kind = kindForeign
		out.label = env.ID
		out.body = "request for another channel"
		return out
	}

	out.kind = kindRequest
	out.label = string(env.Message.Type)
	out.body = "request dispatched"
	return out
}

func responseFrame(ev substrate.Event, at time.Time) frame {
	out := frame{at: at, direction: directionInbound}

	inbound, ok := ev.Payload.(webchannel.InboundEvent)
	if !ok {
		out.kind = kindForeign
		out.label = "unreadable"
		out.body = fmt.Sprintf("payload is %T", ev.Payload)
		return out
	}

	decoded := webchannel.DecodeInbound(inbound)
	switch decoded.Status {
	case webchannel.DecodeNotOurs:
		out.kind = kindForeign
		out.label = decoded.Status.String()
		out.body = "event for another channel"
	case webchannel.DecodeRemoteError:
		out.kind = kindError
		out.label = decoded.Status.String()
		out.body = decoded.Err.Error()
	case webchannel.DecodeMalformed:
		out.kind = kindError
		out.label = decoded.Status.String()
		out.body = "message shape not recognized"
	default:
		out.kind = kindResponse
		out.label = string(decoded.Message.Type)
		out.body = "confirmation"
		if decoded.Message.Type == webchannel.TypeStatusResponse {
			out.body = fmt.Sprintf("menuButtonIsEnabled=%v", decoded.Message.MenuButtonIsEnabled)
		}
	}
	return out
}
