package events

import "github.com/atomicstack/nui-overlay/internal/logging"

type InboundTracer struct{}

type OutboundTracer struct{}

type ChannelTracer struct{}

var (
	Inbound  = InboundTracer{}
	Outbound = OutboundTracer{}
	Channel  = ChannelTracer{}
)

func (InboundTracer) Received(msgType string, handlers int) {
	logging.Trace("inbound.received", map[string]interface{}{"type": msgType, "handlers": handlers})
}

func (InboundTracer) Malformed(err error) {
	if err == nil {
		return
	}
	logging.Trace("inbound.malformed", map[string]interface{}{"error": err.Error()})
}

func (OutboundTracer) Emit(payload interface{}) {
	logging.Trace("outbound.emit", payload)
}

func (OutboundTracer) Delivered(msgType, requestID string) {
	logging.Trace("outbound.delivered", map[string]interface{}{"type": msgType, "request": requestID})
}

func (OutboundTracer) Error(msgType, requestID string, err error) {
	if err == nil {
		return
	}
	logging.Trace("outbound.error", map[string]interface{}{"type": msgType, "request": requestID, "error": err.Error()})
}

func (ChannelTracer) Subscribe(subscriber string, types []string) {
	logging.Trace("channel.subscribe", map[string]interface{}{"subscriber": subscriber, "types": types})
}

func (ChannelTracer) Unsubscribe(subscriber string) {
	logging.Trace("channel.unsubscribe", map[string]interface{}{"subscriber": subscriber})
}

func (ChannelTracer) Connected(url string) {
	logging.Trace("channel.connected", map[string]interface{}{"url": url})
}

func (ChannelTracer) Disconnected(url string, err error) {
	payload := map[string]interface{}{"url": url}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("channel.disconnected", payload)
}
