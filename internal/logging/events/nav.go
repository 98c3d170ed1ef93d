package events

import "github.com/atomicstack/nui-overlay/internal/logging"

type NavTracer struct{}

var Nav = NavTracer{}

func (NavTracer) Action(action, menu, button string) {
	logging.Trace("nav.action", map[string]interface{}{"action": action, "menu": menu, "button": button})
}

func (NavTracer) Ignored(action, reason string) {
	logging.Trace("nav.ignored", map[string]interface{}{"action": action, "reason": reason})
}

func (NavTracer) Window(menu string, index, top int) {
	logging.Trace("nav.window", map[string]interface{}{"menu": menu, "index": index, "top": top})
}

func (NavTracer) Toggle(button string, checked bool) {
	logging.Trace("nav.toggle", map[string]interface{}{"button": button, "checked": checked})
}
