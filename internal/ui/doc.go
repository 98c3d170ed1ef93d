// Package ui contains the Bubble Tea program that renders the overlay menus
// mirrored from the host.
//
// Message flow:
//   - A backend.Listener streams frames from the host; Update waits for those
//     events and hands each decoded message to the channel.Router, which
//     fans it out to the dispatcher (store lifecycle) and the engine
//     (navigation and the ready handshake).
//   - Key presses are translated into the same action messages the host
//     sends, so local driving and host driving share one code path.
//   - Bubble Tea invokes Model.Update with incoming messages; a typed handler
//     registry keeps each tea.Msg in a focused function.
//
// State ownership:
//   - Menus and buttons live in internal/state. The model never mutates them
//     directly; it only reads through the derived view helpers when
//     rendering.
//   - Index, viewport and list cursor changes are made by internal/engine,
//     which also derives every outbound message.
//
// Because Update is the only goroutine that touches the store, all mutation
// happens one message at a time.
package ui
