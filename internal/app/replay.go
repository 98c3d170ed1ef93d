package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/atomicstack/nui-overlay/internal/channel"
	"github.com/atomicstack/nui-overlay/internal/data/dispatcher"
	"github.com/atomicstack/nui-overlay/internal/engine"
	"github.com/atomicstack/nui-overlay/internal/format/table"
	"github.com/atomicstack/nui-overlay/internal/protocol"
	"github.com/atomicstack/nui-overlay/internal/state"
)

// Script is a recorded sequence of host messages.
type Script struct {
	WindowLength int                      `yaml:"windowLength"`
	Messages     []map[string]interface{} `yaml:"messages"`
}

var replayHeader = []string{"STEP", "INBOUND", "OUTBOUND", "MENU", "BUTTON", "VALUE"}

// Replay feeds a YAML script of inbound messages through a fresh store and
// engine and writes the outbound messages each step produced as a table.
// Step 0 is the startup ready. A script windowLength overrides
// windowLength.
func Replay(ctx context.Context, r io.Reader, w io.Writer, windowLength int) error {
	var script Script
	if err := yaml.NewDecoder(r).Decode(&script); err != nil && err != io.EOF {
		return fmt.Errorf("decode script: %w", err)
	}
	if script.WindowLength > 0 {
		windowLength = script.WindowLength
	}

	store := state.NewStore()
	router := channel.NewRouter()
	dispatcher.New(store).Bind(router)
	rec := engine.NewRecorder(nil)
	eng := engine.New(store, rec, engine.Options{WindowLength: windowLength})
	eng.Activate(router)
	defer eng.Stop()
	eng.Start()

	rows := [][]string{replayHeader}
	rows = appendOutbound(rows, "0", "start", rec.Messages())

	for i, raw := range script.Messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := i + 1
		data, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("step %d: encode message: %w", step, err)
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			return fmt.Errorf("step %d: %w", step, err)
		}
		before := len(rec.Messages())
		router.Dispatch(msg)
		rows = appendOutbound(rows, strconv.Itoa(step), inboundLabel(msg), rec.Messages()[before:])
	}

	_, err := io.WriteString(w, table.Render(rows, []table.Alignment{table.AlignRight}))
	return err
}

func inboundLabel(msg protocol.Inbound) string {
	if msg.Type == protocol.TypeAction {
		return string(msg.Type) + ":" + msg.Action
	}
	return string(msg.Type)
}

// appendOutbound adds one row per outbound message, or a single placeholder
// row when the step produced nothing.
func appendOutbound(rows [][]string, step, inbound string, msgs []protocol.Outbound) [][]string {
	if len(msgs) == 0 {
		return append(rows, []string{step, inbound, "-", "-", "-", "-"})
	}
	for _, msg := range msgs {
		rows = append(rows, []string{
			step,
			inbound,
			string(msg.Type),
			orDash(msg.Menu.String()),
			orDash(msg.Button.String()),
			outboundValue(msg),
		})
	}
	return rows
}

func outboundValue(msg protocol.Outbound) string {
	switch {
	case msg.Index != nil:
		return strconv.Itoa(*msg.Index)
	case msg.Checked != nil:
		return strconv.FormatBool(*msg.Checked)
	}
	return "-"
}

func orDash(text string) string {
	if text == "" {
		return "-"
	}
	return text
}
