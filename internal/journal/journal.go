// Package journal appends every inbound and outbound message to a SQLite
// database for later inspection. Nothing is ever restored from it.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/atomicstack/nui-overlay/internal/channel"
	"github.com/atomicstack/nui-overlay/internal/logging"
	"github.com/atomicstack/nui-overlay/internal/protocol"
)

// Subscriber is the router name the journal registers under.
const Subscriber = "journal"

// Direction marks which way a journalled message travelled.
type Direction string

const (
	Inbound  Direction = "in"
	Outbound Direction = "out"
)

// Entry is one journalled message.
type Entry struct {
	ID        int64
	Run       string
	Time      time.Time
	Direction Direction
	Type      string
	RequestID string
	Body      string
	Error     string
}

// Journal writes messages to SQLite.
type Journal struct {
	db  *sql.DB
	run string

	closeOnce sync.Once
}

// Open creates or opens the journal at path. run tags every entry written
// by this process.
func Open(path, run string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// one connection serialises writes from the send goroutines
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}
	j := &Journal{db: db, run: run}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run TEXT NOT NULL,
		recorded_at INTEGER NOT NULL,
		direction TEXT NOT NULL,
		type TEXT NOT NULL,
		request_id TEXT,
		body TEXT NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_messages_run ON messages(run);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("initialise journal schema: %w", err)
	}
	return nil
}

// RecordInbound journals a message received from the host.
func (j *Journal) RecordInbound(msg protocol.Inbound) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode inbound: %w", err)
	}
	return j.insert(Inbound, string(msg.Type), "", body, nil)
}

// RecordOutbound journals a message sent to the host along with the result
// of its delivery.
func (j *Journal) RecordOutbound(msg protocol.Outbound, requestID string, sendErr error) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode outbound: %w", err)
	}
	return j.insert(Outbound, string(msg.Type), requestID, body, sendErr)
}

// Sent implements channel.Observer. Journal failures are logged.
func (j *Journal) Sent(msg protocol.Outbound, requestID string, err error) {
	if jerr := j.RecordOutbound(msg, requestID, err); jerr != nil {
		logging.Error(jerr)
	}
}

// Handlers returns router handlers that journal every inbound type.
func (j *Journal) Handlers() channel.Handlers {
	handlers := channel.Handlers{}
	for _, t := range protocol.InboundTypes() {
		handlers[t] = func(msg protocol.Inbound) {
			if err := j.RecordInbound(msg); err != nil {
				logging.Error(err)
			}
		}
	}
	return handlers
}

func (j *Journal) insert(dir Direction, msgType, requestID string, body []byte, sendErr error) error {
	var errText sql.NullString
	if sendErr != nil {
		errText = sql.NullString{String: sendErr.Error(), Valid: true}
	}
	var reqID sql.NullString
	if requestID != "" {
		reqID = sql.NullString{String: requestID, Valid: true}
	}
	_, err := j.db.Exec(
		`INSERT INTO messages (run, recorded_at, direction, type, request_id, body, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.run, time.Now().UnixNano(), string(dir), msgType, reqID, string(body), errText,
	)
	if err != nil {
		return fmt.Errorf("journal %s %s: %w", dir, msgType, err)
	}
	return nil
}

// Entries returns the most recent entries of this run, oldest first. A
// limit of zero or less returns all of them.
func (j *Journal) Entries(limit int) ([]Entry, error) {
	query := `SELECT id, run, recorded_at, direction, type, request_id, body, error
		FROM messages WHERE run = ? ORDER BY id DESC`
	args := []interface{}{j.run}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			nanos    int64
			dir      string
			reqID    sql.NullString
			errorMsg sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Run, &nanos, &dir, &e.Type, &reqID, &e.Body, &errorMsg); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.Time = time.Unix(0, nanos)
		e.Direction = Direction(dir)
		e.RequestID = reqID.String
		e.Error = errorMsg.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	for i, k := 0, len(entries)-1; i < k; i, k = i+1, k-1 {
		entries[i], entries[k] = entries[k], entries[i]
	}
	return entries, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	var err error
	j.closeOnce.Do(func() {
		err = j.db.Close()
	})
	return err
}
