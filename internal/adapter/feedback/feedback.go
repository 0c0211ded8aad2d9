// Package feedback collects short user-facing notices about cart and
// favorites actions until the client picks them up.
package feedback

import (
	"slices"
	"sync"
	"time"
)

const DefaultCapacity = 32

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Message struct {
	Level Level     `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// Journal keeps at most capacity messages; the oldest are dropped first.
type Journal struct {
	capacity int
	now      func() time.Time

	mu   sync.Mutex
	msgs []Message
}

func New(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Journal{capacity: capacity, now: time.Now}
}

func (j *Journal) Push(level Level, text string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.msgs = append(j.msgs, Message{Level: level, Text: text, At: j.now().UTC()})
	if over := len(j.msgs) - j.capacity; over > 0 {
		j.msgs = slices.Delete(j.msgs, 0, over)
	}
}

// Drain returns the pending messages oldest first and empties the journal.
func (j *Journal) Drain() []Message {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := j.msgs
	j.msgs = nil
	if out == nil {
		out = []Message{}
	}
	return out
}
