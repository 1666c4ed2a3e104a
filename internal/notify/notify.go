// Package notify carries user-facing messages out of a conversion.
package notify

import (
	"fmt"
	"log"
	"sync"
)

// Level is the severity of a message.
type Level string

const (
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

// Notifier receives best-effort messages. Implementations must not fail.
type Notifier interface {
	Notify(level Level, msg string)
}

// Message is one recorded notification.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.Level, m.Text)
}

// LogNotifier writes messages through the standard logger.
type LogNotifier struct{}

func (LogNotifier) Notify(level Level, msg string) {
	log.Printf("[notify] %s: %s", level, msg)
}

// Recorder keeps every message it receives and forwards them to Next, if set.
type Recorder struct {
	Next Notifier

	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Notify(level Level, msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, Message{Level: level, Text: msg})
	r.mu.Unlock()
	if r.Next != nil {
		r.Next.Notify(level, msg)
	}
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

// Count returns how many messages of the given level were recorded.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.Level == level {
			n++
		}
	}
	return n
}

// Discard drops every message.
type Discard struct{}

func (Discard) Notify(Level, string) {}

// Infof, Warnf and Errorf format a message for n.
func Infof(n Notifier, format string, args ...any) {
	n.Notify(Info, fmt.Sprintf(format, args...))
}

func Warnf(n Notifier, format string, args ...any) {
	n.Notify(Warn, fmt.Sprintf(format, args...))
}

func Errorf(n Notifier, format string, args ...any) {
	n.Notify(Error, fmt.Sprintf(format, args...))
}
