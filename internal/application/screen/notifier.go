// Package screen holds the state shared by every admin screen: list
// controllers with client-side paging, transient notifications and form
// validation.
package screen

import (
	"context"

	"go.uber.org/zap"
)

// Kind classifies a notification
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is a transient message for the user (a toast)
type Notification struct {
	Kind Kind
	Text string
}

// Notifier surfaces notifications to the user
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the log. It is the fallback when no
// host surface is attached.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

// Notify implements Notifier
func (n *LogNotifier) Notify(ctx context.Context, note Notification) {
	fields := []zap.Field{zap.String("kind", string(note.Kind))}
	if note.Kind == KindError {
		n.logger.Warn(note.Text, fields...)
		return
	}
	n.logger.Info(note.Text, fields...)
}

// ChannelNotifier buffers notifications for a host UI loop or a test.
// When the buffer is full the oldest pending notification is dropped.
type ChannelNotifier struct {
	ch chan Notification
}

// NewChannelNotifier creates a notifier with the given buffer size
func NewChannelNotifier(size int) *ChannelNotifier {
	if size < 1 {
		size = 1
	}
	return &ChannelNotifier{ch: make(chan Notification, size)}
}

// Notify implements Notifier and never blocks
func (n *ChannelNotifier) Notify(_ context.Context, note Notification) {
	for {
		select {
		case n.ch <- note:
			return
		default:
		}
		select {
		case <-n.ch:
		default:
		}
	}
}

// C returns the receive side
func (n *ChannelNotifier) C() <-chan Notification {
	return n.ch
}

// Drain returns every pending notification without blocking
func (n *ChannelNotifier) Drain() []Notification {
	var out []Notification
	for {
		select {
		case note := <-n.ch:
			out = append(out, note)
		default:
			return out
		}
	}
}

// Texts returns the text of every pending notification, draining them
func (n *ChannelNotifier) Texts() []string {
	notes := n.Drain()
	out := make([]string, len(notes))
	for i, note := range notes {
		out[i] = note.Text
	}
	return out
}

// Multi fans a notification out to several notifiers
type Multi []Notifier

// Notify implements Notifier
func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, nt := range m {
		nt.Notify(ctx, n)
	}
}
