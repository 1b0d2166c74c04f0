// ABOUTME: In-memory fan-out transport delivering envelopes to SSE sessions
// ABOUTME: One buffered channel per session handle, slow consumers drop events

package subscription

import (
	"context"
	"log/slog"
	"sync"
)

// sessionBufferSize is the channel buffer for each connected session.
const sessionBufferSize = 64

// SocketBroadcaster is the in-process socket transport. Each connected
// session subscribes with its handle and receives published envelopes over
// a buffered channel. It satisfies Publisher for the Notifier.
type SocketBroadcaster struct {
	mu       sync.RWMutex
	channels map[string]chan NotificationEnvelope // handle -> ch
	logger   *slog.Logger
}

// NewSocketBroadcaster creates a broadcaster. Pass nil logger for default.
func NewSocketBroadcaster(logger *slog.Logger) *SocketBroadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocketBroadcaster{
		channels: make(map[string]chan NotificationEnvelope),
		logger:   logger.With("component", "broadcaster"),
	}
}

// Subscribe registers a session's delivery channel under its handle. The
// subscription is cleaned up when ctx is cancelled; the returned channel is
// closed at that point.
func (b *SocketBroadcaster) Subscribe(ctx context.Context, handle string) <-chan NotificationEnvelope {
	ch := make(chan NotificationEnvelope, sessionBufferSize)

	b.mu.Lock()
	b.channels[handle] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "handle", handle)

	go func() {
		<-ctx.Done()
		b.Unsubscribe(handle)
	}()

	return ch
}

// Unsubscribe removes a session's channel and closes it. Unknown handles
// are a no-op.
func (b *SocketBroadcaster) Unsubscribe(handle string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.channels[handle]
	if !ok {
		return
	}
	delete(b.channels, handle)
	close(ch)

	b.logger.Debug("subscriber removed", "handle", handle)
}

// Publish delivers the envelope to every connected session. Non-blocking:
// the envelope is dropped for sessions whose channels are full.
func (b *SocketBroadcaster) Publish(destination string, envelope NotificationEnvelope) error {
	b.mu.RLock()
	targets := make([]chan NotificationEnvelope, 0, len(b.channels))
	for _, ch := range b.channels {
		targets = append(targets, ch)
	}
	b.mu.RUnlock()

	for _, ch := range targets {
		b.send(ch, envelope, destination)
	}
	return nil
}

// PublishToSession delivers the envelope to one session. A handle without a
// live channel is a silent drop; the registry check already warned.
func (b *SocketBroadcaster) PublishToSession(destination string, envelope NotificationEnvelope, handle string) error {
	b.mu.RLock()
	ch, ok := b.channels[handle]
	b.mu.RUnlock()

	if !ok {
		return nil
	}
	b.send(ch, envelope, destination)
	return nil
}

func (b *SocketBroadcaster) send(ch chan NotificationEnvelope, envelope NotificationEnvelope, destination string) {
	select {
	case ch <- envelope:
	default:
		b.logger.Debug("dropped envelope for slow subscriber",
			"destination", destination)
	}
}

// Close shuts down the broadcaster and closes all session channels.
func (b *SocketBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for handle, ch := range b.channels {
		close(ch)
		delete(b.channels, handle)
	}

	b.logger.Debug("broadcaster closed")
}
