// ABOUTME: Notification dispatcher resolving targets against the session registry
// ABOUTME: Missing recipients are logged and dropped, transport errors propagate

package subscription

import (
	"fmt"
	"log/slog"
	"time"
)

// Publisher is the socket transport the dispatcher publishes envelopes to.
// SocketBroadcaster is the in-process implementation.
type Publisher interface {
	// Publish delivers an envelope on a shared destination to every
	// connected session.
	Publish(destination string, envelope NotificationEnvelope) error

	// PublishToSession delivers an envelope on a session-scoped
	// destination to one session.
	PublishToSession(destination string, envelope NotificationEnvelope, handle string) error
}

// Notifier dispatches notification envelopes to socket sessions.
type Notifier struct {
	registry  *Registry
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewNotifier creates a dispatcher over the registry and transport. Pass nil
// logger for the default.
func NewNotifier(registry *Registry, publisher Publisher, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		registry:  registry,
		publisher: publisher,
		logger:    logger.With("component", "notifier"),
		now:       time.Now,
	}
}

// Send resolves the target against the registry and publishes the body to
// the matched sessions. Destination and Created are stamped just before
// publish. A target matching no session logs a warning and returns nil; the
// sender's operation never fails because nobody is listening. Transport
// errors are returned.
func (n *Notifier) Send(body Body, action NotificationAction, target Target) error {
	envelope := NotificationEnvelope{
		Body:   body,
		Action: action,
	}

	switch target.kind {
	case targetBroadcast:
		return n.publish(PathGeneralNotification, envelope)

	case targetUser:
		session, ok := n.registry.FindByUserID(target.userID)
		if !ok {
			n.drop("user", "user_id", target.userID)
			return nil
		}
		return n.publishToSession(body.Path(), envelope, session.Handle)

	case targetRole:
		sessions := n.registry.FindAllByRole(target.role)
		if len(sessions) == 0 {
			n.drop("role", "role", target.role)
			return nil
		}
		for _, session := range sessions {
			if err := n.publishToSession(body.Path(), envelope, session.Handle); err != nil {
				return err
			}
		}
		return nil

	case targetSystem:
		session, ok := n.registry.FindBySystemUUID(target.systemUUID)
		if !ok {
			n.drop("system", "uuid", target.systemUUID)
			return nil
		}
		return n.publishToSession(body.Path(), envelope, session.Handle)

	case targetSession:
		if _, ok := n.registry.Get(target.handle); !ok {
			n.drop("session", "handle", target.handle)
			return nil
		}
		return n.publishToSession(body.Path(), envelope, target.handle)

	default:
		return fmt.Errorf("unknown notification target kind %d", target.kind)
	}
}

// publish stamps the envelope and sends it on a shared destination.
func (n *Notifier) publish(destination string, envelope NotificationEnvelope) error {
	envelope.Destination = destination
	envelope.Created = n.now()
	if err := n.publisher.Publish(destination, envelope); err != nil {
		return fmt.Errorf("publishing to %s: %w", destination, err)
	}
	return nil
}

// publishToSession stamps the envelope with a session-scoped destination
// ("path-{handle}") and sends it to that session.
func (n *Notifier) publishToSession(path string, envelope NotificationEnvelope, handle string) error {
	destination := fmt.Sprintf("%s-%s", path, handle)
	envelope.Destination = destination
	envelope.Created = n.now()
	if err := n.publisher.PublishToSession(destination, envelope, handle); err != nil {
		return fmt.Errorf("publishing to session %s: %w", handle, err)
	}
	return nil
}

// drop logs a notification that matched no live session.
func (n *Notifier) drop(targetKind string, key string, value any) {
	n.logger.Warn("no session for notification, dropping",
		"target", targetKind, key, value)
}
