// ABOUTME: Notification envelope, body kinds, actions, and addressing targets
// ABOUTME: Socket path constants mirror the destinations clients subscribe to

package subscription

import (
	"time"

	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

// Socket destination paths clients subscribe to.
const (
	PathGeneralNotification    = "/topic/general/notification"
	PathUserNotification       = "/queue/user/notification"
	PathSystemNotification     = "/queue/system/notification"
	PathSystemLinkNotification = "/queue/system-link/notification"
)

// NotificationAction marks the CRUD operation a notification describes.
type NotificationAction string

const (
	ActionCreate NotificationAction = "C"
	ActionRead   NotificationAction = "R"
	ActionUpdate NotificationAction = "U"
	ActionDelete NotificationAction = "D"
)

// BodyType discriminates notification body kinds on the wire.
type BodyType string

const (
	BodyTypeUser          BodyType = "USER"
	BodyTypeSystemFailure BodyType = "SYSTEM_FAILURE"
	BodyTypeSystemLink    BodyType = "SYSTEM_LINK"
)

// Body is a notification payload. Each kind declares its discriminator and
// the socket path it is delivered on.
type Body interface {
	Type() BodyType
	Path() string
}

// UserNotification announces user activity, such as a new account.
type UserNotification struct {
	Kind   BodyType `json:"type"`
	UserID int      `json:"userId"`
	Name   string   `json:"name"`
}

// NewUserNotification builds a user notification body.
func NewUserNotification(userID int, name string) UserNotification {
	return UserNotification{Kind: BodyTypeUser, UserID: userID, Name: name}
}

func (n UserNotification) Type() BodyType { return BodyTypeUser }
func (n UserNotification) Path() string   { return PathUserNotification }

// SystemFailureNotification reports a hydro system fault to its operators.
type SystemFailureNotification struct {
	Kind    BodyType `json:"type"`
	Message string   `json:"message"`
}

// NewSystemFailureNotification builds a system failure body.
func NewSystemFailureNotification(message string) SystemFailureNotification {
	return SystemFailureNotification{Kind: BodyTypeSystemFailure, Message: message}
}

func (n SystemFailureNotification) Type() BodyType { return BodyTypeSystemFailure }
func (n SystemFailureNotification) Path() string   { return PathSystemNotification }

// SystemLinkNotification carries a link request code to a hydro system so it
// can display the code for the requesting user to confirm.
type SystemLinkNotification struct {
	Kind   BodyType `json:"type"`
	UUID   string   `json:"uuid"`
	Code   string   `json:"code"`
	UserID int      `json:"userId"`
}

// NewSystemLinkNotification builds a link request body.
func NewSystemLinkNotification(uuid, code string, userID int) SystemLinkNotification {
	return SystemLinkNotification{Kind: BodyTypeSystemLink, UUID: uuid, Code: code, UserID: userID}
}

func (n SystemLinkNotification) Type() BodyType { return BodyTypeSystemLink }
func (n SystemLinkNotification) Path() string   { return PathSystemLinkNotification }

// NotificationEnvelope is the unit published to the socket transport.
// Destination and Created are stamped by the dispatcher just before publish.
type NotificationEnvelope struct {
	Body        Body               `json:"body"`
	Destination string             `json:"destination"`
	Action      NotificationAction `json:"action"`
	Created     time.Time          `json:"created"`
}

// Target addresses a notification. Exactly one constructor applies per send.
type Target struct {
	kind       targetKind
	userID     int
	role       dictionary.WebRole
	systemUUID string
	handle     string
}

type targetKind int

const (
	targetBroadcast targetKind = iota
	targetUser
	targetRole
	targetSystem
	targetSession
)

// Broadcast addresses every connected session.
func Broadcast() Target { return Target{kind: targetBroadcast} }

// ToUser addresses the first session belonging to the user id.
func ToUser(userID int) Target { return Target{kind: targetUser, userID: userID} }

// ToRole addresses every session whose principal holds exactly the role.
func ToRole(role dictionary.WebRole) Target { return Target{kind: targetRole, role: role} }

// ToSystem addresses the session of the hydro system with the uuid.
func ToSystem(uuid string) Target { return Target{kind: targetSystem, systemUUID: uuid} }

// ToSession addresses one session by handle.
func ToSession(handle string) Target { return Target{kind: targetSession, handle: handle} }
