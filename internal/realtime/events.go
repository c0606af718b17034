package realtime

// Server → client event types.
const (
	EventNewNotification      = "new-notification"
	EventNotificationRead     = "notification-read"
	EventAllNotificationsRead = "all-notifications-read"
	EventUnreadCountUpdate    = "unread-count-update"
	EventActivityRecorded     = "activity-recorded"
	EventPong                 = "pong"
	EventError                = "error"
)

// Client → gateway control message types.
const (
	MsgJoinRoom        = "join-room"
	MsgLeaveRoom       = "leave-room"
	MsgReadSync        = "read-sync"
	MsgMarkAllReadSync = "mark-all-read-sync"
	MsgPing            = "ping"
)

// Event is one live message pushed to a user's connected devices.
// Delivery is advisory: the REST query path stays the source of truth.
type Event struct {
	Type           string `json:"type"`
	UserID         int64  `json:"user_id,omitempty"`
	NotificationID int64  `json:"notification_id,omitempty"`
	Count          *int64 `json:"count,omitempty"`
	Notification   any    `json:"notification,omitempty"`
	Payload        any    `json:"payload,omitempty"`
	ErrorCode      string `json:"code,omitempty"`
	ErrorMessage   string `json:"message,omitempty"`
}

// clientMessage is what devices send over the socket.
type clientMessage struct {
	Type           string `json:"type"`
	UserID         int64  `json:"user_id,omitempty"`
	NotificationID int64  `json:"notification_id,omitempty"`
}

func NewNotificationEvent(userID int64, record any) Event {
	return Event{
		Type:         EventNewNotification,
		UserID:       userID,
		Notification: record,
	}
}

func NotificationReadEvent(userID, notificationID int64) Event {
	return Event{
		Type:           EventNotificationRead,
		UserID:         userID,
		NotificationID: notificationID,
	}
}

func AllNotificationsReadEvent(userID int64) Event {
	return Event{
		Type:   EventAllNotificationsRead,
		UserID: userID,
	}
}

func UnreadCountEvent(count int64) Event {
	return Event{
		Type:  EventUnreadCountUpdate,
		Count: &count,
	}
}

func ActivityRecordedEvent(payload any) Event {
	return Event{
		Type:    EventActivityRecorded,
		Payload: payload,
	}
}

func PongEvent() Event {
	return Event{Type: EventPong}
}

func ErrorEvent(code, message string) Event {
	return Event{
		Type:         EventError,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}
