package notification

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Type represents notification type
type Type string

const (
	TypeExpenseAdded    Type = "expense_added"    // Participant: someone added an expense you are part of
	TypePaymentReminder Type = "payment_reminder" // Debtor: you still owe money
	TypeDebtUpdate      Type = "debt_update"      // Both parties: a balance between two users changed
	TypeSettlement      Type = "settlement"       // Creditor: a debt was settled
	TypeGroupInvite     Type = "group_invite"     // Invitee: you were added to a group
)

// Notification represents a user notification. ReadAt is monotonic: once
// set it is never cleared or moved; deletion is a hard removal.
type Notification struct {
	ID     int64  `gorm:"primaryKey;column:id" json:"id"`
	UserID int64  `gorm:"column:user_id;index:idx_notifications_user_created,priority:1;uniqueIndex:idx_notifications_dedupe,priority:1" json:"user_id"`
	Type   Type   `gorm:"column:type" json:"type"`
	Title  string `gorm:"column:title" json:"title"`
	Body   string `gorm:"column:body" json:"body,omitempty"`
	Data   []byte `gorm:"column:data" json:"-"`

	// DedupeKey suppresses repeated trigger notifications (e.g. the same
	// payment reminder fired twice); NULL rows never collide.
	DedupeKey *string `gorm:"column:dedupe_key;uniqueIndex:idx_notifications_dedupe,priority:2" json:"-"`

	IsRead    bool         `gorm:"column:is_read" json:"is_read"`
	ReadAt    sql.NullTime `gorm:"column:read_at" json:"-"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime;index:idx_notifications_user_created,priority:2" json:"created_at"`
}

// TableName specifies table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// Counts is derived from store state on every request, never cached.
type Counts struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

// SetData encodes the message-specific payload
func (n *Notification) SetData(data map[string]any) error {
	if data == nil {
		n.Data = nil
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	n.Data = b
	return nil
}

// GetData decodes the message-specific payload
func (n *Notification) GetData() map[string]any {
	if len(n.Data) == 0 {
		return nil
	}
	var data map[string]any
	_ = json.Unmarshal(n.Data, &data)
	return data
}
