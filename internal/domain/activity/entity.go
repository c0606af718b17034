package activity

import (
	"encoding/json"
	"time"
)

// Type represents activity event type
type Type string

const (
	TypeExpense    Type = "expense"    // expense created or edited
	TypePayment    Type = "payment"    // payment between two users
	TypeSettlement Type = "settlement" // debts settled up
	TypeGroup      Type = "group"      // group created/renamed
	TypeMember     Type = "member"     // member joined/left
)

// Activity is one append-only feed entry. Events are never mutated after
// creation and never deleted by this service.
type Activity struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID    int64     `gorm:"column:user_id;index:idx_activity_user_created,priority:1" json:"user_id"`
	Type      Type      `gorm:"column:type" json:"type"`
	Metadata  []byte    `gorm:"column:metadata" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_activity_user_created,priority:2" json:"created_at"`
}

// TableName specifies table name for GORM
func (Activity) TableName() string {
	return "activity_events"
}

// SetMetadata encodes the event-specific payload
func (a *Activity) SetMetadata(meta map[string]any) error {
	if meta == nil {
		a.Metadata = nil
		return nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	a.Metadata = b
	return nil
}

// GetMetadata decodes the event-specific payload
func (a *Activity) GetMetadata() map[string]any {
	if len(a.Metadata) == 0 {
		return nil
	}
	var meta map[string]any
	_ = json.Unmarshal(a.Metadata, &meta)
	return meta
}

// Filters compose conjunctively; an unset field means no restriction on
// that dimension. The date range is inclusive on both ends.
type Filters struct {
	Limit    int
	Offset   int
	Types    []Type
	DateFrom *time.Time
	DateTo   *time.Time
}
