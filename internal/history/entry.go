package history

import "time"

// Entry is one persisted conversation turn. The store assigns the id and the
// creation time; callers never supply either.
type Entry struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"` // ULID
	UserID    uint64    `gorm:"not null;index:idx_history_user_id,priority:1" json:"-"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index:idx_history_user_id,priority:2" json:"created_at"`
}

func (Entry) TableName() string { return "chat_history" }
