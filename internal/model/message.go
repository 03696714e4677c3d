package model

import "time"

// Message belongs to exactly one conversation. The two deleted flags are
// independent per-side soft deletes: a message stays in storage until both are
// set, at which point the row may be purged. Order within a conversation is
// (created_at, id) ascending, id breaking timestamp ties.
type Message struct {
	ID                 uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID     uint64    `gorm:"column:conversation_id;index" json:"conversationId"`
	SenderID           uint64    `gorm:"column:sender_id;index" json:"senderId"`
	Body               string    `gorm:"type:text;not null" json:"body"`
	IsRead             bool      `gorm:"column:is_read;not null;default:false" json:"isRead"`
	DeletedBySender    bool      `gorm:"column:deleted_by_sender;not null;default:false" json:"-"`
	DeletedByRecipient bool      `gorm:"column:deleted_by_recipient;not null;default:false" json:"-"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}

// VisibleTo reports whether viewer still sees this message, i.e. the soft
// delete flag for the viewer's own side is not set.
func (m *Message) VisibleTo(viewer uint64) bool {
	if m.SenderID == viewer {
		return !m.DeletedBySender
	}
	return !m.DeletedByRecipient
}
