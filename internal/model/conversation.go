package model

import "time"

// Conversation is the unique messaging channel between two users. The pair is
// stored in canonical order (smaller id first) so the unordered pair maps to
// exactly one row; the unique index enforces that under concurrent creation.
type Conversation struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ParticipantLow  uint64    `gorm:"column:participant_low;uniqueIndex:uniq_participant_pair" json:"participantLow"`
	ParticipantHigh uint64    `gorm:"column:participant_high;uniqueIndex:uniq_participant_pair" json:"participantHigh"`
	LastActivityAt  time.Time `gorm:"column:last_activity_at;index" json:"lastActivityAt"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// PairKey normalizes two user ids into canonical (low, high) order.
func PairKey(a, b uint64) (uint64, uint64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Includes reports whether uid is one of the two participants.
func (c *Conversation) Includes(uid uint64) bool {
	return c.ParticipantLow == uid || c.ParticipantHigh == uid
}

// Other returns the participant that is not uid.
func (c *Conversation) Other(uid uint64) uint64 {
	if c.ParticipantLow == uid {
		return c.ParticipantHigh
	}
	return c.ParticipantLow
}
