package model

import "time"

// BlockEdge is the directed block relationship. A row in either direction
// between two users suppresses messaging regardless of follow state.
type BlockEdge struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BlockerID uint64    `gorm:"column:blocker_id;uniqueIndex:uniq_block_pair" json:"blockerId"`
	BlockedID uint64    `gorm:"column:blocked_id;uniqueIndex:uniq_block_pair" json:"blockedId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (BlockEdge) TableName() string {
	return "block_edges"
}
