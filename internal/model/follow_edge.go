package model

import "time"

// FollowEdge is the directed follow relationship. At most one row exists per
// ordered (follower, followee) pair.
type FollowEdge struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FollowerID uint64    `gorm:"column:follower_id;uniqueIndex:uniq_follow_pair" json:"followerId"`
	FolloweeID uint64    `gorm:"column:followee_id;uniqueIndex:uniq_follow_pair" json:"followeeId"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (FollowEdge) TableName() string {
	return "follow_edges"
}
