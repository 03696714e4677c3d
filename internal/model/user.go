package model

import "time"

const (
	UserStatusActive   = "active"
	UserStatusPending  = "pending"
	UserStatusDisabled = "disabled"
)

type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"column:username;size:64;uniqueIndex" json:"username"`
	DisplayName  string    `gorm:"column:display_name;size:128" json:"displayName"`
	AvatarURL    *string   `gorm:"column:avatar_url;size:512" json:"avatarUrl,omitempty"`
	PasswordHash string    `gorm:"column:password_hash;size:128" json:"-"`
	Status       string    `gorm:"column:status;size:16;default:active" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
