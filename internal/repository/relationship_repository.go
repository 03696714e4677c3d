package repository

import (
	"context"
	"errors"

	"github.com/murmur-app/murmur-backend/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

type RelationshipRepository interface {
	HasFollow(ctx context.Context, followerID, followeeID uint64) (bool, error)
	CreateFollow(ctx context.Context, followerID, followeeID uint64) error
	DeleteFollow(ctx context.Context, followerID, followeeID uint64) error
	HasBlockBetween(ctx context.Context, a, b uint64) (bool, error)
	CreateBlock(ctx context.Context, blockerID, blockedID uint64) error
	DeleteBlock(ctx context.Context, blockerID, blockedID uint64) error
	SetDB(db *gorm.DB)
}

type relationshipRepository struct {
	db *gorm.DB
}

func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *relationshipRepository) HasFollow(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.FollowEdge{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *relationshipRepository) CreateFollow(ctx context.Context, followerID, followeeID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	edge := model.FollowEdge{FollowerID: followerID, FolloweeID: followeeID}
	err := r.db.WithContext(ctx).Create(&edge).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// edge already present, nothing to do
		return nil
	}
	return err
}

func (r *relationshipRepository) DeleteFollow(ctx context.Context, followerID, followeeID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.FollowEdge{}).Error
}

func (r *relationshipRepository) HasBlockBetween(ctx context.Context, a, b uint64) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.BlockEdge{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateBlock inserts the block edge and drops any follow edges between the
// pair in both directions, in one transaction.
func (r *relationshipRepository) CreateBlock(ctx context.Context, blockerID, blockedID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge := model.BlockEdge{BlockerID: blockerID, BlockedID: blockedID}
		if err := tx.Create(&edge).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return tx.
			Where("(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)",
				blockerID, blockedID, blockedID, blockerID).
			Delete(&model.FollowEdge{}).Error
	})
}

func (r *relationshipRepository) DeleteBlock(ctx context.Context, blockerID, blockedID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&model.BlockEdge{}).Error
}
