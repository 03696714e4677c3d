package repository

import (
	"context"
	"errors"
	"time"

	"github.com/murmur-app/murmur-backend/internal/model"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	GetOrCreate(ctx context.Context, userA, userB uint64) (*model.Conversation, bool, error)
	FindByPair(ctx context.Context, userA, userB uint64) (*model.Conversation, error)
	FindByID(ctx context.Context, id uint64) (*model.Conversation, error)
	ListByUser(ctx context.Context, uid uint64) ([]model.Conversation, error)
	SetDB(db *gorm.DB)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) SetDB(db *gorm.DB) {
	r.db = db
}

// GetOrCreate returns the conversation for the unordered pair, creating it if
// absent. Uniqueness is owned by the index on (participant_low,
// participant_high): a lost race surfaces as a duplicate-key error and is
// resolved by re-fetching the winner's row. The bool reports whether this call
// created the row.
func (r *conversationRepository) GetOrCreate(ctx context.Context, userA, userB uint64) (*model.Conversation, bool, error) {
	if r.db == nil {
		return nil, false, ErrDBNotReady
	}
	low, high := model.PairKey(userA, userB)

	cv, err := r.FindByPair(ctx, userA, userB)
	if err == nil {
		return cv, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	fresh := model.Conversation{
		ParticipantLow:  low,
		ParticipantHigh: high,
		LastActivityAt:  time.Now(),
	}
	createErr := r.db.WithContext(ctx).Create(&fresh).Error
	if createErr == nil {
		return &fresh, true, nil
	}

	// Concurrent creator won; fetch its row.
	cv, err = r.FindByPair(ctx, userA, userB)
	if err == nil {
		return cv, false, nil
	}
	return nil, false, createErr
}

func (r *conversationRepository) FindByPair(ctx context.Context, userA, userB uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	low, high := model.PairKey(userA, userB)
	var cv model.Conversation
	if err := r.db.WithContext(ctx).
		Where("participant_low = ? AND participant_high = ?", low, high).
		First(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	if err := r.db.WithContext(ctx).First(&cv, id).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, uid uint64) ([]model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Conversation
	if err := r.db.WithContext(ctx).
		Where("participant_low = ? OR participant_high = ?", uid, uid).
		Order("last_activity_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
