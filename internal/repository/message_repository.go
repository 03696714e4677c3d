package repository

import (
	"context"
	"time"

	"github.com/murmur-app/murmur-backend/internal/model"
	"gorm.io/gorm"
)

// visibleClause filters messages to those the viewer has not soft-deleted on
// their own side. Callers pass the viewer id twice followed by two false args.
const visibleClause = "((sender_id = ? AND deleted_by_sender = ?) OR (sender_id <> ? AND deleted_by_recipient = ?))"

type MessageRepository interface {
	Append(ctx context.Context, msg *model.Message) error
	FindByID(ctx context.Context, id uint64) (*model.Message, error)
	ListVisible(ctx context.Context, convID, viewer uint64, limit, offset int) ([]model.Message, error)
	ListSince(ctx context.Context, convID, viewer uint64, since time.Time) ([]model.Message, error)
	LastVisible(ctx context.Context, convID, viewer uint64) (*model.Message, error)
	CountUnread(ctx context.Context, convID, viewer uint64) (int64, error)
	MarkRead(ctx context.Context, convID, viewer uint64) error
	SaveDeleteFlags(ctx context.Context, msg *model.Message) error
	Purge(ctx context.Context, id uint64) error
	HideAllForUser(ctx context.Context, convID, uid uint64) error
	SetDB(db *gorm.DB)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) SetDB(db *gorm.DB) {
	r.db = db
}

// Append inserts the message and bumps the conversation's last_activity_at to
// the message timestamp as a single transaction.
func (r *messageRepository) Append(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_activity_at", msg.CreatedAt).Error
	})
}

func (r *messageRepository) FindByID(ctx context.Context, id uint64) (*model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var m model.Message
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) ListVisible(ctx context.Context, convID, viewer uint64, limit, offset int) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Where(visibleClause, viewer, false, viewer, false).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var msgs []model.Message
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) ListSince(ctx context.Context, convID, viewer uint64, since time.Time) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Where(visibleClause, viewer, false, viewer, false).
		Where("created_at > ?", since).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) LastVisible(ctx context.Context, convID, viewer uint64) (*model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var m model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Where(visibleClause, viewer, false, viewer, false).
		Order("created_at DESC, id DESC").
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, convID, viewer uint64) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ? AND deleted_by_recipient = ?", convID, viewer, false, false).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// MarkRead flags every message visible to the viewer that the other
// participant sent.
func (r *messageRepository) MarkRead(ctx context.Context, convID, viewer uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ? AND deleted_by_recipient = ?", convID, viewer, false, false).
		Update("is_read", true).Error
}

func (r *messageRepository) SaveDeleteFlags(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Model(msg).
		Select("deleted_by_sender", "deleted_by_recipient").
		Updates(map[string]interface{}{
			"deleted_by_sender":    msg.DeletedBySender,
			"deleted_by_recipient": msg.DeletedByRecipient,
		}).Error
}

func (r *messageRepository) Purge(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Delete(&model.Message{}, id).Error
}

// HideAllForUser sets the caller's soft-delete flag on every message in the
// conversation (sender flag on their own messages, recipient flag on the
// rest) and purges rows hidden from both sides.
func (r *messageRepository) HideAllForUser(ctx context.Context, convID, uid uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Message{}).
			Where("conversation_id = ? AND sender_id = ?", convID, uid).
			Update("deleted_by_sender", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Message{}).
			Where("conversation_id = ? AND sender_id <> ?", convID, uid).
			Update("deleted_by_recipient", true).Error; err != nil {
			return err
		}
		return tx.
			Where("conversation_id = ? AND deleted_by_sender = ? AND deleted_by_recipient = ?", convID, true, true).
			Delete(&model.Message{}).Error
	})
}
