package service

import (
	"context"
	"errors"

	"github.com/murmur-app/murmur-backend/internal/model"
	"github.com/murmur-app/murmur-backend/internal/repository"
	"gorm.io/gorm"
)

// ConversationSummary is one inbox row: the conversation, the other
// participant's directory entry, the newest message still visible to the
// requesting user and their unread count.
type ConversationSummary struct {
	Conversation model.Conversation
	Other        model.User
	LastMessage  model.Message
	UnreadCount  int64
}

type ConversationService interface {
	GetOrCreate(ctx context.Context, uid, peerID uint64) (*model.Conversation, error)
	Get(ctx context.Context, convID, uid uint64) (*model.Conversation, error)
	ListForUser(ctx context.Context, uid uint64, limit, offset int) ([]ConversationSummary, error)
	DeleteForUser(ctx context.Context, convID, uid uint64) error
}

type conversationService struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	userRepo repository.UserRepository
	gate     RelationshipService
}

func NewConversationService(convRepo repository.ConversationRepository, msgRepo repository.MessageRepository, userRepo repository.UserRepository, gate RelationshipService) ConversationService {
	return &conversationService{convRepo: convRepo, msgRepo: msgRepo, userRepo: userRepo, gate: gate}
}

// GetOrCreate resolves the conversation for (uid, peerID), creating it when
// the relationship gate permits first contact. A denial surfaces as the
// reason's sentinel error; it is never retried here.
func (s *conversationService) GetOrCreate(ctx context.Context, uid, peerID uint64) (*model.Conversation, error) {
	if _, err := s.userRepo.FindByID(ctx, peerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	decision, err := s.gate.CanMessage(ctx, uid, peerID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, decision.Reason.Err()
	}
	cv, _, err := s.convRepo.GetOrCreate(ctx, uid, peerID)
	return cv, err
}

// Get returns the conversation only to its participants; anyone else gets
// ErrNotFound, indistinguishable from a missing id.
func (s *conversationService) Get(ctx context.Context, convID, uid uint64) (*model.Conversation, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !cv.Includes(uid) {
		return nil, ErrNotFound
	}
	return cv, nil
}

// ListForUser orders by last activity descending and windows with
// limit/offset after dropping conversations with no message visible to uid.
func (s *conversationService) ListForUser(ctx context.Context, uid uint64, limit, offset int) ([]ConversationSummary, error) {
	convs, err := s.convRepo.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, cv := range convs {
		last, err := s.msgRepo.LastVisible(ctx, cv.ID, uid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// every message hidden for this user, omit from inbox
				continue
			}
			return nil, err
		}
		unread, err := s.msgRepo.CountUnread(ctx, cv.ID, uid)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ConversationSummary{
			Conversation: cv,
			LastMessage:  *last,
			UnreadCount:  unread,
		})
	}

	if offset > 0 {
		if offset >= len(summaries) {
			return []ConversationSummary{}, nil
		}
		summaries = summaries[offset:]
	}
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}

	if len(summaries) == 0 {
		return summaries, nil
	}
	ids := make([]uint64, 0, len(summaries))
	for _, sm := range summaries {
		ids = append(ids, sm.Conversation.Other(uid))
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].Other = users[summaries[i].Conversation.Other(uid)]
	}
	return summaries, nil
}

// DeleteForUser hides the whole conversation on the caller's side only; the
// conversation row itself is kept and the other participant's view is
// unaffected.
func (s *conversationService) DeleteForUser(ctx context.Context, convID, uid uint64) error {
	if _, err := s.Get(ctx, convID, uid); err != nil {
		return err
	}
	return s.msgRepo.HideAllForUser(ctx, convID, uid)
}
