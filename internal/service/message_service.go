package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/murmur-app/murmur-backend/internal/model"
	"github.com/murmur-app/murmur-backend/internal/repository"
	"gorm.io/gorm"
)

type MessageService interface {
	Send(ctx context.Context, convID, senderID uint64, body string) (*model.Message, error)
	ListVisible(ctx context.Context, convID, viewer uint64, limit, offset int) ([]model.Message, error)
	ListSince(ctx context.Context, convID, viewer uint64, since time.Time) ([]model.Message, error)
	SoftDelete(ctx context.Context, msgID, uid uint64) error
}

type messageService struct {
	msgRepo  repository.MessageRepository
	convRepo repository.ConversationRepository
	gate     RelationshipService
	maxLen   int
}

func NewMessageService(msgRepo repository.MessageRepository, convRepo repository.ConversationRepository, gate RelationshipService, maxLen int) MessageService {
	return &messageService{msgRepo: msgRepo, convRepo: convRepo, gate: gate, maxLen: maxLen}
}

func (s *messageService) conversationFor(ctx context.Context, convID, uid uint64) (*model.Conversation, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !cv.Includes(uid) {
		return nil, ErrNotParticipant
	}
	return cv, nil
}

// Send validates the body, re-checks the relationship gate (a block placed
// after the conversation was created must still stop delivery) and appends
// the message; the append and the conversation's last-activity bump commit as
// one transaction.
func (s *messageService) Send(ctx context.Context, convID, senderID uint64, body string) (*model.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > s.maxLen {
		return nil, ErrBodyTooLong
	}

	cv, err := s.conversationFor(ctx, convID, senderID)
	if err != nil {
		return nil, err
	}

	decision, err := s.gate.CanMessage(ctx, senderID, cv.Other(senderID))
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, decision.Reason.Err()
	}

	msg := &model.Message{
		ConversationID: convID,
		SenderID:       senderID,
		Body:           body,
	}
	if err := s.msgRepo.Append(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListVisible returns the viewer's messages oldest-first and marks everything
// the other participant sent as read. Viewing is the read acknowledgment;
// there is no separate mark-read call.
func (s *messageService) ListVisible(ctx context.Context, convID, viewer uint64, limit, offset int) ([]model.Message, error) {
	if _, err := s.conversationFor(ctx, convID, viewer); err != nil {
		return nil, err
	}
	if err := s.msgRepo.MarkRead(ctx, convID, viewer); err != nil {
		return nil, err
	}
	return s.msgRepo.ListVisible(ctx, convID, viewer, limit, offset)
}

// ListSince is the polling read: strictly newer than since, same visibility
// filter as ListVisible, and deliberately no read side effect.
func (s *messageService) ListSince(ctx context.Context, convID, viewer uint64, since time.Time) ([]model.Message, error) {
	if _, err := s.conversationFor(ctx, convID, viewer); err != nil {
		return nil, err
	}
	return s.msgRepo.ListSince(ctx, convID, viewer, since)
}

// SoftDelete hides the message on the caller's side. Repeating the call is a
// no-op success. Once both sides have hidden a message the row is purged.
func (s *messageService) SoftDelete(ctx context.Context, msgID, uid uint64) error {
	msg, err := s.msgRepo.FindByID(ctx, msgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.conversationFor(ctx, msg.ConversationID, uid); err != nil {
		return err
	}

	if msg.SenderID == uid {
		if msg.DeletedBySender {
			return nil
		}
		msg.DeletedBySender = true
	} else {
		if msg.DeletedByRecipient {
			return nil
		}
		msg.DeletedByRecipient = true
	}

	if msg.DeletedBySender && msg.DeletedByRecipient {
		return s.msgRepo.Purge(ctx, msg.ID)
	}
	return s.msgRepo.SaveDeleteFlags(ctx, msg)
}
