package service

import (
	"context"
	"errors"

	"github.com/murmur-app/murmur-backend/internal/repository"
	"gorm.io/gorm"
)

// GateDecision is the relationship gate's verdict on whether two users may
// message each other. Reason is set only when Allowed is false.
type GateDecision struct {
	Allowed bool
	Reason  DenyReason
}

type RelationshipService interface {
	// CanMessage is a pure predicate over current follow/block/conversation
	// state; it never mutates anything.
	CanMessage(ctx context.Context, userA, userB uint64) (GateDecision, error)
	Follow(ctx context.Context, followerID, followeeID uint64) error
	Unfollow(ctx context.Context, followerID, followeeID uint64) error
	Block(ctx context.Context, blockerID, blockedID uint64) error
	Unblock(ctx context.Context, blockerID, blockedID uint64) error
}

type relationshipService struct {
	relRepo  repository.RelationshipRepository
	convRepo repository.ConversationRepository
	userRepo repository.UserRepository
}

func NewRelationshipService(relRepo repository.RelationshipRepository, convRepo repository.ConversationRepository, userRepo repository.UserRepository) RelationshipService {
	return &relationshipService{relRepo: relRepo, convRepo: convRepo, userRepo: userRepo}
}

// CanMessage evaluates the gate rules in order, first failure wins:
// self, block in either direction, then mutual follow — the follow check is
// skipped when a conversation already exists, so established conversations
// survive a later unfollow while new contact stays gated behind mutual trust.
func (s *relationshipService) CanMessage(ctx context.Context, userA, userB uint64) (GateDecision, error) {
	if userA == userB {
		return GateDecision{Allowed: false, Reason: DenySelf}, nil
	}

	blocked, err := s.relRepo.HasBlockBetween(ctx, userA, userB)
	if err != nil {
		return GateDecision{}, err
	}
	if blocked {
		return GateDecision{Allowed: false, Reason: DenyBlocked}, nil
	}

	_, err = s.convRepo.FindByPair(ctx, userA, userB)
	if err == nil {
		return GateDecision{Allowed: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return GateDecision{}, err
	}

	forward, err := s.relRepo.HasFollow(ctx, userA, userB)
	if err != nil {
		return GateDecision{}, err
	}
	reverse, err := s.relRepo.HasFollow(ctx, userB, userA)
	if err != nil {
		return GateDecision{}, err
	}
	if !forward || !reverse {
		return GateDecision{Allowed: false, Reason: DenyNotMutualFollow}, nil
	}
	return GateDecision{Allowed: true}, nil
}

func (s *relationshipService) Follow(ctx context.Context, followerID, followeeID uint64) error {
	if followerID == followeeID {
		return ErrSelfConversation
	}
	if _, err := s.userRepo.FindByID(ctx, followeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	blocked, err := s.relRepo.HasBlockBetween(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if blocked {
		return ErrBlocked
	}
	return s.relRepo.CreateFollow(ctx, followerID, followeeID)
}

func (s *relationshipService) Unfollow(ctx context.Context, followerID, followeeID uint64) error {
	return s.relRepo.DeleteFollow(ctx, followerID, followeeID)
}

func (s *relationshipService) Block(ctx context.Context, blockerID, blockedID uint64) error {
	if blockerID == blockedID {
		return ErrSelfConversation
	}
	if _, err := s.userRepo.FindByID(ctx, blockedID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.relRepo.CreateBlock(ctx, blockerID, blockedID)
}

func (s *relationshipService) Unblock(ctx context.Context, blockerID, blockedID uint64) error {
	return s.relRepo.DeleteBlock(ctx, blockerID, blockedID)
}
