package service

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// gate denials
	ErrSelfConversation = errors.New("cannot message yourself")
	ErrBlocked          = errors.New("messaging blocked between users")
	ErrNotMutualFollow  = errors.New("mutual follow required for first contact")

	// ledger rejections
	ErrNotParticipant = errors.New("not a participant")
	ErrEmptyBody      = errors.New("body is required")
	ErrBodyTooLong    = errors.New("body exceeds maximum length")

	// accounts
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotActive   = errors.New("account is not active")
)

// DenyReason identifies why the relationship gate refused contact.
type DenyReason string

const (
	DenySelf            DenyReason = "SELF"
	DenyBlocked         DenyReason = "BLOCKED"
	DenyNotMutualFollow DenyReason = "NOT_MUTUAL_FOLLOW"
)

// Err maps a deny reason to its sentinel error.
func (r DenyReason) Err() error {
	switch r {
	case DenySelf:
		return ErrSelfConversation
	case DenyBlocked:
		return ErrBlocked
	case DenyNotMutualFollow:
		return ErrNotMutualFollow
	}
	return nil
}
