package service

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/murmur-app/murmur-backend/internal/model"
	"github.com/murmur-app/murmur-backend/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.FollowEdge{},
		&model.BlockEdge{},
		&model.Conversation{},
		&model.Message{},
	))
	return db
}

// stack bundles the full service wiring over a fresh in-memory database.
type stack struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	relRepo  repository.RelationshipRepository
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	users    UserService
	rel      RelationshipService
	convs    ConversationService
	msgs     MessageService
}

func newStack(t *testing.T, maxLen int) *stack {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	rel := NewRelationshipService(relRepo, convRepo, userRepo)
	return &stack{
		db:       db,
		userRepo: userRepo,
		relRepo:  relRepo,
		convRepo: convRepo,
		msgRepo:  msgRepo,
		users:    NewUserService(userRepo),
		rel:      rel,
		convs:    NewConversationService(convRepo, msgRepo, userRepo, rel),
		msgs:     NewMessageService(msgRepo, convRepo, rel, maxLen),
	}
}

func (s *stack) mustUser(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		DisplayName:  username,
		PasswordHash: "x",
		Status:       model.UserStatusActive,
	}
	require.NoError(t, s.db.Create(u).Error)
	return u
}

func (s *stack) mustMutualFollow(t *testing.T, a, b uint64) {
	t.Helper()
	require.NoError(t, s.db.Create(&model.FollowEdge{FollowerID: a, FolloweeID: b}).Error)
	require.NoError(t, s.db.Create(&model.FollowEdge{FollowerID: b, FolloweeID: a}).Error)
}
