package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/murmur-app/murmur-backend/internal/model"
	"github.com/stretchr/testify/assert"
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

func TestConversationPairUniqueIndex(t *testing.T) {
	db := newTestDB(t)

	low, high := model.PairKey(7, 3)
	require.NoError(t, db.Create(&model.Conversation{ParticipantLow: low, ParticipantHigh: high}).Error)

	err := db.Create(&model.Conversation{ParticipantLow: low, ParticipantHigh: high}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey, "storage layer owns pair uniqueness")
}

func TestGetOrCreate_ResolvesLostRace(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	cv1, created, err := repo.GetOrCreate(ctx, 3, 7)
	require.NoError(t, err)
	assert.True(t, created)

	// second call in either order finds the same row
	cv2, created, err := repo.GetOrCreate(ctx, 7, 3)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, cv1.ID, cv2.ID)

	// simulate losing the race: the pair row appears between the lookup and
	// the insert. Create resolves by re-fetching the winner.
	winner := &model.Conversation{ParticipantLow: 1, ParticipantHigh: 2}
	require.NoError(t, db.Create(winner).Error)
	cv3, created, err := repo.GetOrCreate(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.ID, cv3.ID)
}

func TestDBNotReadyGuard(t *testing.T) {
	repo := NewConversationRepository(nil)
	_, _, err := repo.GetOrCreate(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrDBNotReady)

	repo.SetDB(newTestDB(t))
	_, created, err := repo.GetOrCreate(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, created)
}
