package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/murmur-app/murmur-backend/internal/config"
	"github.com/murmur-app/murmur-backend/internal/db"
	"github.com/murmur-app/murmur-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	Username    string
	DisplayName string
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(
		&model.User{},
		&model.FollowEdge{},
		&model.BlockEdge{},
		&model.Conversation{},
		&model.Message{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var count int64
	if err := gdb.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 && os.Getenv("FORCE_SEED") != "true" {
		log.Printf("users already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	users := []seedUser{
		{Username: "ada", DisplayName: "Ada Lovelace"},
		{Username: "grace", DisplayName: "Grace Hopper"},
		{Username: "linus", DisplayName: "Linus T."},
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		created := make([]model.User, 0, len(users))
		for _, su := range users {
			u := model.User{
				Username:     su.Username,
				DisplayName:  su.DisplayName,
				PasswordHash: string(hash),
				Status:       model.UserStatusActive,
			}
			if err := tx.Create(&u).Error; err != nil {
				return err
			}
			created = append(created, u)
		}

		// ada and grace follow each other so they can start a conversation
		pairs := [][2]uint64{
			{created[0].ID, created[1].ID},
			{created[1].ID, created[0].ID},
			{created[2].ID, created[0].ID},
		}
		for _, p := range pairs {
			if err := tx.Create(&model.FollowEdge{FollowerID: p[0], FolloweeID: p[1]}).Error; err != nil {
				return err
			}
		}

		log.Printf("seeded %d users", len(created))
		return nil
	})
}
