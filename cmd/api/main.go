package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/murmur-app/murmur-backend/internal/config"
	"github.com/murmur-app/murmur-backend/internal/db"
	"github.com/murmur-app/murmur-backend/internal/model"
	"github.com/murmur-app/murmur-backend/internal/server"
)

var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	srv := server.New(nil, cfg, gitSHA, buildTime)
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", addr)
		errCh <- srv.Start(addr)
	}()

	// Connect in the background so the health endpoint answers while the
	// database is still coming up.
	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			slog.Error("db connect failed", "driver", cfg.DBDriver, "err", err)
			return
		}
		if err := conn.AutoMigrate(
			&model.User{},
			&model.FollowEdge{},
			&model.BlockEdge{},
			&model.Conversation{},
			&model.Message{},
		); err != nil {
			slog.Error("auto migrate failed", "err", err)
		}
		srv.SetDB(conn)
		slog.Info("database ready", "driver", cfg.DBDriver)
	}()

	if err := <-errCh; err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
