package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/murmur-app/murmur-backend/internal/config"
	"github.com/murmur-app/murmur-backend/internal/handler"
	appmw "github.com/murmur-app/murmur-backend/internal/middleware"
	"github.com/murmur-app/murmur-backend/internal/repository"
	"github.com/murmur-app/murmur-backend/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	e        *echo.Echo
	userRepo repository.UserRepository
	relRepo  repository.RelationshipRepository
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	sha      string
	build    string
}

func New(db *gorm.DB, cfg *config.Config, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(appmw.RequestID)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			return strings.HasSuffix(u.Hostname(), cfg.CORSOriginSuffix), nil
		},
	}))

	userRepo := repository.NewUserRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	userSvc := service.NewUserService(userRepo)
	relSvc := service.NewRelationshipService(relRepo, convRepo, userRepo)
	convSvc := service.NewConversationService(convRepo, msgRepo, userRepo, relSvc)
	msgSvc := service.NewMessageService(msgRepo, convRepo, relSvc, cfg.MaxMessageLength)

	authMw := appmw.NewAuthMiddleware(cfg.JWTSecret, cfg.TokenTTL)

	authHandler := handler.NewAuthHandler(userSvc, authMw)
	userHandler := handler.NewUserHandler(userSvc)
	relHandler := handler.NewRelationshipHandler(relSvc)
	convHandler := handler.NewConversationHandler(convSvc, msgSvc, relSvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/users/:id/public", userHandler.GetPublic)
	api.GET("/users/:id/can-message", relHandler.CanMessage, authMw.RequireAuth)
	api.POST("/users/:id/follow", relHandler.Follow, authMw.RequireAuth)
	api.DELETE("/users/:id/follow", relHandler.Unfollow, authMw.RequireAuth)
	api.POST("/users/:id/block", relHandler.Block, authMw.RequireAuth)
	api.DELETE("/users/:id/block", relHandler.Unblock, authMw.RequireAuth)
	api.POST("/conversations", convHandler.Create, authMw.RequireAuth)
	api.GET("/conversations", convHandler.List, authMw.RequireAuth)
	api.GET("/conversations/:id", convHandler.Get, authMw.RequireAuth)
	api.GET("/conversations/:id/messages", convHandler.ListMessages, authMw.RequireAuth)
	api.GET("/conversations/:id/messages/poll", convHandler.Poll, authMw.RequireAuth)
	api.POST("/conversations/:id/messages", convHandler.CreateMessage, authMw.RequireAuth)
	api.DELETE("/conversations/:id/messages/:msgId", convHandler.DeleteMessage, authMw.RequireAuth)
	api.DELETE("/conversations/:id", convHandler.Delete, authMw.RequireAuth)

	return &Server{
		e:        e,
		userRepo: userRepo,
		relRepo:  relRepo,
		convRepo: convRepo,
		msgRepo:  msgRepo,
		sha:      sha,
		build:    buildTime,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB late-injects the database into every repository once the connection
// is up; the server can begin accepting requests before that.
func (s *Server) SetDB(db *gorm.DB) {
	s.userRepo.SetDB(db)
	s.relRepo.SetDB(db)
	s.convRepo.SetDB(db)
	s.msgRepo.SetDB(db)
}
