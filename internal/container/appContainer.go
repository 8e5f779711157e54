package container

import (
	"log"

	"github.com/gabzin/SerialBoxBot/internal/api/auth"
	"github.com/gabzin/SerialBoxBot/internal/api/service"
	"github.com/gabzin/SerialBoxBot/internal/api/sse"
	"github.com/gabzin/SerialBoxBot/internal/cache"
	"github.com/gabzin/SerialBoxBot/internal/database/repositories"
	"github.com/gabzin/SerialBoxBot/pkg/config"
	"gorm.io/gorm"
)

type AppContainer struct {
	DB       *gorm.DB
	UserRepo *repositories.UserRepository

	// ## AUTH HANDOFF ## \\
	AuthService *service.AuthService
	Secret      []byte

	BotUsername string
	WebAppURL   string
}

func NewAppContainer(db *gorm.DB) *AppContainer {
	verifier, err := auth.NewVerifier(config.TelegramBotToken)
	if err != nil {
		log.Fatalf("auth verifier: %v", err)
	}

	userRepo := repositories.NewUserRepository(db)
	authService := service.NewAuthService(
		verifier,
		sse.NewBroker(),
		userRepo,
		cache.NewSessionManager(),
		[]byte(config.SecretKey),
	)

	return &AppContainer{
		DB:          db,
		UserRepo:    userRepo,
		AuthService: authService,
		Secret:      []byte(config.SecretKey),
		BotUsername: config.BotUsername,
		WebAppURL:   config.WebAppURL,
	}
}
