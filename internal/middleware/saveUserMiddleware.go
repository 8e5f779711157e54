package middleware

import (
	"context"
	"log"

	"github.com/go-telegram/bot"
	tgbotModels "github.com/go-telegram/bot/models"

	"github.com/gabzin/SerialBoxBot/internal/database/models"
	"github.com/gabzin/SerialBoxBot/internal/database/repositories"
	"gorm.io/gorm"
)

func SaveUserMiddleware(db *gorm.DB) bot.Middleware {
	userRepo := repositories.NewUserRepository(db)

	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *tgbotModels.Update) {
			var from *tgbotModels.User

			if update.Message != nil && update.Message.From != nil {
				from = update.Message.From
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			} else if update.InlineQuery != nil && update.InlineQuery.From != nil {
				from = update.InlineQuery.From
			}

			if from != nil && from.ID != 0 {
				user := &models.User{
					TelegramID:   from.ID,
					Username:     from.Username,
					FirstName:    from.FirstName,
					LastName:     from.LastName,
					LanguageCode: from.LanguageCode,
				}

				if _, err := userRepo.UpsertUser(ctx, user); err != nil {
					log.Printf("❌ failed to upsert user: %v", err)
				}
			}

			next(ctx, b, update)
		}
	}
}
