package telegram

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/go-telegram/bot"

	"github.com/gabzin/SerialBoxBot/internal/cache"
	"github.com/gabzin/SerialBoxBot/internal/container"
	"github.com/gabzin/SerialBoxBot/internal/middleware"
	"github.com/gabzin/SerialBoxBot/internal/telegram/commands"
	"github.com/gabzin/SerialBoxBot/pkg/config"
)

// StartBot runs the bot against the shared container so token pushes land
// on the same broker the API's stream handler registers with.
func StartBot(app *container.AppContainer) error {
	cache.GetRedisClient()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.SaveUserMiddleware(app.DB),
		),
	}

	b, err := bot.New(config.TelegramBotToken, opts...)
	if err != nil {
		return err
	}

	commands.LoadCommandHandlers(b, app)

	log.Println("Bot started...")

	go func() {
		<-ctx.Done()
		log.Println("Shutting down gracefully...")
		if err := cache.CloseRedis(); err != nil {
			log.Printf("Error closing Redis: %v", err)
		}
	}()

	b.Start(ctx)
	return nil
}
