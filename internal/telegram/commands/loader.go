package commands

import (
	"github.com/go-telegram/bot"

	"github.com/gabzin/SerialBoxBot/internal/container"
	"github.com/gabzin/SerialBoxBot/internal/telegram/commands/help"
	"github.com/gabzin/SerialBoxBot/internal/telegram/commands/start"
)

func LoadCommandHandlers(b *bot.Bot, c *container.AppContainer) {
	// Prefix match so the login deep link ("/start login_<id>") lands here too.
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, start.Handler(c))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, help.Handler())
}
