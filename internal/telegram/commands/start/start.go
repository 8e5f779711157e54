package start

import (
	"context"
	"log"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/gabzin/SerialBoxBot/internal/api/auth"
	"github.com/gabzin/SerialBoxBot/internal/container"
	"github.com/gabzin/SerialBoxBot/internal/utils"
	"github.com/gabzin/SerialBoxBot/pkg/parser"
)

func Handler(app *container.AppContainer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil || update.Message.From == nil {
			return
		}

		payload := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/start"))
		if sessionID, ok := strings.CutPrefix(payload, "login_"); ok {
			handleLogin(ctx, b, update, app, sessionID)
			return
		}

		text, button := parser.GetMessage("start", map[string]string{
			"firstName": utils.RemoveHTMLTags(update.Message.From.FirstName),
			"webAppUrl": app.WebAppURL,
		})

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      update.Message.Chat.ID,
			Text:        text,
			ReplyMarkup: button,
			ParseMode:   "HTML",
			ReplyParameters: &models.ReplyParameters{
				MessageID: update.Message.ID,
			},
		})
	}
}

// handleLogin is the bot half of the cross-device handoff: the browser
// showed a deep link carrying its session id, the user confirmed here,
// and the signed assertion goes to the token coordinator which pushes the
// session into the waiting tab.
func handleLogin(ctx context.Context, b *bot.Bot, update *models.Update, app *container.AppContainer, sessionID string) {
	reply := func(key string) {
		text, button := parser.GetMessage(key, nil)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      update.Message.Chat.ID,
			Text:        text,
			ReplyMarkup: button,
			ParseMode:   "HTML",
		})
	}

	exists, err := app.AuthService.LoginSessionExists(ctx, sessionID)
	if err != nil || !exists {
		reply("login-unknown")
		return
	}

	from := update.Message.From
	assertion, err := app.AuthService.Verifier().BuildRelayAssertion(auth.RelayUser{
		ID:           from.ID,
		Username:     from.Username,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		LanguageCode: from.LanguageCode,
	})
	if err != nil {
		log.Printf("❌ failed to build relay assertion: %v", err)
		reply("login-failed")
		return
	}

	result, err := app.AuthService.IssueToken(ctx, assertion, sessionID)
	if err != nil {
		log.Printf("❌ login handoff failed for session %s: %v", sessionID, err)
		reply("login-failed")
		return
	}

	if result.SentViaSSE {
		reply("login-sent")
	} else {
		reply("login-fallback")
	}
}
