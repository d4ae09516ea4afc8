package telegram

import (
	"log"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers service messages to users through the shop bot. It is
// optional: when BOT_TOKEN is missing the server runs without outbound
// notifications.
type Notifier struct {
	api      *tgbotapi.BotAPI
	username string
}

// NewNotifier creates a Notifier from BOT_TOKEN, or returns (nil, nil) when
// the token is not configured.
func NewNotifier() (*Notifier, error) {
	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Printf("[TELEGRAM] authorized as @%s", api.Self.UserName)
	return &Notifier{api: api, username: api.Self.UserName}, nil
}

// BotUsername returns the bot account name used to build referral links.
func (n *Notifier) BotUsername() string {
	if n == nil {
		return os.Getenv("BOT_USERNAME")
	}
	return n.username
}

func (n *Notifier) SendMessage(telegramID int64, text string) error {
	if n == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(telegramID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := n.api.Send(msg)
	return err
}
