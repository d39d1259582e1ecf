// Package notify sends run-status notifications over Telegram.
package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers status messages to a Telegram chat. A nil *Notifier is
// valid and does nothing, so callers can hold one unconditionally.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

// New creates a Notifier for the given bot token and chat.
func New(token string, chatID int64, log *slog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Notifier{api: api, chatID: chatID, log: log}, nil
}

// Send delivers a status message. Delivery problems are logged, never
// returned: a missed notification must not fail the run.
func (n *Notifier) Send(text string) {
	if n == nil {
		return
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		n.log.Error("send notification", "error", err)
	}
}
