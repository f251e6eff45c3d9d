package notify

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram forwards notifications to a chat.
type Telegram struct {
	api     messageSender
	chatID  int64
	baseURL string
}

func NewTelegram(token string, chatID int64, baseURL string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{api: api, chatID: chatID, baseURL: baseURL}, nil
}

func (t *Telegram) Notify(_ context.Context, n Notification) error {
	text := fmt.Sprintf("🔔 <b>%s</b>", html.EscapeString(n.Title))
	if n.Body != "" {
		text += "\n" + html.EscapeString(n.Body)
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if n.URL != "" && t.baseURL != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("View Jobs", t.baseURL+n.URL),
			),
		)
	}

	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Endpoint is the subscription endpoint that identifies this chat.
func (t *Telegram) Endpoint() string {
	return fmt.Sprintf("telegram://chat/%d", t.chatID)
}
