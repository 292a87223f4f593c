package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramSender: часть *tgbotapi.BotAPI, нужная приёмнику.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink пишет практику в чат Telegram. Message.To: chat id.
type TelegramSink struct {
	bot telegramSender
}

func NewTelegramSink(bot telegramSender) *TelegramSink {
	return &TelegramSink{bot: bot}
}

// NewTelegramBot подключается к Bot API по токену.
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return bot, nil
}

func (s *TelegramSink) Send(_ context.Context, m Message) error {
	chatID, err := strconv.ParseInt(m.To, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram chat id %q: %w", m.To, err)
	}

	msg := tgbotapi.NewMessage(chatID, m.Body)
	msg.DisableWebPagePreview = true
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("%w: telegram: %w", ErrDelivery, err)
	}
	return nil
}
