// internal/notify/telegram.go
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
	"go.uber.org/zap"
)

// Telegram sends events to a single chat.
type Telegram struct {
	bot    *bot.Bot
	chatID int64
	logger *zap.Logger
}

// NewTelegram creates the sender. serverURL overrides the Bot API endpoint and
// may be empty.
func NewTelegram(token string, chatID int64, serverURL string, logger *zap.Logger) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is empty")
	}

	opts := []bot.Option{bot.WithSkipGetMe()}
	if serverURL != "" {
		opts = append(opts, bot.WithServerURL(serverURL))
	}
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{bot: b, chatID: chatID, logger: logger.Named("telegram")}, nil
}

func (t *Telegram) PositionOpened(ctx context.Context, p *models.Position) error {
	return t.send(ctx, openedText(p))
}

func (t *Telegram) PositionClosed(ctx context.Context, p *models.Position, upd models.CloseUpdate) error {
	return t.send(ctx, closedText(p, upd))
}

func (t *Telegram) send(ctx context.Context, text string) error {
	if _, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   text,
	}); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	t.logger.Debug("notification sent", zap.Int64("chat_id", t.chatID))
	return nil
}

var _ Notifier = (*Telegram)(nil)
