package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
)

const (
	MaxMessageLen = 4096
	sendTimeout   = 10 * time.Second
)

// NewBot creates a send-only bot client. It never polls for updates.
func NewBot(token string, opts ...bot.Option) (*bot.Bot, error) {
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return b, nil
}

// TelegramLogger posts operational messages to a chat, optionally inside a
// forum topic. A nil *TelegramLogger is valid and drops everything.
type TelegramLogger struct {
	bot     *bot.Bot
	chatID  int64
	topicID int
	now     func() time.Time
}

func NewTelegramLogger(b *bot.Bot, chatID int64, topicID int) *TelegramLogger {
	return &TelegramLogger{bot: b, chatID: chatID, topicID: topicID, now: time.Now}
}

func (l *TelegramLogger) Log(message string) {
	if l == nil || l.bot == nil || l.chatID == 0 {
		return
	}

	// Truncate if too long
	if len([]rune(message)) > MaxMessageLen {
		message = string([]rune(message)[:MaxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID: l.chatID,
		Text:   message,
	}
	if l.topicID != 0 {
		params.MessageThreadID = l.topicID
	}

	if _, err := l.bot.SendMessage(ctx, params); err != nil {
		slog.Error("failed to send telegram log", "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	if l == nil {
		return
	}
	msg := fmt.Sprintf("❌ Error\n\nContext: %s\nError: %s\nTime: %s",
		context, err.Error(), l.now().Format("2006-01-02 15:04:05"))
	l.Log(msg)
}
