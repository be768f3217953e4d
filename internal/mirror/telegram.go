package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"toastd/internal/toast"

	tgbot "github.com/go-telegram/bot"
)

// TelegramMirror forwards push-driven toasts to a Telegram chat.
// Delivery is best-effort: failures are logged and never affect the queue.
// Params: bot client, chat id, and logger.
// Returns: optional mirror sink.
type TelegramMirror struct {
	client  *tgbot.Bot
	chatID  any
	logger  *slog.Logger
	initErr error
}

// NewTelegramMirror creates the mirror from bot token and chat id.
// Params: bot token, chat id (numeric or @channel), and logger.
// Returns: mirror instance; init errors surface on first Mirror call.
func NewTelegramMirror(botToken, chatID string, logger *slog.Logger) *TelegramMirror {
	mirror := &TelegramMirror{
		chatID: normalizeChatID(chatID),
		logger: logger,
	}
	if strings.TrimSpace(botToken) == "" {
		mirror.initErr = errors.New("telegram bot token is required")
		return mirror
	}
	if strings.TrimSpace(chatID) == "" {
		mirror.initErr = errors.New("telegram chat_id is required")
		return mirror
	}

	client, err := tgbot.New(botToken, tgbot.WithSkipGetMe())
	if err != nil {
		mirror.initErr = fmt.Errorf("init telegram bot: %w", err)
		return mirror
	}
	mirror.client = client
	return mirror
}

// Mirror sends one toast to the configured chat.
// Params: context and toast entry.
// Returns: none; failures log only.
func (m *TelegramMirror) Mirror(ctx context.Context, entry toast.Entry) {
	if m.initErr != nil {
		m.logger.Warn("telegram mirror unavailable", "error", m.initErr.Error())
		return
	}

	text := fmt.Sprintf("[%s] %s", entry.Severity, entry.Message)
	if entry.Description != "" {
		text += "\n" + entry.Description
	}
	_, err := m.client.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: m.chatID,
		Text:   text,
	})
	if err != nil {
		m.logger.Warn("telegram mirror send failed", "toast_id", entry.ID, "error", err.Error())
	}
}

// normalizeChatID converts numeric chat ids to int64 and keeps names as string.
// Params: configured chat id value.
// Returns: Telegram chat id union value.
func normalizeChatID(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if numeric, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return numeric
	}
	return trimmed
}
