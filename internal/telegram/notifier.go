package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"unipick/backend/internal/repository"
)

// Notifier pushes marketplace notifications over Telegram. A nil *Notifier
// is a valid disabled notifier.
type Notifier struct {
	api      *tgbotapi.BotAPI
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

// NewNotifier creates a Telegram notifier. Returns (nil, nil) when the
// feature is disabled or no token is configured.
func NewNotifier(enabled bool, token string, profiles repository.ProfileRepository, logger *zap.Logger) (*Notifier, error) {
	if !enabled || token == "" {
		logger.Info("Telegram notifications are disabled (telegram.enabled=false or token is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))

	return &Notifier{
		api:      botAPI,
		profiles: profiles,
		logger:   logger,
	}, nil
}

// NotifyFavorite tells an item's owner their listing was favorited. Owners
// without a linked Telegram chat are skipped. Failures are logged and
// swallowed; this path never affects the triggering request.
func (n *Notifier) NotifyFavorite(ctx context.Context, ownerID, itemTitle string, itemPrice float64) {
	if n == nil {
		return
	}

	chatID, err := n.profiles.GetTelegramChatID(ctx, ownerID)
	if err != nil {
		n.logger.Warn("Failed to resolve Telegram chat for owner",
			zap.String("owner_id", ownerID), zap.Error(err))
		return
	}
	if chatID == 0 {
		n.logger.Debug("Owner has no linked Telegram chat", zap.String("owner_id", ownerID))
		return
	}

	text := fmt.Sprintf("⭐ Someone favorited your listing!\n\n%s, %.2f UAH", itemTitle, itemPrice)
	msg := tgbotapi.NewMessage(chatID, text)

	if _, err := n.api.Send(msg); err != nil {
		n.logger.Warn("Failed to send favorite notification",
			zap.String("owner_id", ownerID), zap.Error(err))
		return
	}

	n.logger.Debug("Favorite notification sent", zap.String("owner_id", ownerID))
}
