// Package filters решает, кого бот вообще обслуживает.
package filters

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/features/accounts"
)

// AccessFilter пускает только личные чаты и не забаненных игроков.
// Бот игровой: в группах он молчит.
type AccessFilter struct {
	accountsService *accounts.Service
	bot             *tgbotapi.BotAPI
}

func NewAccessFilter(accountsService *accounts.Service, bot *tgbotapi.BotAPI) *AccessFilter {
	return &AccessFilter{
		accountsService: accountsService,
		bot:             bot,
	}
}

func (f *AccessFilter) CheckAccess(ctx context.Context, message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "AccessFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "AccessFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Warn("nil message.From (service/channel message?)")
		return false
	}
	if message.From.IsBot {
		return false
	}

	logger := log.WithFields(log.Fields{
		"component": "AccessFilter",
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
		"user_id":   message.From.ID,
	})

	if !message.Chat.IsPrivate() {
		logger.Debug("deny: not a private chat")
		return false
	}

	// Бан проверяем по БД; новых пользователей (ещё без аккаунта) пускаем
	account, err := f.accountsService.GetByUserID(ctx, message.From.ID)
	if err == nil && account.IsBanned {
		logger.Info("deny: banned account")
		msg := tgbotapi.NewMessage(message.Chat.ID, "🚫 Доступ к боту закрыт")
		if _, sendErr := f.bot.Send(msg); sendErr != nil {
			logger.WithError(sendErr).Warn("failed to send deny message")
		}
		return false
	}

	return true
}
