// Package accounts — handlers.go обрабатывает команду !профиль.
package accounts

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/common"
)

// Handler обрабатывает команды профиля.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик профиля.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleProfile обрабатывает команду !профиль.
//
// Формат ответа:
//
//	👤 @username
//	🖥 Ригов: 3 (хешрейт 45)
//	👥 Приглашено: 2
//	⭐ Премиум-пасс: нет
func (h *Handler) HandleProfile(ctx context.Context, chatID int64, userID int64) {
	account, err := h.service.GetByUserID(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения аккаунта")
		h.sendMessage(chatID, "❌ Ошибка получения профиля")
		return
	}

	snapshot, err := h.service.GetSnapshot(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения среза аккаунта")
		h.sendMessage(chatID, "❌ Ошибка получения профиля")
		return
	}

	premium := "нет"
	if snapshot.HasPremiumPass {
		premium = "да"
	}

	text := fmt.Sprintf("👤 %s\n🖥 Ригов: %d %s (хешрейт %s)\n👥 Приглашено: %d\n⭐ Премиум-пасс: %s",
		account.DisplayName(),
		snapshot.RigCount, common.PluralizeRigs(snapshot.RigCount),
		snapshot.HashRate.String(),
		snapshot.ReferralCount,
		premium,
	)
	h.sendMessage(chatID, text)
}

// sendMessage — утилита для отправки сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
