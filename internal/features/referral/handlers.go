package referral

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/common"
	"gigafarm.ru/mining-bot/internal/features/accounts"
)

// Handler обрабатывает реферальные команды.
type Handler struct {
	service  *Service
	accounts *accounts.Service
	bot      *tgbotapi.BotAPI
	botName  string
}

// NewHandler создаёт новый обработчик рефералов.
func NewHandler(service *Service, accountsService *accounts.Service, bot *tgbotapi.BotAPI, botName string) *Handler {
	return &Handler{service: service, accounts: accountsService, bot: bot, botName: botName}
}

// HandleInvite обрабатывает команду !пригласить — показывает код и
// ссылку пользователя.
func (h *Handler) HandleInvite(ctx context.Context, chatID int64, userID int64) {
	account, err := h.accounts.GetByUserID(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения аккаунта")
		h.sendMessage(chatID, "❌ Ошибка получения реферального кода")
		return
	}
	count, err := h.service.CountReferrals(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка подсчёта рефералов")
		h.sendMessage(chatID, "❌ Ошибка получения реферального кода")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf(
		"🤝 Твой реферальный код: %s\n"+
			"Ссылка: https://t.me/%s?start=%s\n"+
			"Приглашено: %d\n"+
			"За каждого друга: %s тебе и %s ему",
		account.ReferralCode, h.botName, account.ReferralCode, count,
		common.FormatAmount(h.service.ReferrerBonus()),
		common.FormatAmount(h.service.ReferredBonus())))
}

// HandleApplyCode применяет код из аргумента /start или команды !код.
func (h *Handler) HandleApplyCode(ctx context.Context, chatID int64, userID int64, code string) {
	referrer, created, err := h.service.ApplyCode(ctx, userID, code)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrReferralCodeNotFound):
			h.sendMessage(chatID, "❌ Такого кода нет")
		case errors.Is(err, common.ErrSelfReferral):
			h.sendMessage(chatID, "🙃 Себя пригласить нельзя")
		default:
			log.WithError(err).Error("Ошибка применения реферального кода")
			h.sendMessage(chatID, "❌ Ошибка применения кода")
		}
		return
	}
	if !created {
		h.sendMessage(chatID, "ℹ️ Ты уже приглашён, бонус начисляется один раз")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("🎉 Код принят! Тебе начислено %s",
		common.FormatAmount(h.service.ReferredBonus())))
	// Уведомляем пригласившего в личку
	h.sendMessage(referrer.UserID, fmt.Sprintf("🤝 По твоему коду пришёл новый игрок! Начислено %s",
		common.FormatAmount(h.service.ReferrerBonus())))
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
