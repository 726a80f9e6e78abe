// Package rigs — handlers.go обрабатывает команды:
// !магазин (каталог), !купить <код>, !риги (мой парк).
package rigs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/common"
)

// Handler обрабатывает команды магазина.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик магазина.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleShop обрабатывает команду !магазин — показывает каталог.
func (h *Handler) HandleShop(ctx context.Context, chatID int64) {
	catalog, err := h.service.GetCatalog(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка получения каталога")
		h.sendMessage(chatID, "❌ Ошибка получения каталога")
		return
	}

	var sb strings.Builder
	sb.WriteString("🛒 Магазин ригов:\n\n")
	for _, m := range catalog {
		sb.WriteString(fmt.Sprintf("🖥 %s — %s, хешрейт %s\nКупить: !купить %s\n\n",
			m.DisplayName, common.FormatAmount(m.Price), m.HashRate.String(), m.Code))
	}
	h.sendMessage(chatID, sb.String())
}

// HandleBuy обрабатывает команду !купить <код>.
func (h *Handler) HandleBuy(ctx context.Context, chatID int64, userID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, "❌ Формат: !купить <код рига> (коды в !магазин)")
		return
	}

	model, err := h.service.BuyRig(ctx, userID, strings.ToLower(args[0]))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRigNotFound):
			h.sendMessage(chatID, "❌ Такого рига нет в каталоге. Смотри !магазин")
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(chatID, "❌ Недостаточно коинов")
		default:
			log.WithError(err).Error("Ошибка покупки рига")
			h.sendMessage(chatID, "❌ Ошибка покупки")
		}
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Куплен %s! Хешрейт вырос на %s",
		model.DisplayName, model.HashRate.String()))
}

// HandleMyRigs обрабатывает команду !риги — показывает парк игрока.
func (h *Handler) HandleMyRigs(ctx context.Context, chatID int64, userID int64) {
	owned, err := h.service.GetOwnedRigs(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения ригов")
		h.sendMessage(chatID, "❌ Ошибка получения списка ригов")
		return
	}

	if len(owned) == 0 {
		h.sendMessage(chatID, "🖥 У тебя пока нет ригов. Загляни в !магазин")
		return
	}

	var sb strings.Builder
	sb.WriteString("🖥 Твой парк:\n\n")
	total := 0
	for _, o := range owned {
		sb.WriteString(fmt.Sprintf("%s ×%d — хешрейт %s\n",
			o.Model.DisplayName, o.Count, o.TotalHash.String()))
		total += o.Count
	}
	sb.WriteString(fmt.Sprintf("\nВсего: %d %s", total, common.PluralizeRigs(total)))
	h.sendMessage(chatID, sb.String())
}

// sendMessage — утилита для отправки сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
