// Package economy — handlers.go обрабатывает команды:
// !баланс (счёт) и !транзакции (история операций).
package economy

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/common"
)

// Handler обрабатывает команды экономики.
type Handler struct {
	service *Service         // Сервис экономики
	bot     *tgbotapi.BotAPI // API Telegram для отправки ответов
}

// NewHandler создаёт новый обработчик экономических команд.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		service: service,
		bot:     bot,
	}
}

// HandleBalance обрабатывает команду !баланс — показывает счёт.
//
// Формат ответа:
//
//	💰 Баланс: 150 коинов
//	⛏ Добыто за всё время: 1200 коинов
func (h *Handler) HandleBalance(ctx context.Context, chatID int64, userID int64) {
	stats, err := h.service.GetStats(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения баланса")
		h.sendMessage(chatID, "❌ Ошибка получения баланса")
		return
	}

	text := fmt.Sprintf("💰 Баланс: %s\n⛏ Добыто за всё время: %s",
		common.FormatAmount(stats.Balance), common.FormatAmount(stats.TotalEarned))
	h.sendMessage(chatID, text)
}

// HandleTransactions обрабатывает команду !транзакции — показывает историю.
func (h *Handler) HandleTransactions(ctx context.Context, chatID int64, userID int64) {
	history, err := h.service.GetTransactionHistory(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения транзакций")
		h.sendMessage(chatID, "❌ Ошибка получения истории транзакций")
		return
	}

	// Отправляем с MarkdownV2 для поддержки спойлеров
	msg := tgbotapi.NewMessage(chatID, history)
	msg.ParseMode = "MarkdownV2"
	if _, err := h.bot.Send(msg); err != nil {
		// Если MarkdownV2 не сработал — отправляем без форматирования
		h.sendMessage(chatID, history)
	}
}

// sendMessage — утилита для отправки сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
