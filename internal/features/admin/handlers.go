// Package admin — handlers.go обрабатывает админ-команды:
// !админ <пароль>, !выход, !выдать, !забрать, !премиум, !статистика.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/common"
)

// Handler обрабатывает админ-команды.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик админки.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// requireSession проверяет права и активную сессию. Возвращает false
// и отвечает пользователю, если доступа нет.
func (h *Handler) requireSession(ctx context.Context, chatID int64, userID int64) bool {
	if !h.service.IsAdmin(userID) {
		h.sendMessage(chatID, "❌ У тебя нет прав администратора")
		return false
	}
	if !h.service.HasActiveSession(ctx, userID) {
		h.sendMessage(chatID, "🔐 Сначала авторизуйся: !админ <пароль>")
		return false
	}
	return true
}

// HandleLogin обрабатывает команду !админ <пароль>.
func (h *Handler) HandleLogin(ctx context.Context, chatID int64, userID int64, args []string) {
	if !h.service.IsAdmin(userID) {
		h.sendMessage(chatID, "❌ У тебя нет прав администратора")
		return
	}
	if len(args) < 1 {
		h.sendMessage(chatID, "❌ Формат: !админ <пароль>")
		return
	}

	err := h.service.VerifyPassword(ctx, userID, args[0])
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTooManyAttempts):
			h.sendMessage(chatID, "🚫 Слишком много попыток, подожди час")
		case errors.Is(err, common.ErrWrongPassword):
			h.sendMessage(chatID, "❌ Неверный пароль")
		default:
			log.WithError(err).Error("Ошибка авторизации администратора")
			h.sendMessage(chatID, "❌ Ошибка авторизации")
		}
		return
	}
	h.sendMessage(chatID, "✅ Авторизация успешна, сессия активна 24 часа")
}

// HandleLogout обрабатывает команду !выход.
func (h *Handler) HandleLogout(ctx context.Context, chatID int64, userID int64) {
	if !h.requireSession(ctx, chatID, userID) {
		return
	}
	if err := h.service.Logout(ctx, userID); err != nil {
		log.WithError(err).Error("Ошибка завершения сессии")
		h.sendMessage(chatID, "❌ Ошибка завершения сессии")
		return
	}
	h.sendMessage(chatID, "👋 Сессия завершена")
}

// HandleGive обрабатывает команду !выдать <user_id> <сумма>.
func (h *Handler) HandleGive(ctx context.Context, chatID int64, userID int64, args []string) {
	h.handleTransfer(ctx, chatID, userID, args, true)
}

// HandleTake обрабатывает команду !забрать <user_id> <сумма>.
func (h *Handler) HandleTake(ctx context.Context, chatID int64, userID int64, args []string) {
	h.handleTransfer(ctx, chatID, userID, args, false)
}

func (h *Handler) handleTransfer(ctx context.Context, chatID int64, userID int64, args []string, give bool) {
	if !h.requireSession(ctx, chatID, userID) {
		return
	}
	if len(args) < 2 {
		h.sendMessage(chatID, "❌ Формат: <user_id> <сумма>")
		return
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.sendMessage(chatID, "❌ Некорректный user_id")
		return
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil || !amount.IsPositive() {
		h.sendMessage(chatID, "❌ Некорректная сумма")
		return
	}

	if give {
		err = h.service.GiveCoins(ctx, userID, targetID, amount)
	} else {
		err = h.service.TakeCoins(ctx, userID, targetID, amount)
	}
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAccountNotFound):
			h.sendMessage(chatID, "❌ Аккаунт не найден")
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(chatID, "❌ У пользователя недостаточно коинов")
		default:
			log.WithError(err).Error("Ошибка админ-операции с балансом")
			h.sendMessage(chatID, "❌ Ошибка операции")
		}
		return
	}

	verb := "Начислено"
	if !give {
		verb = "Списано"
	}
	h.sendMessage(chatID, fmt.Sprintf("✅ %s %s пользователю %d", verb, common.FormatAmount(amount), targetID))
}

// HandlePremium обрабатывает команду !премиум <user_id> <вкл|выкл>.
func (h *Handler) HandlePremium(ctx context.Context, chatID int64, userID int64, args []string) {
	if !h.requireSession(ctx, chatID, userID) {
		return
	}
	if len(args) < 2 {
		h.sendMessage(chatID, "❌ Формат: !премиум <user_id> <вкл|выкл>")
		return
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.sendMessage(chatID, "❌ Некорректный user_id")
		return
	}
	var enabled bool
	switch args[1] {
	case "вкл", "on":
		enabled = true
	case "выкл", "off":
		enabled = false
	default:
		h.sendMessage(chatID, "❌ Укажи вкл или выкл")
		return
	}

	if err := h.service.SetPremiumPass(ctx, targetID, enabled); err != nil {
		log.WithError(err).Error("Ошибка переключения премиум-пропуска")
		h.sendMessage(chatID, "❌ Ошибка операции")
		return
	}
	state := "включён"
	if !enabled {
		state = "выключен"
	}
	h.sendMessage(chatID, fmt.Sprintf("✅ Премиум-пропуск для %d %s", targetID, state))
}

// HandleStats обрабатывает команду !статистика.
func (h *Handler) HandleStats(ctx context.Context, chatID int64, userID int64) {
	if !h.requireSession(ctx, chatID, userID) {
		return
	}
	total, err := h.service.CountAccounts(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка получения статистики")
		h.sendMessage(chatID, "❌ Ошибка получения статистики")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("📊 Игроков зарегистрировано: %d", total))
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
