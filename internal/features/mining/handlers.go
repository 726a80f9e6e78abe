// Package mining — handlers.go обрабатывает команды:
// !шахта (статус), !старт, !собрать [часы], !пулы, !пул <имя>.
package mining

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/common"
)

// Handler обрабатывает команды майнинга.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик майнинга.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleStatus обрабатывает команду !шахта — сводка по майнингу.
//
// Формат ответа:
//
//	⛏ Пул: Общий (x1, комиссия 0%)
//	💻 Хешрейт: 45
//	💰 Можно собрать: 84.4 коина
//	⏳ До конца цикла: 5 ч 12 мин
func (h *Handler) HandleStatus(ctx context.Context, chatID int64, userID int64) {
	status, err := h.service.GetStatus(ctx, userID, time.Now())
	if err != nil {
		log.WithError(err).Error("Ошибка получения статуса майнинга")
		h.sendMessage(chatID, "❌ Ошибка получения статуса")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⛏ Пул: %s (x%s, комиссия %s%%)\n",
		status.Pool.DisplayName, status.Pool.Multiplier.String(), status.Pool.FeePercent.String()))
	sb.WriteString(fmt.Sprintf("💻 Хешрейт: %s (%s/час)\n",
		status.HashRate.String(),
		common.FormatAmount(h.service.HourlyRateFor(status.Pool, status.HashRate))))
	sb.WriteString(fmt.Sprintf("💰 Можно собрать: %s\n", common.FormatAmount(status.Claimable)))

	switch status.State {
	case CycleRunning:
		sb.WriteString(fmt.Sprintf("⏳ До конца цикла: %s", common.FormatDuration(status.CycleEndsIn)))
	case CycleExpired:
		sb.WriteString("🛑 Цикл закончился — собери награду или запусти новый (!старт)")
	default:
		sb.WriteString("💤 Майнинг остановлен. Запустить: !старт")
	}
	h.sendMessage(chatID, sb.String())
}

// HandleStart обрабатывает команду !старт — запуск цикла майнинга.
func (h *Handler) HandleStart(ctx context.Context, chatID int64, userID int64) {
	err := h.service.StartMining(ctx, userID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMiningAlreadyRunning):
			h.sendMessage(chatID, "⛏ Майнинг уже идёт. Статус: !шахта")
		case errors.Is(err, common.ErrConcurrentClaim):
			h.sendMessage(chatID, "⌛ Попробуй ещё раз")
		default:
			log.WithError(err).Error("Ошибка запуска майнинга")
			h.sendMessage(chatID, "❌ Ошибка запуска майнинга")
		}
		return
	}
	h.sendMessage(chatID, "🚀 Цикл майнинга запущен! Статус: !шахта")
}

// HandleClaim обрабатывает команду !собрать [часы].
// Без аргумента собирается всё доступное; с аргументом — указанное
// число часов начисления, остаток остаётся копиться.
func (h *Handler) HandleClaim(ctx context.Context, chatID int64, userID int64, args []string) {
	var requestedHours *float64
	if len(args) > 0 {
		hrs, err := strconv.ParseFloat(args[0], 64)
		if err != nil || hrs <= 0 {
			h.sendMessage(chatID, "❌ Формат: !собрать [часов], например !собрать 8")
			return
		}
		requestedHours = &hrs
	}

	result, err := h.service.Claim(ctx, userID, time.Now(), requestedHours)
	if err != nil {
		var cooldown *common.CooldownError
		var ineligible *common.PoolIneligibleError
		switch {
		case errors.Is(err, common.ErrNothingToClaim):
			h.sendMessage(chatID, "💰 Пока нечего собирать. Запусти майнинг: !старт")
		case errors.As(err, &cooldown):
			h.sendMessage(chatID, fmt.Sprintf("⏳ Рано! Собрать можно через %s",
				common.FormatDuration(cooldown.RetryAfter)))
		case errors.As(err, &ineligible):
			h.sendMessage(chatID, fmt.Sprintf("❌ Пул недоступен: %s\nПереключись: !пул standard",
				strings.Join(ineligible.Unmet, "; ")))
		case errors.Is(err, common.ErrInvalidPeriod):
			h.sendMessage(chatID, "❌ Период сбора вне допустимого диапазона")
		case errors.Is(err, common.ErrConcurrentClaim):
			h.sendMessage(chatID, "⌛ Попробуй ещё раз")
		default:
			log.WithError(err).Error("Ошибка сбора награды")
			h.sendMessage(chatID, "❌ Ошибка сбора награды")
		}
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Собрано %s!\nНачислено: %s, комиссия пула: %s",
		common.FormatAmount(result.Net),
		common.FormatAmount(result.Gross),
		common.FormatAmount(result.Fee)))
}

// HandlePools обрабатывает команду !пулы — список пулов с требованиями.
func (h *Handler) HandlePools(ctx context.Context, chatID int64, userID int64) {
	pools, snap, err := h.service.ListPools(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения пулов")
		h.sendMessage(chatID, "❌ Ошибка получения списка пулов")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏊 Пулы майнинга:\n\n")
	for _, p := range pools {
		mark := "✅"
		note := ""
		if unmet := CheckEligibility(p, snap); len(unmet) > 0 {
			mark = "🔒"
			note = "\n   " + strings.Join(unmet, "; ")
		}
		sb.WriteString(fmt.Sprintf("%s %s — x%s, комиссия %s%%%s\n   Выбрать: !пул %s\n\n",
			mark, p.DisplayName, p.Multiplier.String(), p.FeePercent.String(), note, p.Name))
	}
	h.sendMessage(chatID, sb.String())
}

// HandleChangePool обрабатывает команду !пул <имя>.
func (h *Handler) HandleChangePool(ctx context.Context, chatID int64, userID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, "❌ Формат: !пул <имя> (список: !пулы)")
		return
	}

	pool, err := h.service.ChangePool(ctx, userID, strings.ToLower(args[0]), time.Now())
	if err != nil {
		var ineligible *common.PoolIneligibleError
		switch {
		case errors.Is(err, common.ErrPoolNotFound):
			h.sendMessage(chatID, "❌ Такого пула нет. Список: !пулы")
		case errors.Is(err, common.ErrPoolAlreadyActive):
			h.sendMessage(chatID, "ℹ️ Этот пул уже выбран")
		case errors.As(err, &ineligible):
			h.sendMessage(chatID, fmt.Sprintf("🔒 Пул недоступен: %s",
				strings.Join(ineligible.Unmet, "; ")))
		case errors.Is(err, common.ErrConcurrentClaim):
			h.sendMessage(chatID, "⌛ Попробуй ещё раз")
		default:
			log.WithError(err).Error("Ошибка смены пула")
			h.sendMessage(chatID, "❌ Ошибка смены пула")
		}
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Пул переключён на %s (x%s, комиссия %s%%)",
		pool.DisplayName, pool.Multiplier.String(), pool.FeePercent.String()))
}

// sendMessage — утилита для отправки сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
