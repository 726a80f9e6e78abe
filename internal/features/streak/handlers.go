package streak

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/common"
)

// Handler обрабатывает команды ежедневного бонуса.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик серий.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleClaim обрабатывает команду !бонус.
func (h *Handler) HandleClaim(ctx context.Context, chatID int64, userID int64) {
	result, err := h.service.Claim(ctx, userID, time.Now())
	if err != nil {
		var cooldown *common.CooldownError
		switch {
		case errors.As(err, &cooldown):
			h.sendMessage(chatID, fmt.Sprintf("⏳ Бонус уже получен! Возвращайся через %s",
				common.FormatDuration(cooldown.RetryAfter)))
		default:
			log.WithError(err).Error("Ошибка получения ежедневного бонуса")
			h.sendMessage(chatID, "❌ Ошибка получения бонуса")
		}
		return
	}

	var sb strings.Builder
	if result.Reset {
		sb.WriteString("💔 Серия прервалась и началась заново.\n")
	}
	sb.WriteString(fmt.Sprintf("🎁 День %d — получено %s!\n", result.Day, common.FormatAmount(result.Amount)))
	if result.Day < ScheduleLength() {
		sb.WriteString(fmt.Sprintf("Завтра: %s", common.FormatAmount(RewardForDay(result.Day+1))))
	} else {
		sb.WriteString(fmt.Sprintf("Дальше каждый день: %s", common.FormatAmount(RewardForDay(result.Day))))
	}
	h.sendMessage(chatID, sb.String())
}

// HandleStatus обрабатывает команду !серия.
func (h *Handler) HandleStatus(ctx context.Context, chatID int64, userID int64) {
	st, err := h.service.GetState(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения серии")
		h.sendMessage(chatID, "❌ Ошибка получения серии")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔥 Серия: %d %s\n", st.CurrentStreak, common.PluralizeDays(st.CurrentStreak)))
	sb.WriteString(fmt.Sprintf("🎁 Всего бонусов: %d\n", st.TotalClaims))
	if day, amount, err := h.service.NextReward(ctx, userID, time.Now()); err == nil {
		sb.WriteString(fmt.Sprintf("💰 Следующий бонус: день %d, %s\n", day, common.FormatAmount(amount)))
	}
	if st.NextClaimAt != nil {
		if wait := time.Until(*st.NextClaimAt); wait > 0 {
			sb.WriteString(fmt.Sprintf("⏳ Следующий через %s", common.FormatDuration(wait)))
		} else {
			sb.WriteString("✅ Бонус доступен! Получить: !бонус")
		}
	} else {
		sb.WriteString("✅ Первый бонус доступен! Получить: !бонус")
	}
	h.sendMessage(chatID, sb.String())
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
