package streak

import (
	"time"

	"github.com/shopspring/decimal"

	"gigafarm.ru/mining-bot/internal/common"
)

// rewardSchedule — награды по дням серии. После последнего дня
// награда повторяется, серия продолжает расти.
var rewardSchedule = []int64{100, 200, 300, 400, 500, 750, 1000}

// RewardForDay возвращает награду за указанный день серии (1-based).
func RewardForDay(day int) decimal.Decimal {
	if day < 1 {
		day = 1
	}
	if day > len(rewardSchedule) {
		day = len(rewardSchedule)
	}
	return decimal.NewFromInt(rewardSchedule[day-1])
}

// ScheduleLength — число уникальных дней в расписании.
func ScheduleLength() int {
	return len(rewardSchedule)
}

// Params — тайминги серии.
type Params struct {
	Cooldown time.Duration // Минимум между бонусами
	Grace    time.Duration // Допуск после NextClaimAt до сброса серии
}

// settleClaim — чистый расчёт бонуса. Решает: рано / продолжение /
// сброс. Запись в БД и зачисление делает репозиторий.
func settleClaim(st *State, p Params, now time.Time) (*ClaimResult, error) {
	if st.NextClaimAt != nil && now.Before(*st.NextClaimAt) {
		return nil, common.NewStreakCooldownError(st.NextClaimAt.Sub(now))
	}

	day := 1
	reset := false
	if st.NextClaimAt != nil {
		deadline := st.NextClaimAt.Add(p.Grace)
		if now.After(deadline) {
			reset = st.CurrentStreak > 0
		} else {
			day = st.CurrentStreak + 1
		}
	}

	return &ClaimResult{
		Day:    day,
		Amount: RewardForDay(day),
		Reset:  reset,
	}, nil
}
