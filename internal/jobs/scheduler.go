// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежечасные напоминания о
// заканчивающихся циклах майнинга и ночная сводка экономики.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/features/economy"
	"gigafarm.ru/mining-bot/internal/features/mining"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron           *cron.Cron
	miningService  *mining.Service
	economyService *economy.Service
	sendFunc       func(userID int64, text string)
}

// NewScheduler создаёт планировщик задач с московским часовым поясом.
func NewScheduler(miningService *mining.Service, economyService *economy.Service, sendFunc func(userID int64, text string)) *Scheduler {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить Europe/Moscow, используем UTC+3")
		loc = time.FixedZone("MSK", 3*60*60)
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:           c,
		miningService:  miningService,
		economyService: economyService,
		sendFunc:       sendFunc,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Напоминания о несобранных наградах каждый час
	s.cron.AddFunc("0 * * * *", func() {
		log.Debug("[CRON] Проверка напоминаний о сборе")
		if err := s.miningService.SendReminders(ctx, s.sendFunc); err != nil {
			log.WithError(err).Error("[CRON] Ошибка напоминаний")
		}
	})

	// Ночная сводка оборота за сутки в 00:05 по Москве
	s.cron.AddFunc("5 0 * * *", func() {
		totals, err := s.economyService.GetDailyTotals(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка сводки экономики")
			return
		}
		fields := log.Fields{}
		for txType, total := range totals {
			fields[txType] = total.String()
		}
		log.WithFields(fields).Info("[CRON] Оборот за сутки")
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен (Europe/Moscow)")
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
