// Package mining — service.go содержит оркестрацию операций майнинга.
// Вся арифметика в projection.go, все транзакции в repository.go;
// сервис склеивает их, добавляя повтор при конфликте транзакций.
package mining

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/common"
	"gigafarm.ru/mining-bot/internal/config"
	"gigafarm.ru/mining-bot/internal/db/postgres"
	"gigafarm.ru/mining-bot/internal/features/accounts"
)

// Service управляет начислением и сбором награды майнинга.
type Service struct {
	repo            *Repository
	catalog         *Catalog
	accountsService *accounts.Service
	params          Params
}

// NewService создаёт новый сервис майнинга.
func NewService(repo *Repository, catalog *Catalog, accountsService *accounts.Service, cfg *config.Config) *Service {
	return &Service{
		repo:            repo,
		catalog:         catalog,
		accountsService: accountsService,
		params:          ParamsFromConfig(cfg),
	}
}

// Params возвращает параметры начисления (для джобов и обработчиков).
func (s *Service) Params() Params {
	return s.params
}

// CreateState создаёт состояние майнинга для нового игрока.
func (s *Service) CreateState(ctx context.Context, userID int64) error {
	return s.repo.CreateState(ctx, userID)
}

// GetStatus возвращает сводку для игрока: фаза цикла, сколько можно
// собрать сейчас, сколько осталось до конца цикла. Только чтение —
// этот метод дергается часто и ничего не блокирует.
func (s *Service) GetStatus(ctx context.Context, userID int64, now time.Time) (*Status, error) {
	st, err := s.repo.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	pool, err := s.catalog.GetByName(ctx, st.ActivePool)
	if err != nil {
		return nil, err
	}
	snap, err := s.accountsService.GetSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	state := CycleStateAt(st, s.params, now)
	var endsIn time.Duration
	if state == CycleRunning {
		endsIn = st.CycleStartedAt.Add(s.params.CycleDuration).Sub(now)
	}

	return &Status{
		State:       state,
		Pool:        pool,
		HashRate:    snap.HashRate,
		Claimable:   Claimable(st, pool, snap.HashRate, s.params, now),
		CycleEndsIn: endsIn,
	}, nil
}

// StartMining запускает цикл майнинга.
func (s *Service) StartMining(ctx context.Context, userID int64, now time.Time) error {
	return s.withRetry(func() error {
		return s.repo.StartMining(ctx, userID, s.params, now)
	})
}

// Claim собирает награду. requestedHours — опциональный период частичного
// сбора; nil означает «всё доступное».
func (s *Service) Claim(ctx context.Context, userID int64, now time.Time, requestedHours *float64) (*ClaimResult, error) {
	var result *ClaimResult
	err := s.withRetry(func() error {
		var opErr error
		result, opErr = s.repo.Claim(ctx, userID, s.params, now, requestedHours)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"gross":   result.Gross.String(),
		"fee":     result.Fee.String(),
		"net":     result.Net.String(),
		"pool":    result.PoolName,
	}).Info("Награда собрана")
	return result, nil
}

// ChangePool переключает активный пул с проверкой требований.
func (s *Service) ChangePool(ctx context.Context, userID int64, poolName string, now time.Time) (*Pool, error) {
	var pool *Pool
	err := s.withRetry(func() error {
		var opErr error
		pool, opErr = s.repo.ChangePool(ctx, userID, poolName, s.params, now)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"pool":    poolName,
	}).Info("Пул переключён")
	return pool, nil
}

// ListPools возвращает каталог пулов вместе со срезом аккаунта,
// чтобы обработчик мог пометить недоступные пулы.
func (s *Service) ListPools(ctx context.Context, userID int64) ([]*Pool, *accounts.Snapshot, error) {
	pools, err := s.catalog.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	snap, err := s.accountsService.GetSnapshot(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return pools, snap, nil
}

// HourlyRateFor возвращает текущую скорость добычи аккаунта в час.
func (s *Service) HourlyRateFor(pool *Pool, hashRate decimal.Decimal) decimal.Decimal {
	return HourlyRate(hashRate, pool.Multiplier, s.params.BaseRate)
}

// SendReminders отправляет напоминания игрокам с истёкшим циклом.
// Запускается кроном каждый час. Напоминание не меняет состояние
// начисления — только флаг reminder_sent, чтобы не спамить.
func (s *Service) SendReminders(ctx context.Context, sendFunc func(userID int64, text string)) error {
	ids, err := s.repo.GetExpiredUnclaimed(ctx, s.params)
	if err != nil {
		return err
	}

	for _, userID := range ids {
		sendFunc(userID, "⛏ Цикл майнинга закончился! Собери награду (!собрать) или запусти новый (!старт)")
		if err := s.repo.MarkReminderSent(ctx, userID); err != nil {
			log.WithError(err).WithField("user_id", userID).Error("Ошибка отметки напоминания")
		}
	}

	if len(ids) > 0 {
		log.WithField("count", len(ids)).Info("Напоминания об истёкших циклах отправлены")
	}
	return nil
}

// withRetry повторяет операцию один раз при конфликте параллельных
// транзакций. Конфликт ловится до коммита, побочных эффектов нет,
// поэтому повтор безопасен. Второй конфликт подряд отдаём вызывающему.
func (s *Service) withRetry(op func() error) error {
	err := op()
	if err != nil && postgres.IsSerializationFailure(err) {
		log.Debug("Конфликт транзакций, повторяем операцию")
		err = op()
		if err != nil && postgres.IsSerializationFailure(err) {
			return common.ErrConcurrentClaim
		}
	}
	return err
}
