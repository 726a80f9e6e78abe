// Package accounts — service.go содержит бизнес-логику управления аккаунтами.
// Сервис координирует регистрацию новых игроков, выдачу реферальных кодов
// и сбор среза показателей для проверок eligibility.
package accounts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Service управляет аккаунтами игроков.
type Service struct {
	repo *Repository // Репозиторий для работы с таблицей accounts
}

// NewService создаёт новый сервис аккаунтов.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// EnsureAccount гарантирует, что аккаунт существует.
// Если игрок уже есть в базе — обновляет его данные (имя могло смениться).
// Возвращает true, если аккаунт создан впервые: по этому флагу бот
// инициализирует баланс, состояние майнинга и стрик.
func (s *Service) EnsureAccount(ctx context.Context, userID int64, username, firstName, lastName string) (bool, error) {
	account := &Account{
		UserID:       userID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		ReferralCode: uuid.NewString(),
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return false, fmt.Errorf("ошибка регистрации: %w", err)
	}

	if created {
		log.WithFields(log.Fields{
			"user_id":  userID,
			"username": username,
		}).Info("Новый игрок зарегистрирован")
		return true, nil
	}

	// Игрок уже есть — освежаем данные профиля
	if err := s.repo.UpdateInfo(ctx, userID, UpdateInfo{
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	}); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось обновить профиль")
	}
	return false, nil
}

// GetByUserID возвращает аккаунт игрока.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Account, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// GetByReferralCode возвращает аккаунт по реферальному коду.
func (s *Service) GetByReferralCode(ctx context.Context, code string) (*Account, error) {
	return s.repo.GetByReferralCode(ctx, code)
}

// GetSnapshot возвращает актуальный срез показателей аккаунта.
func (s *Service) GetSnapshot(ctx context.Context, userID int64) (*Snapshot, error) {
	return s.repo.GetSnapshot(ctx, userID)
}

// SetPremiumPass включает или выключает премиум-пасс (админ-операция).
func (s *Service) SetPremiumPass(ctx context.Context, userID int64, enabled bool) error {
	return s.repo.SetPremiumPass(ctx, userID, enabled)
}

// CountAccounts возвращает число зарегистрированных игроков.
func (s *Service) CountAccounts(ctx context.Context) (int64, error) {
	return s.repo.CountAccounts(ctx)
}
