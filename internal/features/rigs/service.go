// Package rigs — service.go содержит бизнес-логику магазина ригов.
package rigs

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Service управляет магазином ригов.
type Service struct {
	repo *Repository
}

// NewService создаёт новый сервис магазина.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetCatalog возвращает каталог моделей.
func (s *Service) GetCatalog(ctx context.Context) ([]*RigModel, error) {
	return s.repo.GetCatalog(ctx)
}

// BuyRig покупает риг по коду модели.
// Списание цены и запись рига происходят в одной транзакции БД.
func (s *Service) BuyRig(ctx context.Context, userID int64, code string) (*RigModel, error) {
	model, err := s.repo.GetModelByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.repo.BuyRig(ctx, userID, model); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"rig":     model.Code,
		"price":   model.Price.String(),
	}).Info("Риг куплен")

	return model, nil
}

// GetOwnedRigs возвращает риги игрока по моделям.
func (s *Service) GetOwnedRigs(ctx context.Context, userID int64) ([]*OwnedRig, error) {
	return s.repo.GetOwnedRigs(ctx, userID)
}

// GetHashRate возвращает суммарный хешрейт игрока.
func (s *Service) GetHashRate(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.repo.GetHashRate(ctx, userID)
}
