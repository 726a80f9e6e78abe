package streak

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Service — бизнес-логика ежедневных бонусов.
type Service struct {
	repo   *Repository
	params Params
}

// NewService создаёт новый сервис серий.
func NewService(repo *Repository, params Params) *Service {
	return &Service{repo: repo, params: params}
}

// CreateState создаёт запись серии для нового пользователя.
func (s *Service) CreateState(ctx context.Context, userID int64) error {
	return s.repo.CreateState(ctx, userID)
}

// GetState возвращает текущее состояние серии.
func (s *Service) GetState(ctx context.Context, userID int64) (*State, error) {
	return s.repo.GetState(ctx, userID)
}

// NextReward возвращает день и сумму следующего бонуса игрока.
// Если бонус ещё на кулдауне, расчёт делается на момент, когда он
// станет доступен (то есть в предположении, что игрок не опоздает).
func (s *Service) NextReward(ctx context.Context, userID int64, now time.Time) (int, decimal.Decimal, error) {
	st, err := s.repo.GetState(ctx, userID)
	if err != nil {
		return 0, decimal.Zero, err
	}
	at := now
	if st.NextClaimAt != nil && at.Before(*st.NextClaimAt) {
		at = *st.NextClaimAt
	}
	day := 1
	if st.NextClaimAt != nil && !at.After(st.NextClaimAt.Add(s.params.Grace)) {
		day = st.CurrentStreak + 1
	}
	return day, RewardForDay(day), nil
}

// Claim начисляет ежедневный бонус.
func (s *Service) Claim(ctx context.Context, userID int64, now time.Time) (*ClaimResult, error) {
	return s.repo.Claim(ctx, userID, s.params, now)
}
