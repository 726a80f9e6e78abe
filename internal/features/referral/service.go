package referral

import (
	"context"

	"github.com/shopspring/decimal"

	"gigafarm.ru/mining-bot/internal/common"
	"gigafarm.ru/mining-bot/internal/features/accounts"
)

// codeResolver ищет аккаунт-владельца реферального кода.
// От сервиса аккаунтов нужен только этот метод.
type codeResolver interface {
	GetByReferralCode(ctx context.Context, code string) (*accounts.Account, error)
}

// Service — бизнес-логика реферальной программы.
type Service struct {
	repo          *Repository
	accounts      codeResolver
	referrerBonus decimal.Decimal
	referredBonus decimal.Decimal
}

// NewService создаёт новый сервис рефералов.
func NewService(repo *Repository, accountsService *accounts.Service, referrerBonus, referredBonus decimal.Decimal) *Service {
	return &Service{
		repo:          repo,
		accounts:      accountsService,
		referrerBonus: referrerBonus,
		referredBonus: referredBonus,
	}
}

// ApplyCode применяет реферальный код от имени приглашённого.
// Возвращает пригласившего и флаг created; повторное применение —
// no-op без бонусов.
func (s *Service) ApplyCode(ctx context.Context, referredID int64, code string) (*accounts.Account, bool, error) {
	referrer, err := s.accounts.GetByReferralCode(ctx, code)
	if err != nil {
		// ErrReferralCodeNotFound приходит из репозитория как есть;
		// остальное — реальные сбои, их нельзя выдавать за «нет кода»
		return nil, false, err
	}
	if referrer.UserID == referredID {
		return nil, false, common.ErrSelfReferral
	}

	created, err := s.repo.CreateLink(ctx, referrer.UserID, referredID, s.referrerBonus, s.referredBonus)
	if err != nil {
		return nil, false, err
	}
	return referrer, created, nil
}

// ReferrerBonus — размер бонуса пригласившему.
func (s *Service) ReferrerBonus() decimal.Decimal {
	return s.referrerBonus
}

// ReferredBonus — размер приветственного бонуса.
func (s *Service) ReferredBonus() decimal.Decimal {
	return s.referredBonus
}

// CountReferrals — сколько игроков привёл пользователь.
func (s *Service) CountReferrals(ctx context.Context, referrerID int64) (int, error) {
	return s.repo.CountReferrals(ctx, referrerID)
}
