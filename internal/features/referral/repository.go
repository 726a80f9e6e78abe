package referral

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"gigafarm.ru/mining-bot/internal/features/economy"
)

// Repository — доступ к referrals.
type Repository struct {
	pool    *pgxpool.Pool
	economy *economy.Repository
}

// NewRepository создаёт новый репозиторий рефералов.
func NewRepository(pool *pgxpool.Pool, economyRepo *economy.Repository) *Repository {
	return &Repository{pool: pool, economy: economyRepo}
}

// CreateLink фиксирует связь и в той же транзакции начисляет бонусы
// обеим сторонам. Повторная связь — тихий no-op (created=false),
// бонусы не дублируются.
func (r *Repository) CreateLink(ctx context.Context, referrerID, referredID int64, referrerBonus, referredBonus decimal.Decimal) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO referrals (referrer_id, referred_id)
		VALUES ($1, $2)
		ON CONFLICT (referred_id) DO NOTHING
	`, referrerID, referredID)
	if err != nil {
		return false, fmt.Errorf("ошибка создания реферальной связи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	details := map[string]any{"referrer_id": referrerID, "referred_id": referredID}
	err = r.economy.CreditInTx(ctx, tx, referrerID, referrerBonus,
		economy.TxTypeReferralBonus, "Бонус за приглашённого игрока", details)
	if err != nil {
		return false, err
	}
	err = r.economy.CreditInTx(ctx, tx, referredID, referredBonus,
		economy.TxTypeReferralWelcome, "Приветственный бонус по приглашению", details)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("ошибка коммита реферальной связи: %w", err)
	}
	return true, nil
}

// IsReferred — приглашён ли пользователь кем-то.
func (r *Repository) IsReferred(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM referrals WHERE referred_id = $1)
	`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки реферала: %w", err)
	}
	return exists, nil
}

// CountReferrals — сколько игроков привёл пользователь.
func (r *Repository) CountReferrals(ctx context.Context, referrerID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM referrals WHERE referrer_id = $1
	`, referrerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта рефералов: %w", err)
	}
	return count, nil
}
