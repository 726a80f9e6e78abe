package streak

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gigafarm.ru/mining-bot/internal/common"
	"gigafarm.ru/mining-bot/internal/features/economy"
)

// Repository — доступ к streak_states.
type Repository struct {
	pool    *pgxpool.Pool
	economy *economy.Repository
}

// NewRepository создаёт новый репозиторий серий.
func NewRepository(pool *pgxpool.Pool, economyRepo *economy.Repository) *Repository {
	return &Repository{pool: pool, economy: economyRepo}
}

// CreateState создаёт запись серии для нового пользователя.
func (r *Repository) CreateState(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO streak_states (user_id, current_streak, total_claims)
		VALUES ($1, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return fmt.Errorf("ошибка создания серии: %w", err)
	}
	return nil
}

// GetState возвращает состояние серии пользователя.
func (r *Repository) GetState(ctx context.Context, userID int64) (*State, error) {
	st, err := r.scanState(r.pool.QueryRow(ctx, `
		SELECT user_id, current_streak, last_claim_at, next_claim_at, total_claims, created_at, updated_at
		FROM streak_states
		WHERE user_id = $1
	`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("ошибка получения серии: %w", err)
	}
	return st, nil
}

// Claim атомарно начисляет ежедневный бонус: блокирует строку серии,
// решает продолжение/сброс и в той же транзакции зачисляет награду.
func (r *Repository) Claim(ctx context.Context, userID int64, p Params, now time.Time) (*ClaimResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	st, err := r.scanState(tx.QueryRow(ctx, `
		SELECT user_id, current_streak, last_claim_at, next_claim_at, total_claims, created_at, updated_at
		FROM streak_states
		WHERE user_id = $1
		FOR UPDATE
	`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("ошибка блокировки серии: %w", err)
	}

	result, err := settleClaim(st, p, now)
	if err != nil {
		return nil, err
	}

	nextAt := now.Add(p.Cooldown)
	_, err = tx.Exec(ctx, `
		UPDATE streak_states
		SET current_streak = $2,
		    last_claim_at = $3,
		    next_claim_at = $4,
		    total_claims = total_claims + 1,
		    updated_at = NOW()
		WHERE user_id = $1
	`, userID, result.Day, now, nextAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления серии: %w", err)
	}

	err = r.economy.CreditInTx(ctx, tx, userID, result.Amount,
		economy.TxTypeStreakBonus,
		fmt.Sprintf("Ежедневный бонус (день %d)", result.Day),
		map[string]any{"day": result.Day, "reset": result.Reset})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка коммита бонуса: %w", err)
	}
	return result, nil
}

func (r *Repository) scanState(row pgx.Row) (*State, error) {
	st := &State{}
	err := row.Scan(&st.UserID, &st.CurrentStreak, &st.LastClaimAt, &st.NextClaimAt,
		&st.TotalClaims, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return st, nil
}
