// Package mining — repository.go выполняет операции с таблицей accrual_states.
// Все мутации работают по схеме «заблокировать строку FOR UPDATE → перечитать
// состояние → посчитать чистой функцией → записать и зачислить одним коммитом».
// Два одновременных сбора для одного аккаунта сериализуются на блокировке,
// поэтому начисление никогда не зачисляется дважды.
package mining

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gigafarm.ru/mining-bot/internal/common"
	"gigafarm.ru/mining-bot/internal/features/accounts"
	"gigafarm.ru/mining-bot/internal/features/economy"
)

// Repository предоставляет методы для работы с состоянием начисления.
type Repository struct {
	db       *pgxpool.Pool
	economy  *economy.Repository // Зачисление награды в той же транзакции
	accounts *accounts.Repository
}

// NewRepository создаёт новый репозиторий майнинга.
func NewRepository(db *pgxpool.Pool, economyRepo *economy.Repository, accountsRepo *accounts.Repository) *Repository {
	return &Repository{db: db, economy: economyRepo, accounts: accountsRepo}
}

// CreateState создаёт начальное состояние начисления для нового игрока.
// Майнинг выключен, пул — standard.
func (r *Repository) CreateState(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO accrual_states (user_id, active_pool, accumulated_base,
		                            last_update_at, mining_active, reminder_sent)
		VALUES ($1, $2, 0, NOW(), FALSE, FALSE)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID, StandardPoolName)
	if err != nil {
		return fmt.Errorf("ошибка создания состояния майнинга: %w", err)
	}
	return nil
}

const stateColumns = `id, user_id, active_pool, accumulated_base, last_update_at,
       mining_active, cycle_started_at, reminder_sent, created_at, updated_at`

// GetState возвращает состояние начисления игрока (без блокировки).
func (r *Repository) GetState(ctx context.Context, userID int64) (*AccrualState, error) {
	query := `SELECT ` + stateColumns + ` FROM accrual_states WHERE user_id = $1`
	return scanState(r.db.QueryRow(ctx, query, userID))
}

// lockState читает состояние под блокировкой строки внутри транзакции.
func lockState(ctx context.Context, tx pgx.Tx, userID int64) (*AccrualState, error) {
	query := `SELECT ` + stateColumns + ` FROM accrual_states WHERE user_id = $1 FOR UPDATE`
	return scanState(tx.QueryRow(ctx, query, userID))
}

func scanState(row pgx.Row) (*AccrualState, error) {
	var st AccrualState
	err := row.Scan(
		&st.ID, &st.UserID, &st.ActivePool, &st.AccumulatedBase, &st.LastUpdateAt,
		&st.MiningActive, &st.CycleStartedAt, &st.ReminderSent, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("ошибка чтения состояния майнинга: %w", err)
	}
	return &st, nil
}

// StartMining запускает новый цикл майнинга.
// Несобранный остаток не сгорает: проекция по старому циклу сворачивается
// в accumulated_base и переносится в новый цикл.
func (r *Repository) StartMining(ctx context.Context, userID int64, p Params, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	st, err := lockState(ctx, tx, userID)
	if err != nil {
		return err
	}

	if CycleStateAt(st, p, now) == CycleRunning {
		return common.ErrMiningAlreadyRunning
	}

	pool, err := getByNameTx(ctx, tx, st.ActivePool)
	if err != nil {
		return err
	}
	snap, err := r.accounts.GetSnapshotQ(ctx, tx, userID)
	if err != nil {
		return err
	}

	folded := FoldAccrual(st, pool, snap.HashRate, p, now)

	_, err = tx.Exec(ctx, `
		UPDATE accrual_states
		SET accumulated_base = $2, last_update_at = $3, mining_active = TRUE,
		    cycle_started_at = $3, reminder_sent = FALSE, updated_at = NOW()
		WHERE user_id = $1
	`, userID, folded, now)
	if err != nil {
		return fmt.Errorf("ошибка запуска цикла: %w", err)
	}

	return tx.Commit(ctx)
}

// Claim атомарно собирает награду: начисление пересчитывается по свежему
// состоянию внутри транзакции, баланс кредитуется, журнал пополняется —
// одним коммитом. Повторный сбор сразу после успешного вернёт
// common.ErrNothingToClaim, баланс второй раз не изменится.
func (r *Repository) Claim(ctx context.Context, userID int64, p Params, now time.Time, requestedHours *float64) (*ClaimResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	st, err := lockState(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	pool, err := getByNameTx(ctx, tx, st.ActivePool)
	if err != nil {
		return nil, err
	}
	snap, err := r.accounts.GetSnapshotQ(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	// Пороги активного пула могли перестать выполняться (риги проданы и т.п.)
	if unmet := CheckEligibility(pool, snap); len(unmet) > 0 {
		return nil, &common.PoolIneligibleError{PoolName: pool.Name, Unmet: unmet}
	}

	settle, err := SettleClaim(st, pool, snap.HashRate, snap.HasPremiumPass, p, now, requestedHours)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE accrual_states
		SET accumulated_base = $2, last_update_at = $3, mining_active = $4,
		    reminder_sent = FALSE, updated_at = NOW()
		WHERE user_id = $1
	`, userID, settle.NewAccumulated, now, settle.MiningActiveAfter)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления состояния: %w", err)
	}

	description := fmt.Sprintf("Сбор награды майнинга (пул %s)", pool.DisplayName)
	err = r.economy.CreditInTx(ctx, tx, userID, settle.Net, economy.TxTypeMiningClaim, description, map[string]any{
		"gross": settle.Gross.String(),
		"fee":   settle.Fee.String(),
		"pool":  pool.Name,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации сбора: %w", err)
	}

	return &ClaimResult{
		Gross:    settle.Gross,
		Fee:      settle.Fee,
		Net:      settle.Net,
		PoolName: pool.Name,
	}, nil
}

// ChangePool переключает активный пул.
// Сначала начисление по старому множителю сворачивается в accumulated_base,
// и только потом подменяется пул: новый множитель действует строго вперёд.
// При невыполненных требованиях не меняется ничего.
func (r *Repository) ChangePool(ctx context.Context, userID int64, newPoolName string, p Params, now time.Time) (*Pool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	st, err := lockState(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if st.ActivePool == newPoolName {
		return nil, common.ErrPoolAlreadyActive
	}

	newPool, err := getByNameTx(ctx, tx, newPoolName)
	if err != nil {
		return nil, err
	}
	snap, err := r.accounts.GetSnapshotQ(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if unmet := CheckEligibility(newPool, snap); len(unmet) > 0 {
		return nil, &common.PoolIneligibleError{PoolName: newPool.Name, Unmet: unmet}
	}

	oldPool, err := getByNameTx(ctx, tx, st.ActivePool)
	if err != nil {
		return nil, err
	}

	folded := FoldAccrual(st, oldPool, snap.HashRate, p, now)

	_, err = tx.Exec(ctx, `
		UPDATE accrual_states
		SET active_pool = $2, accumulated_base = $3, last_update_at = $4, updated_at = NOW()
		WHERE user_id = $1
	`, userID, newPool.Name, folded, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка смены пула: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации смены пула: %w", err)
	}
	return newPool, nil
}

// GetExpiredUnclaimed возвращает user_id игроков с истёкшим циклом,
// которым ещё не отправляли напоминание. Используется почасовым джобом.
func (r *Repository) GetExpiredUnclaimed(ctx context.Context, p Params) ([]int64, error) {
	query := `
		SELECT user_id
		FROM accrual_states
		WHERE mining_active = TRUE
		  AND reminder_sent = FALSE
		  AND cycle_started_at IS NOT NULL
		  AND cycle_started_at <= NOW() - make_interval(secs => $1)
	`
	rows, err := r.db.Query(ctx, query, p.CycleDuration.Seconds())
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска истёкших циклов: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// MarkReminderSent помечает, что напоминание об истёкшем цикле отправлено.
func (r *Repository) MarkReminderSent(ctx context.Context, userID int64) error {
	query := `UPDATE accrual_states SET reminder_sent = TRUE WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
