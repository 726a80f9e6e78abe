// Package accounts — repository.go выполняет операции с таблицей accounts.
package accounts

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gigafarm.ru/mining-bot/internal/common"
)

// Repository предоставляет методы для работы с таблицей accounts.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий аккаунтов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create создаёт запись аккаунта. Возвращает true, если запись новая.
func (r *Repository) Create(ctx context.Context, a *Account) (bool, error) {
	query := `
		INSERT INTO accounts (user_id, username, first_name, last_name, referral_code,
		                      has_premium_pass, is_banned)
		VALUES ($1, $2, $3, $4, $5, FALSE, FALSE)
		ON CONFLICT (user_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		a.UserID, a.Username, a.FirstName, a.LastName, a.ReferralCode)
	if err != nil {
		return false, fmt.Errorf("ошибка создания аккаунта: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByUserID возвращает аккаунт по Telegram user ID.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Account, error) {
	query := `
		SELECT id, user_id, username, first_name, last_name, referral_code,
		       has_premium_pass, is_banned, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`
	var a Account
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&a.ID, &a.UserID, &a.Username, &a.FirstName, &a.LastName, &a.ReferralCode,
		&a.HasPremiumPass, &a.IsBanned, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("ошибка получения аккаунта (user_id=%d): %w", userID, err)
	}
	return &a, nil
}

// GetByReferralCode возвращает аккаунт по реферальному коду.
func (r *Repository) GetByReferralCode(ctx context.Context, code string) (*Account, error) {
	query := `
		SELECT id, user_id, username, first_name, last_name, referral_code,
		       has_premium_pass, is_banned, created_at, updated_at
		FROM accounts
		WHERE referral_code = $1
	`
	var a Account
	err := r.db.QueryRow(ctx, query, code).Scan(
		&a.ID, &a.UserID, &a.Username, &a.FirstName, &a.LastName, &a.ReferralCode,
		&a.HasPremiumPass, &a.IsBanned, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.ErrReferralCodeNotFound
		}
		return nil, fmt.Errorf("ошибка поиска по коду: %w", err)
	}
	return &a, nil
}

// UpdateInfo обновляет имя/username игрока.
func (r *Repository) UpdateInfo(ctx context.Context, userID int64, info UpdateInfo) error {
	query := `
		UPDATE accounts
		SET username = $2, first_name = $3, last_name = $4, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, userID, info.Username, info.FirstName, info.LastName)
	if err != nil {
		return fmt.Errorf("ошибка обновления аккаунта: %w", err)
	}
	return nil
}

// SetPremiumPass включает или выключает премиум-пасс.
// Сам пасс продаётся внешней подпиской, бот только хранит флаг.
func (r *Repository) SetPremiumPass(ctx context.Context, userID int64, enabled bool) error {
	query := `UPDATE accounts SET has_premium_pass = $2, updated_at = NOW() WHERE user_id = $1`
	tag, err := r.db.Exec(ctx, query, userID, enabled)
	if err != nil {
		return fmt.Errorf("ошибка обновления премиум-пасса: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrAccountNotFound
	}
	return nil
}

// Querier — общий интерфейс pgxpool.Pool и pgx.Tx для запросов.
// Нужен, чтобы срез аккаунта можно было читать и снаружи, и внутри
// транзакции мутации (мутации обязаны читать актуальное состояние).
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetSnapshot собирает срез показателей аккаунта одним запросом:
// хешрейт и число ригов из user_rigs, число приглашённых из referrals.
func (r *Repository) GetSnapshot(ctx context.Context, userID int64) (*Snapshot, error) {
	return r.GetSnapshotQ(ctx, r.db, userID)
}

// GetSnapshotQ — то же, но через произвольный Querier (обычно pgx.Tx).
func (r *Repository) GetSnapshotQ(ctx context.Context, q Querier, userID int64) (*Snapshot, error) {
	query := `
		SELECT a.user_id,
		       a.has_premium_pass,
		       COALESCE((SELECT SUM(rc.hash_rate) FROM user_rigs ur
		                 JOIN rig_catalog rc ON rc.id = ur.rig_id
		                 WHERE ur.user_id = a.user_id), 0) AS hash_rate,
		       COALESCE((SELECT COUNT(*) FROM user_rigs ur
		                 WHERE ur.user_id = a.user_id), 0) AS rig_count,
		       COALESCE((SELECT COUNT(*) FROM referrals rf
		                 WHERE rf.referrer_id = a.user_id), 0) AS referral_count
		FROM accounts a
		WHERE a.user_id = $1
	`
	var s Snapshot
	err := q.QueryRow(ctx, query, userID).Scan(
		&s.UserID, &s.HasPremiumPass, &s.HashRate, &s.RigCount, &s.ReferralCount,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("ошибка получения среза аккаунта: %w", err)
	}
	return &s, nil
}

// CountAccounts возвращает общее число зарегистрированных игроков.
func (r *Repository) CountAccounts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта аккаунтов: %w", err)
	}
	return n, nil
}
