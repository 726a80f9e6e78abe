// Package rigs — repository.go выполняет операции с таблицами rig_catalog и user_rigs.
package rigs

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"gigafarm.ru/mining-bot/internal/common"
	"gigafarm.ru/mining-bot/internal/features/economy"
)

// Repository предоставляет методы для работы с каталогом и ригами игроков.
type Repository struct {
	db      *pgxpool.Pool
	economy *economy.Repository // Для списания цены в той же транзакции
}

// NewRepository создаёт новый репозиторий ригов.
func NewRepository(db *pgxpool.Pool, economyRepo *economy.Repository) *Repository {
	return &Repository{db: db, economy: economyRepo}
}

// GetCatalog возвращает все модели ригов, отсортированные по цене.
func (r *Repository) GetCatalog(ctx context.Context) ([]*RigModel, error) {
	query := `
		SELECT id, code, display_name, hash_rate, price
		FROM rig_catalog
		ORDER BY price ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения каталога: %w", err)
	}
	defer rows.Close()

	var models []*RigModel
	for rows.Next() {
		var m RigModel
		if err := rows.Scan(&m.ID, &m.Code, &m.DisplayName, &m.HashRate, &m.Price); err != nil {
			return nil, fmt.Errorf("ошибка сканирования модели: %w", err)
		}
		models = append(models, &m)
	}
	return models, nil
}

// GetModelByCode возвращает модель рига по коду из команды покупки.
func (r *Repository) GetModelByCode(ctx context.Context, code string) (*RigModel, error) {
	query := `SELECT id, code, display_name, hash_rate, price FROM rig_catalog WHERE code = $1`
	var m RigModel
	err := r.db.QueryRow(ctx, query, code).Scan(&m.ID, &m.Code, &m.DisplayName, &m.HashRate, &m.Price)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.ErrRigNotFound
		}
		return nil, fmt.Errorf("ошибка поиска модели: %w", err)
	}
	return &m, nil
}

// BuyRig атомарно списывает цену и записывает риг игроку.
// Списание проверяет остаток под блокировкой строки — либо риг куплен
// и оплачен, либо не произошло ничего.
func (r *Repository) BuyRig(ctx context.Context, userID int64, model *RigModel) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	description := fmt.Sprintf("Покупка рига «%s»", model.DisplayName)
	err = r.economy.DebitInTx(ctx, tx, userID, model.Price, economy.TxTypeRigPurchase, description, map[string]any{
		"rig_code": model.Code,
	})
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_rigs (user_id, rig_id) VALUES ($1, $2)
	`, userID, model.ID)
	if err != nil {
		return fmt.Errorf("ошибка записи рига: %w", err)
	}

	return tx.Commit(ctx)
}

// GetOwnedRigs возвращает риги игрока, сгруппированные по модели.
func (r *Repository) GetOwnedRigs(ctx context.Context, userID int64) ([]*OwnedRig, error) {
	query := `
		SELECT rc.id, rc.code, rc.display_name, rc.hash_rate, rc.price, COUNT(*) AS cnt
		FROM user_rigs ur
		JOIN rig_catalog rc ON rc.id = ur.rig_id
		WHERE ur.user_id = $1
		GROUP BY rc.id, rc.code, rc.display_name, rc.hash_rate, rc.price
		ORDER BY rc.price ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ригов: %w", err)
	}
	defer rows.Close()

	var owned []*OwnedRig
	for rows.Next() {
		var o OwnedRig
		if err := rows.Scan(&o.Model.ID, &o.Model.Code, &o.Model.DisplayName,
			&o.Model.HashRate, &o.Model.Price, &o.Count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		o.TotalHash = o.Model.HashRate.Mul(decimal.NewFromInt(int64(o.Count)))
		owned = append(owned, &o)
	}
	return owned, nil
}

// GetHashRate возвращает суммарный хешрейт игрока.
func (r *Repository) GetHashRate(ctx context.Context, userID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(rc.hash_rate), 0)
		FROM user_rigs ur
		JOIN rig_catalog rc ON rc.id = ur.rig_id
		WHERE ur.user_id = $1
	`
	var total decimal.Decimal
	if err := r.db.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("ошибка подсчёта хешрейта: %w", err)
	}
	return total, nil
}
