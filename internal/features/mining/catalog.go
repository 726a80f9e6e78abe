// Package mining — catalog.go работает со справочником пулов.
// Каталог read-mostly, поэтому читается через небольшой TTL-кэш;
// мутации (claim, смена пула) кэш не используют и ходят в БД напрямую.
package mining

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gigafarm.ru/mining-bot/internal/common"
	"gigafarm.ru/mining-bot/internal/features/accounts"
)

// catalogTTL — сколько живёт кэш каталога пулов.
const catalogTTL = 5 * time.Minute

// Catalog читает пулы из таблицы pool_catalog.
type Catalog struct {
	db *pgxpool.Pool

	mu       sync.RWMutex
	cached   []*Pool
	cachedAt time.Time
}

// NewCatalog создаёт каталог пулов.
func NewCatalog(db *pgxpool.Pool) *Catalog {
	return &Catalog{db: db}
}

// GetAll возвращает все пулы (из кэша, если он свежий).
func (c *Catalog) GetAll(ctx context.Context) ([]*Pool, error) {
	c.mu.RLock()
	if c.cached != nil && time.Since(c.cachedAt) < catalogTTL {
		pools := c.cached
		c.mu.RUnlock()
		return pools, nil
	}
	c.mu.RUnlock()

	pools, err := c.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cached = pools
	c.cachedAt = time.Now()
	c.mu.Unlock()

	return pools, nil
}

// GetByName возвращает пул по имени.
func (c *Catalog) GetByName(ctx context.Context, name string) (*Pool, error) {
	pools, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range pools {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, common.ErrPoolNotFound
}

// loadAll читает каталог из БД.
func (c *Catalog) loadAll(ctx context.Context) ([]*Pool, error) {
	query := `
		SELECT id, name, display_name, multiplier, fee_percent,
		       min_rig_count, min_referrals, requires_premium_pass, allow_anytime_collection
		FROM pool_catalog
		ORDER BY multiplier ASC
	`
	rows, err := c.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога пулов: %w", err)
	}
	defer rows.Close()

	var pools []*Pool
	for rows.Next() {
		var p Pool
		if err := rows.Scan(&p.ID, &p.Name, &p.DisplayName, &p.Multiplier, &p.FeePercent,
			&p.MinRigCount, &p.MinReferrals, &p.RequiresPremiumPass, &p.AllowAnytimeCollection); err != nil {
			return nil, fmt.Errorf("ошибка сканирования пула: %w", err)
		}
		pools = append(pools, &p)
	}
	if len(pools) == 0 {
		return nil, fmt.Errorf("каталог пулов пуст: не применены миграции?")
	}
	return pools, nil
}

// getByNameTx читает пул по имени напрямую из БД, минуя кэш.
// Используется внутри транзакций мутаций: мутация никогда не должна
// считать сумму по устаревшим данным.
func getByNameTx(ctx context.Context, tx pgx.Tx, name string) (*Pool, error) {
	query := `
		SELECT id, name, display_name, multiplier, fee_percent,
		       min_rig_count, min_referrals, requires_premium_pass, allow_anytime_collection
		FROM pool_catalog
		WHERE name = $1
	`
	var p Pool
	err := tx.QueryRow(ctx, query, name).Scan(&p.ID, &p.Name, &p.DisplayName, &p.Multiplier,
		&p.FeePercent, &p.MinRigCount, &p.MinReferrals, &p.RequiresPremiumPass, &p.AllowAnytimeCollection)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.ErrPoolNotFound
		}
		return nil, fmt.Errorf("ошибка чтения пула %q: %w", name, err)
	}
	return &p, nil
}

// CheckEligibility проверяет требования пула против среза аккаунта.
// Возвращает список невыполненных условий (пустой — пул доступен).
//
// Для пулов с requires_premium_pass сам пасс закрывает все пороги;
// без пасса пороги проверяются как обычно.
func CheckEligibility(pool *Pool, snap *accounts.Snapshot) []string {
	if pool.RequiresPremiumPass && snap.HasPremiumPass {
		return nil
	}

	var unmet []string
	if pool.RequiresPremiumPass {
		unmet = append(unmet, "нужен премиум-пасс")
	}
	if snap.RigCount < pool.MinRigCount {
		unmet = append(unmet, fmt.Sprintf("нужно ригов: %d (у тебя %d)", pool.MinRigCount, snap.RigCount))
	}
	if snap.ReferralCount < pool.MinReferrals {
		unmet = append(unmet, fmt.Sprintf("нужно приглашённых: %d (у тебя %d)", pool.MinReferrals, snap.ReferralCount))
	}
	return unmet
}
