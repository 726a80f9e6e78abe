// Package mining — ядро игры: начисление награды за майнинг и её сбор.
// models.go описывает состояние начисления, пулы и результат сбора.
package mining

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccrualState представляет состояние начисления одного аккаунта.
// Ровно одна запись на игрока; создаётся при регистрации и живёт вечно.
//
// Инварианты:
//   - accumulated_base >= 0, между сборами только растёт
//   - last_update_at <= now (время выдаёт только сервер)
//   - при успешном сборе accumulated_base обнуляется ровно один раз
type AccrualState struct {
	ID              int64           `db:"id"`
	UserID          int64           `db:"user_id"`
	ActivePool      string          `db:"active_pool"`      // Имя пула из pool_catalog
	AccumulatedBase decimal.Decimal `db:"accumulated_base"` // Начислено, но не собрано
	LastUpdateAt    time.Time       `db:"last_update_at"`   // Последняя фиксация начисления
	MiningActive    bool            `db:"mining_active"`    // Идёт ли цикл майнинга
	CycleStartedAt  *time.Time      `db:"cycle_started_at"` // Начало текущего цикла (nil до первого старта)
	ReminderSent    bool            `db:"reminder_sent"`    // Напоминание об истёкшем цикле уже отправлено
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// CycleState — фаза цикла майнинга.
// Переходы: Stopped → Running (явный старт) → Expired (по таймеру) → Stopped (сбор).
// Фаза не хранится в БД, а вычисляется лениво из server-времени.
type CycleState string

const (
	CycleStopped CycleState = "stopped"
	CycleRunning CycleState = "running"
	CycleExpired CycleState = "expired"
)

// Pool представляет пул майнинга — тариф с множителем и комиссией.
// Строки каталога заполняет оператор, игрокам они read-only.
//
// Инвариант каталога: ровно один пул с нулевыми порогами (standard),
// чтобы у любого аккаунта всегда был доступный пул по умолчанию.
type Pool struct {
	ID                     int64           `db:"id"`
	Name                   string          `db:"name"`         // Машинное имя для команд
	DisplayName            string          `db:"display_name"` // Название для вывода
	Multiplier             decimal.Decimal `db:"multiplier"`   // Множитель заработка (> 0)
	FeePercent             decimal.Decimal `db:"fee_percent"`  // Комиссия 0-100, удерживается при сборе
	MinRigCount            int             `db:"min_rig_count"`
	MinReferrals           int             `db:"min_referrals"`
	RequiresPremiumPass    bool            `db:"requires_premium_pass"`
	AllowAnytimeCollection bool            `db:"allow_anytime_collection"` // Сбор без кулдауна
}

// StandardPoolName — имя пула по умолчанию для новых аккаунтов.
const StandardPoolName = "standard"

// ClaimResult — итог успешного сбора награды.
type ClaimResult struct {
	Gross    decimal.Decimal // Начислено до комиссии
	Fee      decimal.Decimal // Удержано пулом
	Net      decimal.Decimal // Зачислено на баланс
	PoolName string
}

// Status — сводка для вывода игроку: фаза цикла, сколько можно собрать,
// когда цикл закончится.
type Status struct {
	State       CycleState
	Pool        *Pool
	HashRate    decimal.Decimal
	Claimable   decimal.Decimal
	CycleEndsIn time.Duration // Сколько осталось до конца цикла (0 если не Running)
}
