// Package economy управляет виртуальной валютой «коины».
// models.go описывает структуры для балансов и журнала транзакций.
package economy

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance представляет баланс игрока.
// Каждый аккаунт имеет ровно одну запись в таблице balances.
// Инвариант: balance никогда не уходит в минус — списания проверяют
// остаток под блокировкой строки.
type Balance struct {
	ID          int64           `db:"id"`           // ID записи
	UserID      int64           `db:"user_id"`      // Telegram user ID
	Balance     decimal.Decimal `db:"balance"`      // Текущий баланс
	TotalEarned decimal.Decimal `db:"total_earned"` // Сколько всего заработано
	TotalSpent  decimal.Decimal `db:"total_spent"`  // Сколько всего потрачено
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// Transaction представляет одну операцию с коинами.
// Журнал append-only: записи никогда не изменяются и не удаляются,
// по нему строится вся отчётность.
type Transaction struct {
	ID              int64           `db:"id"`               // ID транзакции
	FromUserID      *int64          `db:"from_user_id"`     // Отправитель (nil для системных начислений)
	ToUserID        *int64          `db:"to_user_id"`       // Получатель (nil для системных списаний)
	Amount          decimal.Decimal `db:"amount"`           // Сумма (всегда положительная)
	TransactionType string          `db:"transaction_type"` // Тип: 'mining_claim', 'streak_bonus', и т.д.
	Description     string          `db:"description"`      // Описание для отображения
	Details         map[string]any  `db:"details"`          // Доп. данные: gross/fee/pool для сборов майнинга
	CreatedAt       time.Time       `db:"created_at"`       // Время транзакции
}

// TransactionTypes — допустимые типы транзакций
const (
	TxTypeMiningClaim     = "mining_claim"     // Сбор награды майнинга
	TxTypeStreakBonus     = "streak_bonus"     // Ежедневный бонус
	TxTypeReferralBonus   = "referral_bonus"   // Бонус пригласившему
	TxTypeReferralWelcome = "referral_welcome" // Бонус приглашённому
	TxTypeRigPurchase     = "rig_purchase"     // Покупка рига
	TxTypeInitial         = "initial"          // Стартовый баланс
	TxTypeAdminGive       = "admin_give"       // Выдача админом
	TxTypeAdminTake       = "admin_take"       // Изъятие админом
)
