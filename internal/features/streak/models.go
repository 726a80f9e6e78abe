// Package streak реализует ежедневный бонус за серию входов.
package streak

import (
	"time"

	"github.com/shopspring/decimal"
)

// State — состояние серии пользователя.
type State struct {
	UserID        int64
	CurrentStreak int
	LastClaimAt   *time.Time
	NextClaimAt   *time.Time // Момент, с которого доступен следующий бонус
	TotalClaims   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ClaimResult — итог получения ежедневного бонуса.
type ClaimResult struct {
	Day    int             // День серии после этого бонуса (1-based)
	Amount decimal.Decimal // Зачислено на баланс
	Reset  bool            // Серия была сброшена из-за пропуска
}
