package mining

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"gigafarm.ru/mining-bot/internal/features/accounts"
)

func snap(rigs, refs int, premium bool) *accounts.Snapshot {
	return &accounts.Snapshot{
		UserID:         1,
		HashRate:       decimal.NewFromInt(int64(rigs)),
		RigCount:       rigs,
		ReferralCount:  refs,
		HasPremiumPass: premium,
	}
}

func TestCheckEligibilityFloors(t *testing.T) {
	pool := &Pool{
		Name:         "elite",
		MinRigCount:  25,
		MinReferrals: 5,
	}

	assert.Empty(t, CheckEligibility(pool, snap(25, 5, false)))

	unmet := CheckEligibility(pool, snap(10, 0, false))
	assert.Len(t, unmet, 2)

	unmet = CheckEligibility(pool, snap(25, 3, false))
	assert.Len(t, unmet, 1)
}

func TestCheckEligibilityOpenPool(t *testing.T) {
	pool := &Pool{Name: "standard"}

	// Пул без порогов доступен даже пустому аккаунту
	assert.Empty(t, CheckEligibility(pool, snap(0, 0, false)))
}

func TestCheckEligibilityPremiumPass(t *testing.T) {
	pool := &Pool{
		Name:                "premium",
		MinRigCount:         100,
		RequiresPremiumPass: true,
	}

	// Пасс закрывает все пороги премиум-пула
	assert.Empty(t, CheckEligibility(pool, snap(0, 0, true)))

	unmet := CheckEligibility(pool, snap(100, 0, false))
	assert.Contains(t, unmet, "нужен премиум-пасс")
}
