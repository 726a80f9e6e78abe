package referral

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigafarm.ru/mining-bot/internal/common"
	"gigafarm.ru/mining-bot/internal/features/accounts"
)

// fakeResolver отдаёт заранее заданный аккаунт или ошибку.
type fakeResolver struct {
	account *accounts.Account
	err     error
}

func (f *fakeResolver) GetByReferralCode(_ context.Context, _ string) (*accounts.Account, error) {
	return f.account, f.err
}

func TestApplyCodeSelfReferral(t *testing.T) {
	svc := &Service{
		accounts:      &fakeResolver{account: &accounts.Account{UserID: 7}},
		referrerBonus: decimal.NewFromInt(500),
		referredBonus: decimal.NewFromInt(250),
	}

	_, created, err := svc.ApplyCode(context.Background(), 7, "some-code")
	require.ErrorIs(t, err, common.ErrSelfReferral)
	assert.False(t, created)
}

func TestApplyCodeUnknownCode(t *testing.T) {
	svc := &Service{accounts: &fakeResolver{err: common.ErrReferralCodeNotFound}}

	_, _, err := svc.ApplyCode(context.Background(), 7, "no-such-code")
	assert.ErrorIs(t, err, common.ErrReferralCodeNotFound)
}

func TestApplyCodeDatabaseErrorNotMasked(t *testing.T) {
	dbErr := fmt.Errorf("ошибка поиска по коду: %w", errors.New("connection refused"))
	svc := &Service{accounts: &fakeResolver{err: dbErr}}

	_, _, err := svc.ApplyCode(context.Background(), 7, "any-code")
	require.Error(t, err)

	// Сбой БД не должен выглядеть для игрока как «такого кода нет»
	assert.NotErrorIs(t, err, common.ErrReferralCodeNotFound)
	assert.ErrorIs(t, err, dbErr)
}
