package mining

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigafarm.ru/mining-bot/internal/common"
)

func testParams() Params {
	return Params{
		BaseRate:            decimal.NewFromFloat(0.5),
		MinCollectionPeriod: 3 * time.Hour,
		MaxCollectionPeriod: 24 * time.Hour,
		CycleDuration:       24 * time.Hour,
	}
}

func poolWith(mult, fee float64) *Pool {
	return &Pool{
		Name:        "test",
		DisplayName: "Тестовый",
		Multiplier:  decimal.NewFromFloat(mult),
		FeePercent:  decimal.NewFromFloat(fee),
	}
}

func runningState(start time.Time) *AccrualState {
	return &AccrualState{
		UserID:          1,
		ActivePool:      "test",
		AccumulatedBase: decimal.Zero,
		LastUpdateAt:    start,
		MiningActive:    true,
		CycleStartedAt:  &start,
	}
}

func TestCycleStateAt(t *testing.T) {
	p := testParams()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	stopped := &AccrualState{MiningActive: false}
	assert.Equal(t, CycleStopped, CycleStateAt(stopped, p, start))

	neverStarted := &AccrualState{MiningActive: true, CycleStartedAt: nil}
	assert.Equal(t, CycleStopped, CycleStateAt(neverStarted, p, start))

	st := runningState(start)
	assert.Equal(t, CycleRunning, CycleStateAt(st, p, start.Add(time.Hour)))
	assert.Equal(t, CycleRunning, CycleStateAt(st, p, start.Add(24*time.Hour-time.Second)))
	assert.Equal(t, CycleExpired, CycleStateAt(st, p, start.Add(24*time.Hour)))
	assert.Equal(t, CycleExpired, CycleStateAt(st, p, start.Add(100*time.Hour)))
}

func TestClaimableAccruesLinearly(t *testing.T) {
	p := testParams()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	st := runningState(start)
	pool := poolWith(1.5, 0)
	hashRate := decimal.NewFromInt(10)

	// 10 * 1.5 * 0.5 = 7.5 коинов в час
	got := Claimable(st, pool, hashRate, p, start.Add(8*time.Hour))
	assert.True(t, got.Equal(decimal.NewFromInt(60)), "got %s", got)
}

func TestClaimableFreezesAfterCycleEnd(t *testing.T) {
	p := testParams()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	st := runningState(start)
	pool := poolWith(1.5, 0)
	hashRate := decimal.NewFromInt(10)

	// Через 48 часов начислено только за 24 часа цикла
	at24 := Claimable(st, pool, hashRate, p, start.Add(24*time.Hour))
	at48 := Claimable(st, pool, hashRate, p, start.Add(48*time.Hour))
	assert.True(t, at24.Equal(decimal.NewFromInt(180)), "got %s", at24)
	assert.True(t, at48.Equal(at24))
}

func TestClaimableZeroWhenStopped(t *testing.T) {
	p := testParams()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	st := &AccrualState{
		AccumulatedBase: decimal.NewFromInt(42),
		LastUpdateAt:    now.Add(-10 * time.Hour),
		MiningActive:    false,
	}

	// Остановленный майнинг не начисляет, но накопленное не пропадает
	got := Claimable(st, poolWith(2, 0), decimal.NewFromInt(10), p, now)
	assert.True(t, got.Equal(decimal.NewFromInt(42)))
}

func TestSettleClaimFull(t *testing.T) {
	p := testParams()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	st := runningState(start)
	pool := poolWith(1.0, 5)
	hashRate := decimal.NewFromInt(10)

	s, err := SettleClaim(st, pool, hashRate, false, p, start.Add(8*time.Hour), nil)
	require.NoError(t, err)

	// rate = 5/час, 8 часов → 40; комиссия 5% → 2
	assert.True(t, s.Gross.Equal(decimal.NewFromInt(40)), "gross %s", s.Gross)
	assert.True(t, s.Fee.Equal(decimal.NewFromInt(2)), "fee %s", s.Fee)
	assert.True(t, s.Net.Equal(decimal.NewFromInt(38)), "net %s", s.Net)
	assert.True(t, s.NewAccumulated.IsZero())
	assert.True(t, s.MiningActiveAfter, "сбор из Running не закрывает цикл")
}

func TestSettleClaimRequestedPeriod(t *testing.T) {
	p := testParams()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	st := runningState(start)
	pool := poolWith(1.0, 0)
	hashRate := decimal.NewFromInt(10)

	rq := 8.0
	s, err := SettleClaim(st, pool, hashRate, false, p, start.Add(12*time.Hour), &rq)
	require.NoError(t, err)

	// Закрываем 8 из 12 часов, остаток копится дальше
	assert.True(t, s.Gross.Equal(decimal.NewFromInt(40)), "gross %s", s.Gross)
	assert.True(t, s.NewAccumulated.Equal(decimal.NewFromInt(20)), "remainder %s", s.NewAccumulated)
}

func TestSettleClaimRequestedPeriodBounds(t *testing.T) {
	p := testParams()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	st := runningState(start)
	pool := poolWith(1.0, 0)
	hashRate := decimal.NewFromInt(10)
	now := start.Add(12 * time.Hour)

	tooShort := 2.0
	_, err := SettleClaim(st, pool, hashRate, false, p, now, &tooShort)
	assert.ErrorIs(t, err, common.ErrInvalidPeriod)

	tooLong := 30.0
	_, err = SettleClaim(st, pool, hashRate, false, p, now, &tooLong)
	assert.ErrorIs(t, err, common.ErrInvalidPeriod)

	// Запрошено больше, чем доступно — закрывается всё доступное
	moreThanAvail := 20.0
	s, err := SettleClaim(st, pool, hashRate, false, p, now, &moreThanAvail)
	require.NoError(t, err)
	assert.True(t, s.Gross.Equal(decimal.NewFromInt(60)), "gross %s", s.Gross)
	assert.True(t, s.NewAccumulated.IsZero())
}

func TestSettleClaimCooldown(t *testing.T) {
	p := testParams()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	st := runningState(start)
	pool := poolWith(1.0, 0)
	hashRate := decimal.NewFromInt(10)
	now := start.Add(time.Hour)

	_, err := SettleClaim(st, pool, hashRate, false, p, now, nil)
	var cooldown *common.CooldownError
	require.True(t, errors.As(err, &cooldown))
	assert.Equal(t, 2*time.Hour, cooldown.RetryAfter)

	// Премиум-пасс снимает кулдаун
	s, err := SettleClaim(st, pool, hashRate, true, p, now, nil)
	require.NoError(t, err)
	assert.True(t, s.Gross.Equal(decimal.NewFromInt(5)), "gross %s", s.Gross)

	// Пул со свободным сбором — тоже
	anytime := poolWith(1.0, 0)
	anytime.AllowAnytimeCollection = true
	_, err = SettleClaim(st, anytime, hashRate, false, p, now, nil)
	require.NoError(t, err)
}

func TestSettleClaimNothingToClaim(t *testing.T) {
	p := testParams()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	st := runningState(start)

	// Ноль хешрейта — нечего собирать
	_, err := SettleClaim(st, poolWith(1.0, 0), decimal.Zero, false, p, start.Add(8*time.Hour), nil)
	assert.ErrorIs(t, err, common.ErrNothingToClaim)
}

func TestSettleClaimFromExpiredStopsCycle(t *testing.T) {
	p := testParams()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	st := runningState(start)
	pool := poolWith(1.0, 0)
	hashRate := decimal.NewFromInt(10)

	s, err := SettleClaim(st, pool, hashRate, false, p, start.Add(30*time.Hour), nil)
	require.NoError(t, err)

	// Начислено ровно за 24 часа цикла
	assert.True(t, s.Gross.Equal(decimal.NewFromInt(120)), "gross %s", s.Gross)
	assert.False(t, s.MiningActiveAfter, "сбор из Expired закрывает цикл")
}

func TestFoldAccrualBeforePoolSwitch(t *testing.T) {
	p := testParams()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	st := runningState(start)
	hashRate := decimal.NewFromInt(10)
	now := start.Add(6 * time.Hour)

	// Начисление по старому множителю фиксируется до переключения
	folded := FoldAccrual(st, poolWith(2.0, 0), hashRate, p, now)
	assert.True(t, folded.Equal(decimal.NewFromInt(60)), "folded %s", folded)

	// После фиксации новый множитель применяется только вперёд
	st.AccumulatedBase = folded
	st.LastUpdateAt = now
	later := Claimable(st, poolWith(1.0, 0), hashRate, p, now.Add(2*time.Hour))
	assert.True(t, later.Equal(decimal.NewFromInt(70)), "later %s", later)
}
