// Package mining — projection.go содержит чистую математику начисления.
// Всё, что здесь, не трогает БД: функции берут состояние, пул и server-время
// и возвращают результат. На этих функциях держатся все инварианты ядра,
// поэтому они вынесены отдельно и покрыты тестами.
package mining

import (
	"time"

	"github.com/shopspring/decimal"

	"gigafarm.ru/mining-bot/internal/common"
	"gigafarm.ru/mining-bot/internal/config"
)

// Params — параметры начисления из конфигурации.
type Params struct {
	BaseRate            decimal.Decimal // Коинов за единицу хешрейта в час
	MinCollectionPeriod time.Duration   // Кулдаун сбора
	MaxCollectionPeriod time.Duration   // Потолок окна начисления
	CycleDuration       time.Duration   // Длительность цикла майнинга
}

// ParamsFromConfig собирает Params из конфигурации приложения.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		BaseRate:            cfg.BaseRate(),
		MinCollectionPeriod: time.Duration(cfg.MinCollectionPeriodHours * float64(time.Hour)),
		MaxCollectionPeriod: time.Duration(cfg.MaxCollectionPeriodHours * float64(time.Hour)),
		CycleDuration:       time.Duration(cfg.CycleDurationHours * float64(time.Hour)),
	}
}

// CycleStateAt вычисляет фазу цикла на момент now.
// Фаза нигде не хранится: Expired наступает сам собой по server-времени.
func CycleStateAt(st *AccrualState, p Params, now time.Time) CycleState {
	if !st.MiningActive || st.CycleStartedAt == nil {
		return CycleStopped
	}
	if now.Sub(*st.CycleStartedAt) >= p.CycleDuration {
		return CycleExpired
	}
	return CycleRunning
}

// HourlyRate возвращает скорость начисления: hash_rate * multiplier * base_rate.
func HourlyRate(hashRate, multiplier, baseRate decimal.Decimal) decimal.Decimal {
	return hashRate.Mul(multiplier).Mul(baseRate)
}

// accrualWindow возвращает окно, за которое начисляется награда:
// от last_update_at до now, но не дальше конца цикла (после истечения
// начисление заморожено) и не больше MaxCollectionPeriod (защита от
// бесконечного «досчитывания», если клиент не появлялся сутками).
func accrualWindow(st *AccrualState, p Params, now time.Time) time.Duration {
	if !st.MiningActive || st.CycleStartedAt == nil {
		return 0
	}

	end := now
	cycleEnd := st.CycleStartedAt.Add(p.CycleDuration)
	if end.After(cycleEnd) {
		end = cycleEnd
	}
	if !end.After(st.LastUpdateAt) {
		return 0
	}

	window := end.Sub(st.LastUpdateAt)
	if window > p.MaxCollectionPeriod {
		window = p.MaxCollectionPeriod
	}
	return window
}

// hoursOf переводит Duration в decimal-часы.
func hoursOf(d time.Duration) decimal.Decimal {
	return decimal.NewFromFloat(d.Hours())
}

// Claimable — проекция «сколько можно собрать сейчас». Только чтение,
// ничего не мутирует; её дергает UI для живого счётчика.
func Claimable(st *AccrualState, pool *Pool, hashRate decimal.Decimal, p Params, now time.Time) decimal.Decimal {
	rate := HourlyRate(hashRate, pool.Multiplier, p.BaseRate)
	return st.AccumulatedBase.Add(rate.Mul(hoursOf(accrualWindow(st, p, now))))
}

// FoldAccrual сворачивает текущую проекцию в accumulated_base.
// Вызывается перед сменой пула и перед рестартом цикла: начисленное по
// старому множителю фиксируется, множители никогда не применяются задним числом.
func FoldAccrual(st *AccrualState, pool *Pool, hashRate decimal.Decimal, p Params, now time.Time) decimal.Decimal {
	return Claimable(st, pool, hashRate, p, now)
}

// Settlement — что должно произойти с состоянием при успешном сборе.
type Settlement struct {
	Gross             decimal.Decimal // До комиссии
	Fee               decimal.Decimal // Комиссия пула
	Net               decimal.Decimal // На баланс
	NewAccumulated    decimal.Decimal // Остаток при частичном сборе, иначе 0
	MiningActiveAfter bool            // Цикл продолжается (Running) или закрыт (Expired → Stopped)
}

// SettleClaim вычисляет итог сбора награды. Чистая функция: вызывающий
// выполняет её внутри транзакции БД над свежепрочитанным состоянием.
//
// requestedHours (опционально) — сколько часов начисления закрыть сейчас;
// должен лежать в [MinCollectionPeriod, MaxCollectionPeriod]. Остаток
// окна не сгорает, а остаётся в accumulated_base.
func SettleClaim(st *AccrualState, pool *Pool, hashRate decimal.Decimal, hasPremiumPass bool, p Params, now time.Time, requestedHours *float64) (*Settlement, error) {
	// Валидация запрошенного периода
	if requestedHours != nil {
		rh := *requestedHours
		if rh < p.MinCollectionPeriod.Hours() || rh > p.MaxCollectionPeriod.Hours() {
			return nil, common.ErrInvalidPeriod
		}
	}

	// Кулдаун сбора: премиум-пасс и пулы с allow_anytime_collection не ждут
	if !hasPremiumPass && !pool.AllowAnytimeCollection {
		sinceUpdate := now.Sub(st.LastUpdateAt)
		if sinceUpdate < p.MinCollectionPeriod {
			return nil, common.NewCollectionCooldownError(p.MinCollectionPeriod - sinceUpdate)
		}
	}

	rate := HourlyRate(hashRate, pool.Multiplier, p.BaseRate)
	availHours := hoursOf(accrualWindow(st, p, now))

	settleHours := availHours
	if requestedHours != nil {
		rq := decimal.NewFromFloat(*requestedHours)
		if rq.LessThan(availHours) {
			settleHours = rq
		}
	}

	gross := st.AccumulatedBase.Add(rate.Mul(settleHours))
	if !gross.IsPositive() {
		return nil, common.ErrNothingToClaim
	}

	fee := gross.Mul(pool.FeePercent).Div(decimal.NewFromInt(100))
	net := gross.Sub(fee)
	remainder := rate.Mul(availHours.Sub(settleHours))

	// Сбор из Running не сбрасывает цикл; сбор из Expired закрывает его
	miningAfter := CycleStateAt(st, p, now) == CycleRunning

	return &Settlement{
		Gross:             gross,
		Fee:               fee,
		Net:               net,
		NewAccumulated:    remainder,
		MiningActiveAfter: miningAfter,
	}, nil
}
