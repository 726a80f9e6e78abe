package common

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPluralizeCoins(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{1, "коин"},
		{2, "коина"},
		{5, "коинов"},
		{11, "коинов"},
		{12, "коинов"},
		{21, "коин"},
		{23, "коина"},
		{100, "коинов"},
		{101, "коин"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PluralizeCoins(c.n), "n=%d", c.n)
	}
}

func TestPluralizeDays(t *testing.T) {
	assert.Equal(t, "день", PluralizeDays(1))
	assert.Equal(t, "дня", PluralizeDays(3))
	assert.Equal(t, "дней", PluralizeDays(7))
	assert.Equal(t, "дней", PluralizeDays(14))
	assert.Equal(t, "день", PluralizeDays(21))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "150 коинов", FormatAmount(decimal.NewFromInt(150)))
	assert.Equal(t, "12.5 коина", FormatAmount(decimal.NewFromFloat(12.50)))
	assert.Equal(t, "1 коин", FormatAmount(decimal.NewFromInt(1)))

	// Дробные суммы — родительный падеж единственного числа,
	// независимо от целой части
	assert.Equal(t, "2.25 коина", FormatAmount(decimal.NewFromFloat(2.25)))
	assert.Equal(t, "21.5 коина", FormatAmount(decimal.NewFromFloat(21.5)))

	// Округление до двух знаков
	assert.Equal(t, "0.33 коина", FormatAmount(decimal.NewFromFloat(0.333333)))

	// Сумма, которая после округления становится целой
	assert.Equal(t, "2 коина", FormatAmount(decimal.NewFromFloat(1.999)))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0 мин", FormatDuration(0))
	assert.Equal(t, "1 мин", FormatDuration(10*time.Second))
	assert.Equal(t, "45 мин", FormatDuration(45*time.Minute))
	assert.Equal(t, "2 ч", FormatDuration(2*time.Hour))
	assert.Equal(t, "2 ч 15 мин", FormatDuration(2*time.Hour+15*time.Minute))
}
