// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование сумм и длительностей.
package common

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// PluralizeCoins возвращает правильную форму слова «коин» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "коин" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "коина" (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → "коинов" (0, 5-20, 25-30, 100, ...)
func PluralizeCoins(n int64) string {
	absN := int64(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "коин"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "коина"
	}
	return "коинов"
}

// FormatAmount форматирует сумму в читабельную строку.
// Дробная часть обрезается до двух знаков, хвостовые нули убираются.
// Дробные количества всегда в форме "коина" (12.5 коина, 0.33 коина).
// Пример: FormatAmount(decimal 150) → "150 коинов", 12.50 → "12.5 коина"
func FormatAmount(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	if rounded.IsInteger() {
		return fmt.Sprintf("%s %s", rounded.String(), PluralizeCoins(rounded.IntPart()))
	}
	return rounded.String() + " коина"
}

// PluralizeDays возвращает правильную форму слова «день» для числа n.
func PluralizeDays(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "день"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "дня"
	}
	return "дней"
}

// PluralizeRigs возвращает правильную форму слова «риг».
func PluralizeRigs(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "риг"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "рига"
	}
	return "ригов"
}

// FormatDuration форматирует длительность по-русски: "2 ч 15 мин".
// Меньше минуты округляется вверх до "1 мин" — для сообщений о кулдаунах.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0 мин"
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 && m == 0 {
		return "1 мин"
	}
	if h == 0 {
		return fmt.Sprintf("%d мин", m)
	}
	if m == 0 {
		return fmt.Sprintf("%d ч", h)
	}
	return fmt.Sprintf("%d ч %d мин", h, m)
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" (день.месяц.год часы:минуты).
// Используется для отображения дат транзакций.
func FormatDateTime(t time.Time) string {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return t.In(loc).Format("02.01.2006 15:04")
}
