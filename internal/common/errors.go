// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ошибки экономики (коины, покупки)
var (
	// ErrInsufficientBalance — недостаточно коинов на счёте
	ErrInsufficientBalance = errors.New("недостаточно коинов на счёте")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrAccountNotFound — аккаунт не найден в базе
	ErrAccountNotFound = errors.New("аккаунт не найден")
)

// Ошибки майнинга
var (
	// ErrNothingToClaim — начислений нет, собирать нечего
	ErrNothingToClaim = errors.New("пока нечего собирать")
	// ErrMiningAlreadyRunning — цикл майнинга уже запущен
	ErrMiningAlreadyRunning = errors.New("майнинг уже запущен")
	// ErrPoolNotFound — пул с таким именем не существует
	ErrPoolNotFound = errors.New("пул не найден")
	// ErrPoolAlreadyActive — попытка переключиться в текущий пул
	ErrPoolAlreadyActive = errors.New("этот пул уже выбран")
	// ErrConcurrentClaim — конфликт одновременных операций, повторите запрос
	ErrConcurrentClaim = errors.New("операция конфликтует с другой, попробуйте ещё раз")
	// ErrInvalidPeriod — запрошенный период сбора вне допустимого диапазона
	ErrInvalidPeriod = errors.New("период сбора вне допустимого диапазона")
)

// Ошибки рефералов
var (
	// ErrSelfReferral — попытка активировать собственный реферальный код
	ErrSelfReferral = errors.New("нельзя активировать собственный код")
	// ErrReferralCodeNotFound — код не принадлежит ни одному аккаунту
	ErrReferralCodeNotFound = errors.New("реферальный код не найден")
)

// Ошибки магазина
var (
	// ErrRigNotFound — модель рига не найдена в каталоге
	ErrRigNotFound = errors.New("такой риг не продаётся")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)

// CooldownError — операция вызвана раньше времени.
// RetryAfter сообщает, сколько осталось ждать; Kind различает
// кулдаун сбора майнинга и кулдаун ежедневного бонуса.
type CooldownError struct {
	Kind       string // "collection" или "streak"
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("рано: подождите ещё %s", FormatDuration(e.RetryAfter))
}

// NewCollectionCooldownError — кулдаун сбора награды майнинга.
func NewCollectionCooldownError(retryAfter time.Duration) *CooldownError {
	return &CooldownError{Kind: "collection", RetryAfter: retryAfter}
}

// NewStreakCooldownError — кулдаун ежедневного бонуса.
func NewStreakCooldownError(retryAfter time.Duration) *CooldownError {
	return &CooldownError{Kind: "streak", RetryAfter: retryAfter}
}

// PoolIneligibleError — аккаунт не проходит требования пула.
// Unmet перечисляет невыполненные условия в человекочитаемом виде.
type PoolIneligibleError struct {
	PoolName string
	Unmet    []string
}

func (e *PoolIneligibleError) Error() string {
	return fmt.Sprintf("пул %q недоступен: %s", e.PoolName, strings.Join(e.Unmet, "; "))
}
