// Package accounts управляет аккаунтами игроков: регистрацией, премиум-пассом,
// реферальными кодами. models.go описывает структуры таблицы accounts.
package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account представляет игрока в базе данных.
// Каждый пользователь, написавший боту, автоматически создаётся
// в этой таблице вместе с балансом, состоянием майнинга и стриком.
type Account struct {
	ID             int64     `db:"id"`               // Автоинкрементный ID записи в БД
	UserID         int64     `db:"user_id"`          // Telegram user ID (уникальный)
	Username       string    `db:"username"`         // @username (может быть пустым)
	FirstName      string    `db:"first_name"`       // Имя пользователя
	LastName       string    `db:"last_name"`        // Фамилия (может быть пустой)
	ReferralCode   string    `db:"referral_code"`    // UUID-код для приглашений
	HasPremiumPass bool      `db:"has_premium_pass"` // Премиум-пасс (внешняя подписка)
	IsBanned       bool      `db:"is_banned"`        // Флаг бана
	CreatedAt      time.Time `db:"created_at"`       // Когда запись создана в БД
	UpdatedAt      time.Time `db:"updated_at"`       // Последнее обновление записи
}

// UpdateInfo содержит данные для обновления информации о пользователе.
// Используется, когда игрок возвращается и его имя/username могли измениться.
type UpdateInfo struct {
	Username  string // Новый @username
	FirstName string // Новое имя
	LastName  string // Новая фамилия
}

// Snapshot — срез показателей аккаунта для проверки требований пула.
// Собирается одним запросом на момент операции, чтобы eligibility
// проверялась по актуальным данным, а не по кэшу.
type Snapshot struct {
	UserID         int64
	HashRate       decimal.Decimal // Суммарный хешрейт купленных ригов
	RigCount       int             // Сколько ригов куплено
	ReferralCount  int             // Сколько игроков приглашено
	HasPremiumPass bool
}

// DisplayName возвращает отображаемое имя игрока.
// Если есть @username — возвращает его, иначе — имя + фамилию.
func (a *Account) DisplayName() string {
	if a.Username != "" {
		return "@" + a.Username
	}
	name := a.FirstName
	if a.LastName != "" {
		name += " " + a.LastName
	}
	return name
}
