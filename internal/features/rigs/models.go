// Package rigs управляет майнинг-оборудованием: каталогом и покупками.
// models.go описывает структуры каталога и купленных ригов.
package rigs

import (
	"time"

	"github.com/shopspring/decimal"
)

// RigModel представляет модель рига в каталоге магазина.
// Каталог заполняется оператором через миграции, игрокам он read-only.
type RigModel struct {
	ID          int64           `db:"id"`           // ID модели
	Code        string          `db:"code"`         // Короткий код для команды покупки
	DisplayName string          `db:"display_name"` // Название для магазина
	HashRate    decimal.Decimal `db:"hash_rate"`    // Хешрейт одного рига
	Price       decimal.Decimal `db:"price"`        // Цена в коинах
}

// UserRig представляет купленный игроком риг.
// Суммарный хешрейт аккаунта — это сумма hash_rate всех его ригов;
// начислению майнинга эта цифра видна только на чтение.
type UserRig struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	RigID       int64     `db:"rig_id"`
	PurchasedAt time.Time `db:"purchased_at"`
}

// OwnedRig — риг игрока вместе с данными модели (для вывода списка).
type OwnedRig struct {
	Model     RigModel
	Count     int // Сколько таких ригов куплено
	TotalHash decimal.Decimal
}
