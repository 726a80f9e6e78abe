// Package economy — repository.go выполняет все операции с таблицами balances и transactions.
// Все денежные операции выполняются в транзакциях БД для целостности данных.
package economy

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"gigafarm.ru/mining-bot/internal/common"
)

// Repository предоставляет методы для работы с балансами и транзакциями.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий экономики.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateBalance создаёт начальный баланс для нового игрока.
func (r *Repository) CreateBalance(ctx context.Context, userID int64, starting decimal.Decimal) error {
	query := `
		INSERT INTO balances (user_id, balance, total_earned, total_spent)
		VALUES ($1, $2, $2, 0)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID, starting)
	if err != nil {
		return fmt.Errorf("ошибка создания баланса: %w", err)
	}
	return nil
}

// GetBalance возвращает текущий баланс игрока.
func (r *Repository) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	query := `SELECT balance FROM balances WHERE user_id = $1`
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx, query, userID).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return decimal.Zero, common.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return balance, nil
}

// CreditInTx начисляет коины внутри УЖЕ ОТКРЫТОЙ транзакции вызывающего.
// Так сбор майнинга, бонус стрика и обновление их состояния фиксируются
// одним atomic-коммитом: либо всё, либо ничего.
//
// Параметры:
//   - tx: открытая транзакция (коммитит вызывающий)
//   - userID: кому начислить
//   - amount: сколько (положительное число)
//   - txType: тип транзакции (mining_claim, streak_bonus, ...)
//   - description: описание для истории транзакций
//   - details: дополнительные данные для журнала (может быть nil)
func (r *Repository) CreditInTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, txType, description string, details map[string]any) error {
	// Обновляем баланс и total_earned
	tag, err := tx.Exec(ctx, `
		UPDATE balances
		SET balance = balance + $2, total_earned = total_earned + $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("ошибка начисления: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrAccountNotFound
	}

	// Записываем транзакцию в историю
	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (to_user_id, amount, transaction_type, description, details)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, amount, txType, description, details)
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}
	return nil
}

// DebitInTx списывает коины внутри открытой транзакции вызывающего.
// Строка баланса блокируется FOR UPDATE, списание в минус невозможно.
func (r *Repository) DebitInTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, txType, description string, details map[string]any) error {
	var currentBalance decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT balance FROM balances WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&currentBalance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return common.ErrAccountNotFound
		}
		return fmt.Errorf("ошибка получения баланса: %w", err)
	}

	if currentBalance.LessThan(amount) {
		return common.ErrInsufficientBalance
	}

	_, err = tx.Exec(ctx, `
		UPDATE balances
		SET balance = balance - $2, total_spent = total_spent + $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("ошибка списания: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (from_user_id, amount, transaction_type, description, details)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, amount, txType, description, details)
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}
	return nil
}

// AddBalance добавляет коины на счёт игрока в собственной транзакции.
// Используется для одиночных начислений (админ, стартовый баланс).
func (r *Repository) AddBalance(ctx context.Context, userID int64, amount decimal.Decimal, txType, description string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.CreditInTx(ctx, tx, userID, amount, txType, description, nil); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeductBalance списывает коины со счёта игрока в собственной транзакции.
func (r *Repository) DeductBalance(ctx context.Context, userID int64, amount decimal.Decimal, txType, description string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.DebitInTx(ctx, tx, userID, amount, txType, description, nil); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetTransactions возвращает последние N транзакций игрока.
// Включает как входящие, так и исходящие операции.
func (r *Repository) GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	query := `
		SELECT id, from_user_id, to_user_id, amount, transaction_type, description, details, created_at
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		var t Transaction
		err := rows.Scan(
			&t.ID, &t.FromUserID, &t.ToUserID,
			&t.Amount, &t.TransactionType, &t.Description, &t.Details, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		transactions = append(transactions, &t)
	}
	return transactions, nil
}

// GetTotalStats возвращает общую статистику баланса игрока.
func (r *Repository) GetTotalStats(ctx context.Context, userID int64) (*Balance, error) {
	query := `
		SELECT id, user_id, balance, total_earned, total_spent, created_at, updated_at
		FROM balances
		WHERE user_id = $1
	`
	var b Balance
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&b.ID, &b.UserID, &b.Balance, &b.TotalEarned, &b.TotalSpent,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("ошибка получения статистики: %w", err)
	}
	return &b, nil
}

// GetDailyTotals возвращает суммы начислений по типам за последние сутки.
// Используется ночным джобом для снимка статистики.
func (r *Repository) GetDailyTotals(ctx context.Context) (map[string]decimal.Decimal, error) {
	query := `
		SELECT transaction_type, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE to_user_id IS NOT NULL AND created_at >= NOW() - INTERVAL '24 hours'
		GROUP BY transaction_type
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения статистики за сутки: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var txType string
		var sum decimal.Decimal
		if err := rows.Scan(&txType, &sum); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		totals[txType] = sum
	}
	return totals, nil
}
