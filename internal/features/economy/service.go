// Package economy — service.go содержит бизнес-логику экономики.
// Валидация сумм, начисления, получение баланса и истории транзакций.
package economy

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/common"
	"gigafarm.ru/mining-bot/internal/config"
)

// Service управляет экономикой бота (коины).
type Service struct {
	repo *Repository    // Репозиторий для работы с БД
	cfg  *config.Config // Конфигурация
}

// NewService создаёт новый сервис экономики.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// GetBalance возвращает текущий баланс игрока.
func (s *Service) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.repo.GetBalance(ctx, userID)
}

// GetStats возвращает баланс вместе с total_earned/total_spent.
func (s *Service) GetStats(ctx context.Context, userID int64) (*Balance, error) {
	return s.repo.GetTotalStats(ctx, userID)
}

// AddBalance начисляет коины игроку.
// Используется админкой и стартовым балансом; доменные начисления
// (майнинг, стрик, рефералы) идут через CreditInTx своих репозиториев.
func (s *Service) AddBalance(ctx context.Context, userID int64, amount decimal.Decimal, txType, description string) error {
	if !amount.IsPositive() {
		return common.ErrInvalidAmount
	}
	return s.repo.AddBalance(ctx, userID, amount, txType, description)
}

// DeductBalance списывает коины (покупки, изъятие админом).
func (s *Service) DeductBalance(ctx context.Context, userID int64, amount decimal.Decimal, txType, description string) error {
	if !amount.IsPositive() {
		return common.ErrInvalidAmount
	}
	return s.repo.DeductBalance(ctx, userID, amount, txType, description)
}

// CreateBalance создаёт начальный баланс для нового игрока.
func (s *Service) CreateBalance(ctx context.Context, userID int64) error {
	starting := decimal.NewFromInt(s.cfg.EconomyStartingBalance)
	if err := s.repo.CreateBalance(ctx, userID, starting); err != nil {
		return err
	}
	if starting.IsPositive() {
		log.WithFields(log.Fields{
			"user_id":  userID,
			"starting": starting.String(),
		}).Debug("Стартовый баланс выдан")
	}
	return nil
}

// GetTransactionHistory возвращает форматированную историю транзакций.
// Последние 10 транзакций. Если больше 5 — оборачивает в спойлер.
func (s *Service) GetTransactionHistory(ctx context.Context, userID int64) (string, error) {
	transactions, err := s.repo.GetTransactions(ctx, userID, 10)
	if err != nil {
		return "", err
	}

	if len(transactions) == 0 {
		return "📋 У вас пока нет транзакций", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Последние %d транзакций:\n\n", len(transactions)))

	// Формируем строки транзакций
	var lines []string
	for i, tx := range transactions {
		// Определяем знак: + если получили, - если потратили
		sign := "+"
		if tx.FromUserID != nil && *tx.FromUserID == userID {
			sign = "-"
		}

		line := fmt.Sprintf("%d. %s | %s%s | %s",
			i+1,
			common.FormatDateTime(tx.CreatedAt),
			sign,
			common.FormatAmount(tx.Amount),
			tx.Description,
		)
		lines = append(lines, line)
	}

	// Если больше 5 — оборачиваем в спойлер (||текст||)
	if len(lines) > 5 {
		// Первые 5 показываем открыто
		for _, line := range lines[:5] {
			sb.WriteString(line + "\n")
		}
		// Остальные в спойлере
		sb.WriteString("\n||")
		for _, line := range lines[5:] {
			sb.WriteString(line + "\n")
		}
		sb.WriteString("||")
	} else {
		for _, line := range lines {
			sb.WriteString(line + "\n")
		}
	}

	return sb.String(), nil
}

// GetDailyTotals возвращает суммы начислений по типам за сутки.
func (s *Service) GetDailyTotals(ctx context.Context) (map[string]decimal.Decimal, error) {
	return s.repo.GetDailyTotals(ctx)
}
