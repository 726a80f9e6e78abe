// Package admin — service.go содержит аутентификацию по Argon2id,
// управление сессиями и админ-операции над экономикой.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"gigafarm.ru/mining-bot/internal/common"
	"gigafarm.ru/mining-bot/internal/config"
	"gigafarm.ru/mining-bot/internal/features/accounts"
	"gigafarm.ru/mining-bot/internal/features/economy"
)

// Service управляет админ-панелью.
type Service struct {
	repo     *Repository
	economy  *economy.Service
	accounts *accounts.Service
	cfg      *config.Config
}

// NewService создаёт сервис админ-панели.
func NewService(repo *Repository, economyService *economy.Service, accountsService *accounts.Service, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		economy:  economyService,
		accounts: accountsService,
		cfg:      cfg,
	}
}

// IsAdmin проверяет, входит ли пользователь в список администраторов.
func (s *Service) IsAdmin(userID int64) bool {
	for _, id := range s.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// VerifyPassword проверяет пароль администратора с использованием Argon2id.
// Включает защиту от brute-force: 3 неудачные попытки = блокировка на 1 час.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) error {
	attempts, err := s.repo.GetRecentAttempts(ctx, userID, 1*time.Hour)
	if err != nil {
		return err
	}
	if attempts >= 3 {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.cfg.AdminPasswordHash)

	s.repo.LogAttempt(ctx, userID, match)

	if !match {
		return common.ErrWrongPassword
	}

	// Сессия живёт 24 часа
	token := generateSecureToken()
	session := &Session{
		UserID:       userID,
		SessionToken: token,
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}

	return s.repo.CreateSession(ctx, session)
}

// HasActiveSession проверяет, есть ли у пользователя активная сессия.
func (s *Service) HasActiveSession(ctx context.Context, userID int64) bool {
	session, err := s.repo.GetActiveSession(ctx, userID)
	return err == nil && session != nil
}

// Logout деактивирует сессию администратора.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.repo.DeactivateSession(ctx, userID)
}

// GiveCoins начисляет коины пользователю от имени админа.
func (s *Service) GiveCoins(ctx context.Context, adminID, targetID int64, amount decimal.Decimal) error {
	return s.economy.AddBalance(ctx, targetID, amount, economy.TxTypeAdminGive,
		fmt.Sprintf("Начисление администратором %d", adminID))
}

// TakeCoins списывает коины у пользователя от имени админа.
func (s *Service) TakeCoins(ctx context.Context, adminID, targetID int64, amount decimal.Decimal) error {
	return s.economy.DeductBalance(ctx, targetID, amount, economy.TxTypeAdminTake,
		fmt.Sprintf("Списание администратором %d", adminID))
}

// SetPremiumPass включает или выключает премиум-пропуск пользователю.
func (s *Service) SetPremiumPass(ctx context.Context, targetID int64, enabled bool) error {
	return s.accounts.SetPremiumPass(ctx, targetID, enabled)
}

// CountAccounts — число зарегистрированных игроков.
func (s *Service) CountAccounts(ctx context.Context) (int64, error) {
	return s.accounts.CountAccounts(ctx)
}

// --- Криптографические утилиты ---

// verifyArgon2id проверяет пароль по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравнение в постоянном времени
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// generateSecureToken генерирует криптографически безопасный токен сессии.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}
