// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	AdminIDsRaw      string  `envconfig:"ADMIN_IDS" default:""`
	AdminIDs         []int64 `envconfig:"-"` // заполним вручную
	TelegramBotToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"mining_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Mining ---
	// Коинов за единицу хешрейта в час (до множителя пула)
	BaseRewardRate           float64 `envconfig:"BASE_REWARD_RATE" default:"0.5"`
	MinCollectionPeriodHours float64 `envconfig:"MIN_COLLECTION_PERIOD_HOURS" default:"3"`
	CollectionIntervalHours  float64 `envconfig:"COLLECTION_INTERVAL_HOURS" default:"8"`
	MaxCollectionPeriodHours float64 `envconfig:"MAX_COLLECTION_PERIOD_HOURS" default:"24"`
	CycleDurationHours       float64 `envconfig:"CYCLE_DURATION_HOURS" default:"24"`

	// --- Streak (ежедневный бонус) ---
	StreakGraceHours    float64 `envconfig:"STREAK_GRACE_HOURS" default:"24"`
	StreakCooldownHours float64 `envconfig:"STREAK_COOLDOWN_HOURS" default:"24"`

	// --- Referral ---
	ReferrerBonusAmount int64 `envconfig:"REFERRER_BONUS_AMOUNT" default:"500"`
	ReferredBonusAmount int64 `envconfig:"REFERRED_BONUS_AMOUNT" default:"250"`

	// --- Economy ---
	EconomyStartingBalance int64  `envconfig:"ECONOMY_STARTING_BALANCE" default:"0"`
	EconomyCurrencyName    string `envconfig:"ECONOMY_CURRENCY_NAME" default:"коины"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureStreaksEnabled   bool `envconfig:"FEATURE_STREAKS_ENABLED" default:"true"`
	FeatureReferralsEnabled bool `envconfig:"FEATURE_REFERRALS_ENABLED" default:"true"`
	FeatureShopEnabled      bool `envconfig:"FEATURE_SHOP_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// BaseRate возвращает базовую ставку начисления как decimal.
func (c *Config) BaseRate() decimal.Decimal {
	return decimal.NewFromFloat(c.BaseRewardRate)
}

// ReferrerBonus возвращает бонус пригласившего как decimal.
func (c *Config) ReferrerBonus() decimal.Decimal {
	return decimal.NewFromInt(c.ReferrerBonusAmount)
}

// ReferredBonus возвращает бонус приглашённого как decimal.
func (c *Config) ReferredBonus() decimal.Decimal {
	return decimal.NewFromInt(c.ReferredBonusAmount)
}

// StreakCooldown возвращает кулдаун ежедневного бонуса как Duration.
func (c *Config) StreakCooldown() time.Duration {
	return time.Duration(c.StreakCooldownHours * float64(time.Hour))
}

// StreakGrace возвращает грейс-окно стрика как Duration.
func (c *Config) StreakGrace() time.Duration {
	return time.Duration(c.StreakGraceHours * float64(time.Hour))
}

func (c *Config) Validate() error {
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.BaseRewardRate < 0 {
		return fmt.Errorf("BASE_REWARD_RATE не может быть отрицательным")
	}
	if c.MinCollectionPeriodHours < 0 || c.MaxCollectionPeriodHours <= 0 {
		return fmt.Errorf("некорректные периоды сбора")
	}
	if c.MinCollectionPeriodHours > c.MaxCollectionPeriodHours {
		return fmt.Errorf("MIN_COLLECTION_PERIOD_HOURS больше MAX_COLLECTION_PERIOD_HOURS")
	}
	if c.CollectionIntervalHours < c.MinCollectionPeriodHours ||
		c.CollectionIntervalHours > c.MaxCollectionPeriodHours {
		return fmt.Errorf("COLLECTION_INTERVAL_HOURS вне диапазона [min, max]")
	}
	if c.CycleDurationHours <= 0 {
		return fmt.Errorf("CYCLE_DURATION_HOURS должен быть > 0")
	}
	if c.StreakGraceHours < 0 || c.StreakCooldownHours <= 0 {
		return fmt.Errorf("некорректные параметры стрика")
	}
	if c.ReferrerBonusAmount < 0 || c.ReferredBonusAmount < 0 {
		return fmt.Errorf("реферальные бонусы не могут быть отрицательными")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
