// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/bot"
	"gigafarm.ru/mining-bot/internal/bot/filters"
	"gigafarm.ru/mining-bot/internal/config"
	"gigafarm.ru/mining-bot/internal/db/postgres"
	"gigafarm.ru/mining-bot/internal/features/accounts"
	"gigafarm.ru/mining-bot/internal/features/admin"
	"gigafarm.ru/mining-bot/internal/features/economy"
	"gigafarm.ru/mining-bot/internal/features/mining"
	"gigafarm.ru/mining-bot/internal/features/referral"
	"gigafarm.ru/mining-bot/internal/features/rigs"
	"gigafarm.ru/mining-bot/internal/features/streak"
	"gigafarm.ru/mining-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Репозитории ===
	accountsRepo := accounts.NewRepository(pool)
	economyRepo := economy.NewRepository(pool)
	rigsRepo := rigs.NewRepository(pool, economyRepo)
	miningRepo := mining.NewRepository(pool, economyRepo, accountsRepo)
	streakRepo := streak.NewRepository(pool, economyRepo)
	referralRepo := referral.NewRepository(pool, economyRepo)
	adminRepo := admin.NewRepository(pool)

	// === 4. Сервисы ===
	accountsService := accounts.NewService(accountsRepo)
	economyService := economy.NewService(economyRepo, cfg)
	rigsService := rigs.NewService(rigsRepo)
	poolCatalog := mining.NewCatalog(pool)
	miningService := mining.NewService(miningRepo, poolCatalog, accountsService, cfg)
	streakService := streak.NewService(streakRepo, streak.Params{
		Cooldown: cfg.StreakCooldown(),
		Grace:    cfg.StreakGrace(),
	})
	referralService := referral.NewService(referralRepo, accountsService,
		cfg.ReferrerBonus(), cfg.ReferredBonus())
	adminService := admin.NewService(adminRepo, economyService, accountsService, cfg)

	// === 5. Обработчики ===
	accountsHandler := accounts.NewHandler(accountsService, botAPI)
	economyHandler := economy.NewHandler(economyService, botAPI)
	miningHandler := mining.NewHandler(miningService, botAPI)
	streakHandler := streak.NewHandler(streakService, botAPI)
	referralHandler := referral.NewHandler(referralService, accountsService, botAPI, botAPI.Self.UserName)
	rigsHandler := rigs.NewHandler(rigsService, botAPI)
	adminHandler := admin.NewHandler(adminService, botAPI)

	// === 6. Фильтры ===
	accessFilter := filters.NewAccessFilter(accountsService, botAPI)

	// === 7. Собираем бота ===
	b := bot.New(bot.Deps{
		API: botAPI,
		Cfg: cfg,

		AccountsService: accountsService,
		EconomyService:  economyService,
		MiningService:   miningService,
		StreakService:   streakService,

		AccountsHandler: accountsHandler,
		EconomyHandler:  economyHandler,
		MiningHandler:   miningHandler,
		StreakHandler:   streakHandler,
		ReferralHandler: referralHandler,
		RigsHandler:     rigsHandler,
		AdminHandler:    adminHandler,

		AccessFilter: accessFilter,
	})

	// === 8. Планировщик задач ===
	scheduler := jobs.NewScheduler(miningService, economyService, b.SendMessageToUser)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.InitMigrations(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Accounts},
		{2, migration002Economy},
		{3, migration003Rigs},
		{4, migration004Mining},
		{5, migration005Streaks},
		{6, migration006Referrals},
		{7, migration007Admin},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Accounts = `
CREATE TABLE IF NOT EXISTS accounts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255),
    referral_code VARCHAR(64) UNIQUE NOT NULL,
    has_premium_pass BOOLEAN DEFAULT FALSE,
    is_banned BOOLEAN DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id);
CREATE INDEX IF NOT EXISTS idx_accounts_referral_code ON accounts(referral_code);
`

var migration002Economy = `
CREATE TABLE IF NOT EXISTS balances (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL REFERENCES accounts(user_id),
    balance NUMERIC(20, 8) NOT NULL DEFAULT 0,
    total_earned NUMERIC(20, 8) NOT NULL DEFAULT 0,
    total_spent NUMERIC(20, 8) NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    from_user_id BIGINT REFERENCES accounts(user_id),
    to_user_id BIGINT REFERENCES accounts(user_id),
    amount NUMERIC(20, 8) NOT NULL,
    transaction_type VARCHAR(50) NOT NULL,
    description TEXT,
    details JSONB,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_from_user ON transactions(from_user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_to_user ON transactions(to_user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at DESC);
`

var migration003Rigs = `
CREATE TABLE IF NOT EXISTS rig_catalog (
    id BIGSERIAL PRIMARY KEY,
    code VARCHAR(50) UNIQUE NOT NULL,
    display_name VARCHAR(255) NOT NULL,
    hash_rate NUMERIC(20, 8) NOT NULL,
    price NUMERIC(20, 8) NOT NULL
);
CREATE TABLE IF NOT EXISTS user_rigs (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES accounts(user_id),
    rig_id BIGINT NOT NULL REFERENCES rig_catalog(id),
    purchased_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_user_rigs_user_id ON user_rigs(user_id);

INSERT INTO rig_catalog (code, display_name, hash_rate, price) VALUES
    ('usb',  'USB-майнер',      1,   100),
    ('gpu',  'Видеокарта',      5,   450),
    ('asic', 'ASIC-майнер',     25,  2000),
    ('farm', 'Майнинг-ферма',   120, 9000)
ON CONFLICT (code) DO NOTHING;
`

var migration004Mining = `
CREATE TABLE IF NOT EXISTS pool_catalog (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(50) UNIQUE NOT NULL,
    display_name VARCHAR(255) NOT NULL,
    multiplier NUMERIC(10, 4) NOT NULL DEFAULT 1,
    fee_percent NUMERIC(5, 2) NOT NULL DEFAULT 0,
    min_rig_count INTEGER NOT NULL DEFAULT 0,
    min_referrals INTEGER NOT NULL DEFAULT 0,
    requires_premium_pass BOOLEAN NOT NULL DEFAULT FALSE,
    allow_anytime_collection BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS accrual_states (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL REFERENCES accounts(user_id),
    active_pool VARCHAR(50) NOT NULL REFERENCES pool_catalog(name),
    accumulated_base NUMERIC(20, 8) NOT NULL DEFAULT 0,
    last_update_at TIMESTAMP NOT NULL DEFAULT NOW(),
    mining_active BOOLEAN NOT NULL DEFAULT FALSE,
    cycle_started_at TIMESTAMP,
    reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_accrual_states_user_id ON accrual_states(user_id);

INSERT INTO pool_catalog (name, display_name, multiplier, fee_percent,
                          min_rig_count, min_referrals, requires_premium_pass, allow_anytime_collection) VALUES
    ('standard', 'Общий',       1.0, 0,  0,  0, FALSE, FALSE),
    ('pro',      'Про',         1.5, 5,  10, 0, FALSE, FALSE),
    ('elite',    'Элитный',     2.0, 10, 25, 5, FALSE, FALSE),
    ('premium',  'Премиальный', 2.5, 3,  0,  0, TRUE,  TRUE)
ON CONFLICT (name) DO NOTHING;
`

var migration005Streaks = `
CREATE TABLE IF NOT EXISTS streak_states (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL REFERENCES accounts(user_id),
    current_streak INTEGER NOT NULL DEFAULT 0,
    last_claim_at TIMESTAMP,
    next_claim_at TIMESTAMP,
    total_claims INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_streak_states_user_id ON streak_states(user_id);
`

var migration006Referrals = `
CREATE TABLE IF NOT EXISTS referrals (
    id BIGSERIAL PRIMARY KEY,
    referrer_id BIGINT NOT NULL REFERENCES accounts(user_id),
    referred_id BIGINT UNIQUE NOT NULL REFERENCES accounts(user_id),
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_referrals_referrer_id ON referrals(referrer_id);
`

var migration007Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT REFERENCES accounts(user_id),
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMP DEFAULT NOW(),
    expires_at TIMESTAMP,
    last_activity TIMESTAMP DEFAULT NOW(),
    is_active BOOLEAN DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    attempt_time TIMESTAMP DEFAULT NOW(),
    success BOOLEAN DEFAULT FALSE
);
`
