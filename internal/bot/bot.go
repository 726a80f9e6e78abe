// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go создаёт все сервисы, подключает обработчики и запускает polling.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"gigafarm.ru/mining-bot/internal/bot/filters"
	"gigafarm.ru/mining-bot/internal/bot/middleware"
	"gigafarm.ru/mining-bot/internal/common"
	"gigafarm.ru/mining-bot/internal/config"
	"gigafarm.ru/mining-bot/internal/features/accounts"
	"gigafarm.ru/mining-bot/internal/features/admin"
	"gigafarm.ru/mining-bot/internal/features/economy"
	"gigafarm.ru/mining-bot/internal/features/mining"
	"gigafarm.ru/mining-bot/internal/features/referral"
	"gigafarm.ru/mining-bot/internal/features/rigs"
	"gigafarm.ru/mining-bot/internal/features/streak"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	accessFilter *filters.AccessFilter
	rateLimiter  *middleware.RateLimiter

	accountsHandler *accounts.Handler
	economyHandler  *economy.Handler
	miningHandler   *mining.Handler
	streakHandler   *streak.Handler
	referralHandler *referral.Handler
	rigsHandler     *rigs.Handler
	adminHandler    *admin.Handler

	accountsService *accounts.Service
	economyService  *economy.Service
	miningService   *mining.Service
	streakService   *streak.Service

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// Deps — зависимости бота. Их много, поэтому структура вместо
// позиционных аргументов.
type Deps struct {
	API *tgbotapi.BotAPI
	Cfg *config.Config

	AccountsService *accounts.Service
	EconomyService  *economy.Service
	MiningService   *mining.Service
	StreakService   *streak.Service

	AccountsHandler *accounts.Handler
	EconomyHandler  *economy.Handler
	MiningHandler   *mining.Handler
	StreakHandler   *streak.Handler
	ReferralHandler *referral.Handler
	RigsHandler     *rigs.Handler
	AdminHandler    *admin.Handler

	AccessFilter *filters.AccessFilter
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(d Deps) *Bot {
	maxInFlight := d.Cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:             d.API,
		cfg:             d.Cfg,
		accessFilter:    d.AccessFilter,
		rateLimiter:     middleware.NewRateLimiter(d.Cfg.RateLimitRequests, d.Cfg.RateLimitWindow),
		accountsHandler: d.AccountsHandler,
		economyHandler:  d.EconomyHandler,
		miningHandler:   d.MiningHandler,
		streakHandler:   d.StreakHandler,
		referralHandler: d.ReferralHandler,
		rigsHandler:     d.RigsHandler,
		adminHandler:    d.AdminHandler,
		accountsService: d.AccountsService,
		economyService:  d.EconomyService,
		miningService:   d.MiningService,
		streakService:   d.StreakService,
		parser:          NewCommandParser(),
		inflight:        make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message

	middleware.LogMessage(message)

	if !b.accessFilter.CheckAccess(ctx, message) {
		return
	}

	if message.From != nil {
		if ok, retryAfter := b.rateLimiter.Allow(message.From.ID); !ok {
			log.WithFields(log.Fields{
				"user_id":     message.From.ID,
				"retry_after": retryAfter,
			}).Debug("rate limited")
			b.sendMessage(message.Chat.ID, fmt.Sprintf(
				"⏳ Слишком много команд. Подожди %s", common.FormatDuration(retryAfter)))
			return
		}
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// Регистрируем игрока на любое сообщение. Для нового аккаунта
	// заводим баланс, состояние майнинга и серию.
	created, err := b.accountsService.EnsureAccount(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureAccount failed")
	}
	if created {
		b.provisionNewPlayer(ctx, userID)
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}

	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	b.routeCommand(ctx, chatID, userID, cmd, args)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, cmd string, args []string) {
	switch cmd {
	case "start":
		// /start <реферальный_код> — применяем код из диплинка
		if len(args) > 0 && b.cfg.FeatureReferralsEnabled {
			b.referralHandler.HandleApplyCode(ctx, chatID, userID, args[0])
			return
		}
		b.sendHelp(chatID)

	case "help", "помощь":
		b.sendHelp(chatID)

	case "профиль":
		b.accountsHandler.HandleProfile(ctx, chatID, userID)

	case "баланс":
		b.economyHandler.HandleBalance(ctx, chatID, userID)

	case "транзакции":
		b.economyHandler.HandleTransactions(ctx, chatID, userID)

	case "шахта":
		b.miningHandler.HandleStatus(ctx, chatID, userID)

	case "старт":
		b.miningHandler.HandleStart(ctx, chatID, userID)

	case "собрать":
		b.miningHandler.HandleClaim(ctx, chatID, userID, args)

	case "пулы":
		b.miningHandler.HandlePools(ctx, chatID, userID)

	case "пул":
		b.miningHandler.HandleChangePool(ctx, chatID, userID, args)

	case "бонус":
		if b.cfg.FeatureStreaksEnabled {
			b.streakHandler.HandleClaim(ctx, chatID, userID)
		}

	case "серия":
		if b.cfg.FeatureStreaksEnabled {
			b.streakHandler.HandleStatus(ctx, chatID, userID)
		}

	case "пригласить":
		if b.cfg.FeatureReferralsEnabled {
			b.referralHandler.HandleInvite(ctx, chatID, userID)
		}

	case "код":
		if b.cfg.FeatureReferralsEnabled {
			if len(args) < 1 {
				b.sendMessage(chatID, "❌ Формат: !код <реферальный_код>")
				return
			}
			b.referralHandler.HandleApplyCode(ctx, chatID, userID, args[0])
		}

	case "магазин":
		if b.cfg.FeatureShopEnabled {
			b.rigsHandler.HandleShop(ctx, chatID)
		} else {
			b.sendMessage(chatID, "🛒 Магазин временно закрыт")
		}

	case "купить":
		if b.cfg.FeatureShopEnabled {
			b.rigsHandler.HandleBuy(ctx, chatID, userID, args)
		}

	case "риги":
		b.rigsHandler.HandleMyRigs(ctx, chatID, userID)

	case "админ":
		b.adminHandler.HandleLogin(ctx, chatID, userID, args)

	case "выход":
		b.adminHandler.HandleLogout(ctx, chatID, userID)

	case "выдать":
		b.adminHandler.HandleGive(ctx, chatID, userID, args)

	case "забрать":
		b.adminHandler.HandleTake(ctx, chatID, userID, args)

	case "премиум":
		b.adminHandler.HandlePremium(ctx, chatID, userID, args)

	case "статистика":
		b.adminHandler.HandleStats(ctx, chatID, userID)
	}
}

// provisionNewPlayer заводит записи для нового игрока.
func (b *Bot) provisionNewPlayer(ctx context.Context, userID int64) {
	if err := b.economyService.CreateBalance(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("CreateBalance failed")
	}
	if err := b.miningService.CreateState(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("CreateState failed")
	}
	if err := b.streakService.CreateState(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("CreateStreak failed")
	}
	log.WithField("user_id", userID).Info("Новый игрок зарегистрирован")
}

func (b *Bot) sendHelp(chatID int64) {
	b.sendMessage(chatID,
		"⛏ ГигаФарм — добывай коины!\n\n"+
			"!шахта — статус майнинга\n"+
			"!старт — запустить цикл\n"+
			"!собрать [часы] — собрать награду\n"+
			"!пулы / !пул <имя> — пулы майнинга\n"+
			"!магазин / !купить <код> / !риги — оборудование\n"+
			"!бонус / !серия — ежедневный бонус\n"+
			"!пригласить / !код <код> — рефералы\n"+
			"!профиль / !баланс / !транзакции")
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendMessageToUser отправляет сообщение пользователю (для напоминаний).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	}
}

// CommandParser парсит русские команды с префиксами !, . и /.
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	// /start@MyBot → start
	command := strings.ToLower(parts[0])
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
