// Package bot provides the Telegram bot initialization and handlers.
package bot

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"gitlab.com/dumpyara/dumpyarabot/internal/config"
	"gitlab.com/dumpyara/dumpyarabot/internal/logger"
	"gitlab.com/dumpyara/dumpyarabot/internal/models"
)

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot      *bot.Bot
	cfg      *config.Config
	users    UserRecorder
	builds   BuildServer
	metrics  *botMetrics
	username string
}

// New creates a new Bot instance. users may be nil when no database is configured.
// extra options are applied after the defaults.
func New(ctx context.Context, cfg *config.Config, users UserRecorder, builds BuildServer, extra ...bot.Option) (*Bot, error) {
	b := &Bot{
		cfg:     cfg,
		users:   users,
		builds:  builds,
		metrics: newBotMetrics(),
	}

	opts := []bot.Option{
		bot.WithMiddlewares(b.accessMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
		bot.WithSkipGetMe(),
	}
	opts = append(opts, extra...)

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	me, err := telegramBot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}

	b.bot = telegramBot
	b.username = me.Username
	b.registerHandlers()

	return b, nil
}

// Start begins polling for updates and blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

// registerHandlers sets up command handlers.
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandlerMatchFunc(b.commandMatcher("/start"), b.handleStart)
	b.bot.RegisterHandlerMatchFunc(b.commandMatcher("/help"), b.handleHelp)
	b.bot.RegisterHandlerMatchFunc(b.commandMatcher("/dump"), b.handleDump)
	b.bot.RegisterHandlerMatchFunc(b.commandMatcher("/cancel"), b.handleCancel)
}

// commandMatcher matches messages invoking command on this bot, in any letter case.
func (b *Bot) commandMatcher(command string) bot.MatchFunc {
	return func(update *tgmodels.Update) bool {
		return update.Message != nil && isCommand(update.Message.Text, command, b.username)
	}
}

// accessMiddleware drops updates from chats outside ALLOWED_CHATS and
// records the sender of each command.
func (b *Bot) accessMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		if !b.admit(ctx, update) {
			return
		}
		next(ctx, tgBot, update)
	}
}

// admit reports whether the update should reach a handler.
func (b *Bot) admit(ctx context.Context, update *tgmodels.Update) bool {
	msg := update.Message
	if msg == nil {
		return false
	}

	if !b.cfg.IsChatAllowed(msg.Chat.ID) {
		logger.Log.Warn().
			Str("chat", logger.HashChatID(msg.Chat.ID)).
			Msg("Ignoring update from chat outside allow list")
		return false
	}

	b.recordUser(ctx, msg)
	return true
}

// recordUser stores the sender and command when a user store is configured.
func (b *Bot) recordUser(ctx context.Context, msg *tgmodels.Message) {
	if b.users == nil || msg.From == nil {
		return
	}

	command := commandName(msg.Text)
	if command == "" || !isCommand(msg.Text, command, b.username) {
		return
	}

	user := &models.User{
		ID:        msg.From.ID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	}
	if err := b.users.RecordCommand(ctx, user, command); err != nil {
		logger.Log.Error().
			Err(err).
			Str("user", logger.HashUserID(user.ID)).
			Msg("Failed to record user command")
	}
}

// commandName returns "/cmd" for "/Cmd@bot args", or "" if text is not a command.
func commandName(text string) string {
	name, _, _, _ := splitCommand(text)
	return name
}

// defaultHandler handles unrecognized messages. The bot lives in group chats,
// so anything that is not a known command is ignored.
func (b *Bot) defaultHandler(_ context.Context, _ *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	logger.Log.Debug().
		Str("chat", logger.HashChatID(update.Message.Chat.ID)).
		Msg("Default handler triggered")
}
