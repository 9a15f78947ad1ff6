package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/dumpyara/dumpyarabot/internal/jenkins"
	"gitlab.com/dumpyara/dumpyarabot/internal/logger"
)

// handleCancel handles the /cancel command.
func (b *Bot) handleCancel(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCancelCore(ctx, tgBot, update)
}

// handleCancelCore is the testable implementation of handleCancel.
func (b *Bot) handleCancelCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || !isCommand(update.Message.Text, "/cancel", b.username) {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID

	var userID int64
	var username string
	if msg.From != nil {
		userID = msg.From.ID
		username = msg.From.Username
	}

	if !b.cfg.IsUserWhitelisted(userID, username) {
		logger.Log.Warn().Str("user", logger.HashUserID(userID)).Msg("Blocked cancel from non-whitelisted user")
		b.metrics.recordCancel(ctx, outcomeDenied)
		sendHTML(ctx, tg, chatID, msg.ID, "⛔ You don't have permission to cancel jobs.")
		return
	}

	req, err := parseCancelArgs(extractCommandArgs(msg.Text))
	switch {
	case errors.Is(err, errMissingJobID):
		b.metrics.recordCancel(ctx, outcomeUsage)
		sendHTML(ctx, tg, chatID, msg.ID, cancelUsage)
		return
	case errors.Is(err, errInvalidJobID):
		b.metrics.recordCancel(ctx, outcomeInvalid)
		sendHTML(ctx, tg, chatID, msg.ID, "❌ The job ID must be a positive number.")
		return
	}

	job := b.jobFor(req.Private)
	result, err := b.builds.Cancel(ctx, job, req.JobID)
	switch {
	case errors.Is(err, jenkins.ErrNotFound):
		b.metrics.recordCancel(ctx, outcomeNotFound)
		sendHTML(ctx, tg, chatID, msg.ID,
			fmt.Sprintf("⚠️ No running build or queued job with ID <b>%d</b>.", req.JobID))
		return
	case errors.Is(err, jenkins.ErrBuildFinished):
		b.metrics.recordCancel(ctx, outcomeFinished)
		sendHTML(ctx, tg, chatID, msg.ID,
			fmt.Sprintf("ℹ️ Build <b>#%d</b> has already finished, nothing to cancel.", req.JobID))
		return
	case err != nil:
		logger.Log.Error().Err(err).Str("job", job).Int("id", req.JobID).Msg("Failed to cancel job")
		b.metrics.recordCancel(ctx, outcomeError)
		sendHTML(ctx, tg, chatID, msg.ID, "❌ Failed to cancel the job. Please try again later.")
		return
	}

	logger.Log.Info().
		Str("user", logger.HashUserID(userID)).
		Str("job", job).
		Int("id", req.JobID).
		Stringer("result", result).
		Msg("Job cancelled")
	b.metrics.recordCancel(ctx, outcomeCancelled)
	sendHTML(ctx, tg, chatID, msg.ID, fmt.Sprintf("✅ Cancelled %s <b>#%d</b>.", result, req.JobID))
}
