package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/dumpyara/dumpyarabot/internal/logger"
)

// jobFor returns the build job for public or private dumps.
func (b *Bot) jobFor(private bool) string {
	if private {
		return b.cfg.JenkinsPrivateJob
	}
	return b.cfg.JenkinsJob
}

// handleDump handles the /dump command.
func (b *Bot) handleDump(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDumpCore(ctx, tgBot, update)
}

// handleDumpCore is the testable implementation of handleDump.
func (b *Bot) handleDumpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || !isCommand(update.Message.Text, "/dump", b.username) {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID

	req, err := parseDumpArgs(extractCommandArgs(msg.Text))
	switch {
	case errors.Is(err, errMissingURL):
		b.metrics.recordDump(ctx, outcomeUsage, false)
		sendHTML(ctx, tg, chatID, msg.ID, dumpUsage)
		return
	case errors.Is(err, errInvalidURL):
		b.metrics.recordDump(ctx, outcomeInvalid, false)
		sendHTML(ctx, tg, chatID, msg.ID,
			"❌ That doesn't look like a valid URL. Use a direct <code>http</code> or <code>https</code> link.")
		return
	}

	opts := req.Options
	logger.Log.Info().
		Str("chat", logger.HashChatID(chatID)).
		Str("url", logger.SanitizeURL(req.URL)).
		Str("flags", opts.Flags()).
		Msg("Dump requested")

	// Private requests are not replied to because the request message is deleted.
	replyTo := msg.ID
	if opts.Private {
		replyTo = 0
	}
	status := sendHTML(ctx, tg, chatID, replyTo, "⏳ Processing dump request…")
	if status == nil {
		b.metrics.recordDump(ctx, outcomeError, opts.Private)
		return
	}

	if opts.Private {
		if _, err := tg.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: msg.ID}); err != nil {
			logger.Log.Warn().Err(err).Str("chat", logger.HashChatID(chatID)).Msg("Failed to delete private dump request")
		}
	}

	job := b.jobFor(opts.Private)

	if !opts.Force {
		existing, err := b.builds.FindBuild(ctx, job, req.URL)
		if err != nil {
			logger.Log.Error().Err(err).Str("job", job).Msg("Failed to look up existing builds")
			b.metrics.recordDump(ctx, outcomeError, opts.Private)
			editHTML(ctx, tg, chatID, status.ID, "❌ Could not check for existing dumps. Please try again later.")
			return
		}
		if existing != nil {
			b.metrics.recordDump(ctx, outcomeExisting, opts.Private)
			editHTML(ctx, tg, chatID, status.ID, formatExistingBuild(existing.Number, existing.URL, existing.Building()))
			return
		}
	}

	params := map[string]string{
		"URL":                     req.URL,
		"USE_ALT_DUMPER":          strconv.FormatBool(opts.AltDumper),
		"ADD_BLACKLIST":           strconv.FormatBool(opts.Blacklist),
		"INITIAL_MESSAGE_ID":      strconv.Itoa(status.ID),
		"INITIAL_MESSAGE_CHAT_ID": strconv.FormatInt(chatID, 10),
	}

	if err := b.builds.TriggerBuild(ctx, job, params); err != nil {
		logger.Log.Error().Err(err).Str("job", job).Msg("Failed to trigger dump build")
		b.metrics.recordDump(ctx, outcomeError, opts.Private)
		editHTML(ctx, tg, chatID, status.ID, "❌ Failed to start the dump job. Please try again later.")
		return
	}

	b.metrics.recordDump(ctx, outcomeStarted, opts.Private)
	editHTML(ctx, tg, chatID, status.ID, formatStarted(job, opts.Flags()))
}

func formatExistingBuild(number int, buildURL string, building bool) string {
	state := "has already been dumped"
	if building {
		state = "is already being dumped"
	}
	text := fmt.Sprintf("ℹ️ This firmware %s in build <b>#%d</b>.", state, number)
	if buildURL != "" {
		text += fmt.Sprintf("\n<a href=\"%s\">Open build</a>", escapeHTML(buildURL))
	}
	return text + "\nAdd the <code>f</code> option to dump it again."
}

func formatStarted(job, flags string) string {
	text := fmt.Sprintf("✅ Dump job started on <code>%s</code>.", escapeHTML(job))
	if flags != "" {
		text += fmt.Sprintf("\nOptions: <code>%s</code>", flags)
	}
	return text
}
