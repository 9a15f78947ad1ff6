package bot

import (
	"context"
	"fmt"
	"html"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/dumpyara/dumpyarabot/internal/logger"
)

const dumpUsage = `<b>Usage:</b> <code>/dump &lt;url&gt; [options]</code>

<b>Options</b> (may be combined, e.g. <code>af</code>):
• <code>a</code> - use the alternative dumper
• <code>f</code> - force a new dump even if one exists
• <code>b</code> - add the URL to the blacklist
• <code>p</code> - private dump, your message is deleted`

const cancelUsage = `<b>Usage:</b> <code>/cancel &lt;job_id&gt; [p]</code>

• <code>p</code> - cancel a private dump job`

// escapeHTML escapes text for Telegram's HTML parse mode.
func escapeHTML(s string) string {
	return html.EscapeString(s)
}

// formatGreeting returns a greeting suffix with the user's name.
func formatGreeting(firstName string) string {
	if firstName == "" {
		return ""
	}
	return ", " + escapeHTML(firstName)
}

// sendHTML sends an HTML message and logs failures.
func sendHTML(ctx context.Context, tg TelegramAPI, chatID int64, replyTo int, text string) *models.Message {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if replyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{
			MessageID:                replyTo,
			AllowSendingWithoutReply: true,
		}
	}

	msg, err := tg.SendMessage(ctx, params)
	if err != nil {
		logger.Log.Error().Err(err).Str("chat", logger.HashChatID(chatID)).Msg("Failed to send message")
		return nil
	}
	return msg
}

// editHTML replaces the text of a previously sent message and logs failures.
func editHTML(ctx context.Context, tg TelegramAPI, chatID int64, messageID int, text string) {
	_, err := tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Str("chat", logger.HashChatID(chatID)).Msg("Failed to edit message")
	}
}

// handleStart handles the /start command.
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

// handleStartCore is the testable implementation of handleStart.
func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || !isCommand(update.Message.Text, "/start", b.username) {
		return
	}

	firstName := ""
	if update.Message.From != nil {
		firstName = update.Message.From.FirstName
	}

	text := fmt.Sprintf(`👋 Hi%s!

I request firmware dumps from the build server.
Send <code>/dump &lt;url&gt;</code> with a direct link to a firmware archive.

Use /help to see all available commands.`,
		formatGreeting(firstName))

	sendHTML(ctx, tg, update.Message.Chat.ID, 0, text)
}

// handleHelp handles the /help command.
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelpCore(ctx, tgBot, update)
}

// handleHelpCore is the testable implementation of handleHelp.
func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || !isCommand(update.Message.Text, "/help", b.username) {
		return
	}

	text := "📚 <b>Available Commands</b>\n\n" + dumpUsage + "\n\n" + cancelUsage +
		"\n\nOnly whitelisted users can cancel jobs."

	sendHTML(ctx, tg, update.Message.Chat.ID, 0, text)
}
