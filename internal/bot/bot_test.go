package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
	"gitlab.com/dumpyara/dumpyarabot/internal/bot/mocks"
)

func TestAdmit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("rejects updates without message", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t, &fakeBuildServer{})
		require.False(t, b.admit(ctx, &models.Update{}))
	})

	t.Run("allows any chat when allow list is empty", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t, &fakeBuildServer{})
		require.True(t, b.admit(ctx, mocks.CommandUpdate(42, 1, "/dump")))
	})

	t.Run("rejects chats outside allow list", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserRecorder{}
		b := setupTestBot(t, &fakeBuildServer{})
		b.cfg.AllowedChats = []int64{testChatID}
		b.users = users

		require.False(t, b.admit(ctx, mocks.CommandUpdate(42, 1, "/dump")))
		require.True(t, b.admit(ctx, mocks.CommandUpdate(testChatID, 1, "/dump")))
		require.Len(t, users.Commands, 1, "only admitted updates are recorded")
	})

	t.Run("records commands", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserRecorder{}
		b := setupTestBot(t, &fakeBuildServer{})
		b.users = users

		require.True(t, b.admit(ctx, mocks.CommandUpdate(testChatID, 7, "/cancel@dumpyarabot 5")))
		require.True(t, b.admit(ctx, mocks.MessageUpdate(testChatID, 7, "just chatting")))
		require.True(t, b.admit(ctx, mocks.CommandUpdate(testChatID, 7, "/dump@someotherbot url")))

		require.Equal(t, []recordedCommand{{UserID: 7, Command: "/cancel"}}, users.Commands)
	})

	t.Run("record failure still admits", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserRecorder{Err: errors.New("db down")}
		b := setupTestBot(t, &fakeBuildServer{})
		b.users = users

		require.True(t, b.admit(ctx, mocks.CommandUpdate(testChatID, 7, "/dump")))
		require.Len(t, users.Commands, 1)
	})

	t.Run("skips recording without sender", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserRecorder{}
		b := setupTestBot(t, &fakeBuildServer{})
		b.users = users

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, 7, "/dump").WithoutFrom().Build()
		require.True(t, b.admit(ctx, update))
		require.Empty(t, users.Commands)
	})
}

func TestAccessMiddleware(t *testing.T) {
	t.Parallel()

	b := setupTestBot(t, &fakeBuildServer{})
	b.cfg.AllowedChats = []int64{testChatID}

	called := 0
	next := func(context.Context, *bot.Bot, *models.Update) { called++ }
	handler := b.accessMiddleware(next)

	handler(context.Background(), nil, mocks.CommandUpdate(42, 1, "/dump"))
	require.Equal(t, 0, called)

	handler(context.Background(), nil, mocks.CommandUpdate(testChatID, 1, "/dump"))
	require.Equal(t, 1, called)
}

func TestNew(t *testing.T) {
	t.Parallel()

	newServer := func(t *testing.T, body string) *httptest.Server {
		t.Helper()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/getMe") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}))
		t.Cleanup(server.Close)
		return server
	}

	t.Run("stores own username", func(t *testing.T) {
		t.Parallel()
		server := newServer(t, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Dumpyara","username":"DumpyaraBot"}}`)
		cfg := setupTestBot(t, &fakeBuildServer{}).cfg

		b, err := New(context.Background(), cfg, nil, &fakeBuildServer{}, bot.WithServerURL(server.URL))
		require.NoError(t, err)
		require.Equal(t, "DumpyaraBot", b.username)
		require.True(t, b.commandMatcher("/dump")(mocks.CommandUpdate(testChatID, 1, "/dump@dumpyarabot url")))
		require.False(t, b.commandMatcher("/dump")(mocks.CommandUpdate(testChatID, 1, "/dump@someotherbot url")))
	})

	t.Run("fails when bot info is unavailable", func(t *testing.T) {
		t.Parallel()
		server := newServer(t, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
		cfg := setupTestBot(t, &fakeBuildServer{}).cfg

		_, err := New(context.Background(), cfg, nil, &fakeBuildServer{}, bot.WithServerURL(server.URL))
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to get bot info")
	})
}

func TestCommandMatcher(t *testing.T) {
	t.Parallel()

	b := setupTestBot(t, &fakeBuildServer{})
	match := b.commandMatcher("/dump")

	require.True(t, match(mocks.CommandUpdate(testChatID, 1, "/dump url")))
	require.True(t, match(mocks.CommandUpdate(testChatID, 1, "/Dump@DumpyaraBot url")))
	require.False(t, match(mocks.CommandUpdate(testChatID, 1, "/dump@someotherbot url")))
	require.False(t, match(mocks.CommandUpdate(testChatID, 1, "/cancel 5")))
	require.False(t, match(&models.Update{}))
}

func TestHandleStartCore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := setupTestBot(t, &fakeBuildServer{})

	t.Run("greets user by name", func(t *testing.T) {
		t.Parallel()
		mockBot := mocks.NewMockBot()

		update := mocks.NewUpdateBuilder().
			WithMessage(testChatID, 1, "/start").
			WithFrom(1, "", "<Ann>", "").
			Build()
		b.handleStartCore(ctx, mockBot, update)

		require.Equal(t, 1, mockBot.SentMessageCount())
		msg := mockBot.LastSentMessage()
		require.Contains(t, msg.Text, "Hi, &lt;Ann&gt;!")
		require.Equal(t, models.ParseModeHTML, msg.ParseMode)
	})

	t.Run("no sender", func(t *testing.T) {
		t.Parallel()
		mockBot := mocks.NewMockBot()

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, 1, "/start").WithoutFrom().Build()
		b.handleStartCore(ctx, mockBot, update)

		require.Contains(t, mockBot.LastSentMessage().Text, "Hi!")
	})

	t.Run("nil message returns early", func(t *testing.T) {
		t.Parallel()
		mockBot := mocks.NewMockBot()
		b.handleStartCore(ctx, mockBot, &models.Update{})
		require.Equal(t, 0, mockBot.SentMessageCount())
	})
}

func TestHandleHelpCore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := setupTestBot(t, &fakeBuildServer{})

	t.Run("lists both commands", func(t *testing.T) {
		t.Parallel()
		mockBot := mocks.NewMockBot()

		b.handleHelpCore(ctx, mockBot, mocks.CommandUpdate(testChatID, 1, "/help"))

		text := mockBot.LastSentMessage().Text
		require.Contains(t, text, "/dump &lt;url&gt;")
		require.Contains(t, text, "/cancel &lt;job_id&gt;")
	})

	t.Run("send error is handled gracefully", func(t *testing.T) {
		t.Parallel()
		mockBot := mocks.NewMockBot()
		mockBot.SendMessageError = errors.New("telegram api error")

		b.handleHelpCore(ctx, mockBot, mocks.CommandUpdate(testChatID, 1, "/help"))

		require.Equal(t, 0, mockBot.SentMessageCount())
	})
}

// TestCommandHandlerWrappers covers the thin wrappers that adapt Core
// functions to the telegram library's handler signature. Updates without a
// message return before the nil *bot.Bot is used.
func TestCommandHandlerWrappers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := setupTestBot(t, &fakeBuildServer{})
	var tgBot *bot.Bot

	b.handleStart(ctx, tgBot, &models.Update{})
	b.handleHelp(ctx, tgBot, &models.Update{})
	b.handleDump(ctx, tgBot, &models.Update{})
	b.handleCancel(ctx, tgBot, &models.Update{})
	b.defaultHandler(ctx, tgBot, &models.Update{})
	b.defaultHandler(ctx, tgBot, mocks.MessageUpdate(testChatID, 1, "hello"))
}

func TestBotMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *botMetrics
	m.recordDump(context.Background(), outcomeStarted, false)
	m.recordCancel(context.Background(), outcomeCancelled)
}

func TestJobFor(t *testing.T) {
	t.Parallel()

	b := setupTestBot(t, &fakeBuildServer{})
	require.Equal(t, "dumpyara", b.jobFor(false))
	require.Equal(t, "privdump", b.jobFor(true))
}
