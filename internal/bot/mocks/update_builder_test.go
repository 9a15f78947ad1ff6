package mocks

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateBuilder_WithMessage(t *testing.T) {
	t.Parallel()

	update := NewUpdateBuilder().
		WithMessage(12345, 67890, "Hello").
		Build()

	require.NotNil(t, update.Message)
	require.Equal(t, int64(12345), update.Message.Chat.ID)
	require.Equal(t, int64(67890), update.Message.From.ID)
	require.Equal(t, "Hello", update.Message.Text)
	require.Equal(t, "testuser", update.Message.From.Username)
}

func TestUpdateBuilder_WithMessageID(t *testing.T) {
	t.Parallel()

	update := NewUpdateBuilder().
		WithMessage(1, 2, "text").
		WithMessageID(999).
		Build()

	require.Equal(t, 999, update.Message.ID)
}

func TestUpdateBuilder_WithFrom(t *testing.T) {
	t.Parallel()

	update := NewUpdateBuilder().
		WithMessage(1, 2, "text").
		WithFrom(77, "alice", "Alice", "Smith").
		Build()

	require.Equal(t, int64(77), update.Message.From.ID)
	require.Equal(t, "alice", update.Message.From.Username)
}

func TestUpdateBuilder_WithoutFrom(t *testing.T) {
	t.Parallel()

	update := NewUpdateBuilder().
		WithMessage(1, 2, "text").
		WithoutFrom().
		Build()

	require.Nil(t, update.Message.From)
}

func TestUpdateBuilder_WithGroupChat(t *testing.T) {
	t.Parallel()

	update := NewUpdateBuilder().
		WithMessage(-100, 2, "text").
		WithGroupChat().
		Build()

	require.Equal(t, "supergroup", string(update.Message.Chat.Type))
}

func TestUpdateBuilder_NoMessage(t *testing.T) {
	t.Parallel()

	update := NewUpdateBuilder().
		WithMessageID(5).
		WithFrom(1, "", "", "").
		Build()

	require.Nil(t, update.Message)
}

func TestCommandUpdate(t *testing.T) {
	t.Parallel()

	update := CommandUpdate(10, 20, "/dump https://example.com")
	require.Equal(t, "/dump https://example.com", update.Message.Text)
	require.Equal(t, int64(10), update.Message.Chat.ID)
}
