// Package mocks provides mock implementations for testing bot handlers.
package mocks

import (
	"context"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TelegramAPI defines the Telegram operations the handlers use.
// It lives here to avoid an import cycle between bot and mocks.
type TelegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// SentMessage captures a message sent via MockBot.
type SentMessage struct {
	ChatID         any
	Text           string
	ParseMode      models.ParseMode
	ReplyToMessage int
}

// EditedMessage captures an edited message via MockBot.
type EditedMessage struct {
	ChatID    any
	MessageID int
	Text      string
	ParseMode models.ParseMode
}

// DeletedMessage captures a deleted message via MockBot.
type DeletedMessage struct {
	ChatID    any
	MessageID int
}

// Compile-time check that MockBot implements TelegramAPI.
var _ TelegramAPI = (*MockBot)(nil)

// MockBot simulates Telegram bot operations for testing.
type MockBot struct {
	mu sync.RWMutex

	SentMessages    []SentMessage
	EditedMessages  []EditedMessage
	DeletedMessages []DeletedMessage

	// SendMessageError allows simulating SendMessage failures.
	SendMessageError error
	// EditMessageError allows simulating EditMessageText failures.
	EditMessageError error
	// DeleteMessageError allows simulating DeleteMessage failures.
	DeleteMessageError error

	// NextMessageID is auto-incremented for each sent message.
	NextMessageID int
}

// NewMockBot creates a new MockBot instance.
func NewMockBot() *MockBot {
	return &MockBot{
		SentMessages:    make([]SentMessage, 0),
		EditedMessages:  make([]EditedMessage, 0),
		DeletedMessages: make([]DeletedMessage, 0),
		NextMessageID:   1000,
	}
}

// SendMessage simulates sending a message.
func (m *MockBot) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendMessageError != nil {
		return nil, m.SendMessageError
	}

	replyTo := 0
	if params.ReplyParameters != nil {
		replyTo = params.ReplyParameters.MessageID
	}

	m.SentMessages = append(m.SentMessages, SentMessage{
		ChatID:         params.ChatID,
		Text:           params.Text,
		ParseMode:      params.ParseMode,
		ReplyToMessage: replyTo,
	})

	msgID := m.NextMessageID
	m.NextMessageID++

	return &models.Message{
		ID: msgID,
		Chat: models.Chat{
			ID: chatIDToInt64(params.ChatID),
		},
		Text: params.Text,
	}, nil
}

// EditMessageText simulates editing a message.
func (m *MockBot) EditMessageText(_ context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EditMessageError != nil {
		return nil, m.EditMessageError
	}

	m.EditedMessages = append(m.EditedMessages, EditedMessage{
		ChatID:    params.ChatID,
		MessageID: params.MessageID,
		Text:      params.Text,
		ParseMode: params.ParseMode,
	})

	return &models.Message{
		ID: params.MessageID,
		Chat: models.Chat{
			ID: chatIDToInt64(params.ChatID),
		},
		Text: params.Text,
	}, nil
}

// DeleteMessage simulates deleting a message.
func (m *MockBot) DeleteMessage(_ context.Context, params *bot.DeleteMessageParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteMessageError != nil {
		return false, m.DeleteMessageError
	}

	m.DeletedMessages = append(m.DeletedMessages, DeletedMessage{
		ChatID:    params.ChatID,
		MessageID: params.MessageID,
	})

	return true, nil
}

// Reset clears all recorded interactions.
func (m *MockBot) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentMessages = make([]SentMessage, 0)
	m.EditedMessages = make([]EditedMessage, 0)
	m.DeletedMessages = make([]DeletedMessage, 0)
	m.SendMessageError = nil
	m.EditMessageError = nil
	m.DeleteMessageError = nil
}

// LastSentMessage returns the most recently sent message, or nil if none.
func (m *MockBot) LastSentMessage() *SentMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.SentMessages) == 0 {
		return nil
	}
	return &m.SentMessages[len(m.SentMessages)-1]
}

// LastEditedMessage returns the most recently edited message, or nil if none.
func (m *MockBot) LastEditedMessage() *EditedMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.EditedMessages) == 0 {
		return nil
	}
	return &m.EditedMessages[len(m.EditedMessages)-1]
}

// SentMessageCount returns the number of messages sent.
func (m *MockBot) SentMessageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentMessages)
}

// EditedMessageCount returns the number of messages edited.
func (m *MockBot) EditedMessageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.EditedMessages)
}

// DeletedMessageCount returns the number of messages deleted.
func (m *MockBot) DeletedMessageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.DeletedMessages)
}

// chatIDToInt64 converts a ChatID to int64.
func chatIDToInt64(chatID any) int64 {
	switch v := chatID.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
