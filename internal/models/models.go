// Package models defines the domain entities stored by the bot.
package models

import "time"

// User represents a Telegram user who has issued a bot command.
type User struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	LastCommand  string
	CommandCount int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName returns the best human-readable name for the user.
func (u *User) DisplayName() string {
	switch {
	case u.Username != "":
		return "@" + u.Username
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return "user"
	}
}
