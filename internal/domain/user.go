package domain

import (
	"fmt"
	"strings"
	"time"
)

// User represents a Telegram user known to the bot.
type User struct {
	UserID      int64
	Username    string
	FirstName   string
	IsFirstTime bool
	CreatedAt   time.Time
}

// DisplayName returns the first name, falling back to the username or id.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("ID:%d", u.UserID)
}

// Handle returns "@username" or the numeric id when the username is unknown.
func (u User) Handle() string {
	if u.Username == "" {
		return fmt.Sprintf("ID:%d", u.UserID)
	}
	return "@" + strings.TrimPrefix(u.Username, "@")
}
