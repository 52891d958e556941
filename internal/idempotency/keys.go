package idempotency

import "fmt"

// CallbackKey identifies a button press. Telegram never reuses query ids.
func CallbackKey(queryID string) string {
	return "cb:" + queryID
}

// MessageKey identifies an incoming message within its chat.
func MessageKey(chatID int64, messageID int) string {
	return fmt.Sprintf("msg:%d:%d", chatID, messageID)
}
