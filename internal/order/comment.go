package order

import (
	"regexp"
	"strings"
	"time"
)

const dateToken = `today|tomorrow|сьогодні|сегодня|завтра|\d{1,2}\.\d{1,2}\.\d{4}`

var (
	leadingDate  = regexp.MustCompile(`(?is)^(` + dateToken + `)(?:[\s,.\-]+(.*))?$`)
	trailingDate = regexp.MustCompile(`(?is)^(?:(.*?)[\s,.\-]+)?(` + dateToken + `)[\s.!]*$`)
)

// ParseComment splits checkout text into an optional requested date and the
// remaining comment. The date may lead or trail the text. Text without a
// recognizable date is returned whole as the comment.
func ParseComment(text string, now time.Time) (*time.Time, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ""
	}

	if m := leadingDate.FindStringSubmatch(text); m != nil {
		if date, ok := resolveDate(m[1], now); ok {
			return &date, strings.TrimSpace(m[2])
		}
	}

	if m := trailingDate.FindStringSubmatch(text); m != nil {
		if date, ok := resolveDate(m[2], now); ok {
			return &date, strings.TrimSpace(m[1])
		}
	}

	return nil, text
}

func resolveDate(token string, now time.Time) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch strings.ToLower(token) {
	case "today", "сьогодні", "сегодня":
		return today, true
	case "tomorrow", "завтра":
		return today.AddDate(0, 0, 1), true
	}

	date, err := time.ParseInLocation("2.1.2006", token, now.Location())
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
