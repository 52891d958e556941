package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComment(t *testing.T) {
	kyiv := time.FixedZone("EET", 2*60*60)
	now := time.Date(2024, 3, 7, 21, 30, 0, 0, kyiv)
	today := time.Date(2024, 3, 7, 0, 0, 0, 0, kyiv)
	tomorrow := today.AddDate(0, 0, 1)

	tests := []struct {
		name        string
		text        string
		wantDate    *time.Time
		wantComment string
	}{
		{name: "tomorrow leading", text: "завтра привіт", wantDate: &tomorrow, wantComment: "привіт"},
		{name: "today english", text: "Today, please be on time", wantDate: &today, wantComment: "please be on time"},
		{name: "russian today", text: "сегодня", wantDate: &today, wantComment: ""},
		{name: "trailing tomorrow", text: "хочу суші, завтра", wantDate: &tomorrow, wantComment: "хочу суші"},
		{name: "capitalized", text: "Сьогодні - о сьомій", wantDate: &today, wantComment: "о сьомій"},
		{name: "explicit date leading", text: "14.02.2025 вечеря", wantDate: ptr(time.Date(2025, 2, 14, 0, 0, 0, 0, kyiv)), wantComment: "вечеря"},
		{name: "explicit date trailing", text: "вечеря 14.02.2025.", wantDate: ptr(time.Date(2025, 2, 14, 0, 0, 0, 0, kyiv)), wantComment: "вечеря"},
		{name: "impossible date stays in comment", text: "31.02.2025 вечеря", wantComment: "31.02.2025 вечеря"},
		{name: "token inside a word", text: "завтрак у ліжко", wantComment: "завтрак у ліжко"},
		{name: "no date", text: "  просто так  ", wantComment: "просто так"},
		{name: "empty", text: "", wantComment: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			date, comment := ParseComment(tc.text, now)
			assert.Equal(t, tc.wantComment, comment)
			if tc.wantDate == nil {
				assert.Nil(t, date)
				return
			}
			require.NotNil(t, date)
			assert.True(t, tc.wantDate.Equal(*date), "want %v, got %v", *tc.wantDate, *date)
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }
