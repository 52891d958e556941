package broadcast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/testutil"
)

type recordingSender struct {
	views map[int64]render.View
}

func (r *recordingSender) Notify(_ context.Context, chatID int64, v render.View) error {
	if r.views == nil {
		r.views = map[int64]render.View{}
	}
	r.views[chatID] = v
	return nil
}

type roster []domain.User

func (r roster) All(context.Context) ([]domain.User, error) { return r, nil }

func TestAnnounceSendsMenuToEveryUserAndReports(t *testing.T) {
	store := testutil.NewStore()
	kisses := store.Currency("Поцілунки")
	catalogSvc := catalog.NewService(store.Catalog(), store.Specials(), testutil.Logger())

	menu, err := catalogSvc.PublishSpecialMenu(context.Background(), domain.SpecialMenu{
		Media:       domain.Media{Kind: domain.MediaPhoto, FileID: "menu-photo"},
		Description: "Вечеря при свічках",
		PriceAmount: 5,
		CurrencyID:  &kisses.ID,
	})
	require.NoError(t, err)

	sender := &recordingSender{}
	var offeredFor int64
	offer := func(menuID int64) *telebot.ReplyMarkup {
		offeredFor = menuID
		return &telebot.ReplyMarkup{}
	}

	announcer := NewAnnouncer(catalogSvc, roster{{UserID: 1}, {UserID: 2}}, New(sender, nil, testutil.Logger()), sender, offer, testutil.Logger())

	report, err := announcer.Announce(context.Background(), menu.ID, 99)
	require.NoError(t, err)

	assert.Equal(t, Report{Delivered: 2}, report)
	assert.Equal(t, menu.ID, offeredFor)

	view := sender.views[1]
	assert.Equal(t, "menu-photo", view.Media.FileID)
	assert.Contains(t, view.Text, "Вечеря при свічках")
	assert.Contains(t, view.Text, "5 поцілунків")
	assert.NotNil(t, view.Markup)

	assert.Equal(t, "✅ Спецменю відправлено: 2 успішно, 0 помилок", sender.views[99].Text)
}

func TestAnnounceUnknownMenu(t *testing.T) {
	store := testutil.NewStore()
	catalogSvc := catalog.NewService(store.Catalog(), store.Specials(), testutil.Logger())
	sender := &recordingSender{}

	announcer := NewAnnouncer(catalogSvc, roster{{UserID: 1}}, New(sender, nil, testutil.Logger()), sender, nil, testutil.Logger())

	_, err := announcer.Announce(context.Background(), 404, 99)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Empty(t, sender.views)
}
