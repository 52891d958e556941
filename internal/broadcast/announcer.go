package broadcast

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/presenter"
)

// Roster lists every user who has talked to the bot.
type Roster interface {
	All(ctx context.Context) ([]domain.User, error)
}

// OfferMarkup builds the keyboard attached to a special menu message.
type OfferMarkup func(menuID int64) *telebot.ReplyMarkup

// Announcer sends a published special menu to every user and reports the
// outcome to the admin who published it.
type Announcer struct {
	catalog     *catalog.Service
	roster      Roster
	broadcaster *Broadcaster
	sender      Sender
	offer       OfferMarkup
	log         *slog.Logger
}

func NewAnnouncer(catalogSvc *catalog.Service, roster Roster, broadcaster *Broadcaster, sender Sender, offer OfferMarkup, log *slog.Logger) *Announcer {
	if log == nil {
		log = slog.Default()
	}
	return &Announcer{
		catalog:     catalogSvc,
		roster:      roster,
		broadcaster: broadcaster,
		sender:      sender,
		offer:       offer,
		log:         log,
	}
}

// Announce fans the menu out. Delivery failures only affect the report.
func (a *Announcer) Announce(ctx context.Context, menuID, adminID int64) (Report, error) {
	menu, err := a.catalog.SpecialMenu(ctx, menuID)
	if err != nil {
		return Report{}, fmt.Errorf("load special menu %d: %w", menuID, err)
	}

	var currency *domain.Currency
	if menu.CurrencyID != nil {
		currency, err = a.catalog.Currency(ctx, *menu.CurrencyID)
		if err != nil {
			return Report{}, fmt.Errorf("load special menu currency: %w", err)
		}
	}

	users, err := a.roster.All(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list users: %w", err)
	}

	recipients := make([]int64, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, u.UserID)
	}

	view := render.View{
		Text:  presenter.SpecialMenuCaption(*menu, currency),
		Media: menu.Media,
		Plain: true,
	}
	if a.offer != nil {
		view.Markup = a.offer(menu.ID)
	}

	report := a.broadcaster.Broadcast(ctx, recipients, view)

	if adminID != 0 {
		summary := render.View{
			Text:  fmt.Sprintf("✅ Спецменю відправлено: %d успішно, %d помилок", report.Delivered, report.Failed),
			Plain: true,
		}
		if err := a.sender.Notify(ctx, adminID, summary); err != nil {
			a.log.Warn("special menu report not delivered", slog.Int64("admin_id", adminID), slog.Any("error", err))
		}
	}

	return report, nil
}
