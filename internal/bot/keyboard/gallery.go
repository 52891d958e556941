package keyboard

import (
	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/i18n"
)

// GalleryButtons returns the navigation row of a subcategory gallery:
// an optional previous button, the inert "i/N" label and an optional next button.
func GalleryButtons(t i18n.Translator, subcategoryID int64, index, total int) []InlineButton {
	if total < 1 {
		total = 1
	}
	if index < 0 {
		index = 0
	}
	if index > total-1 {
		index = total - 1
	}

	buttons := make([]InlineButton, 0, 3)

	if index > 0 {
		buttons = append(buttons, Button(
			translated(t, "catalog.prev", "⬅️"),
			callback.GalleryPage{SubcategoryID: subcategoryID, Index: index - 1},
		))
	}

	buttons = append(buttons, Button(
		i18n.Format(t, "catalog.page", index+1, total),
		callback.GalleryInfo{},
	))

	if index < total-1 {
		buttons = append(buttons, Button(
			translated(t, "catalog.next", "➡️"),
			callback.GalleryPage{SubcategoryID: subcategoryID, Index: index + 1},
		))
	}

	return buttons
}
