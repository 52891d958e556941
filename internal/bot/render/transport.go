package render

import (
	"errors"
	"strings"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/lovemenu-bot/internal/errors"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

const apiName = "telegram"

// Content builds what telebot sends for a view: plain text, or a photo,
// video or animation with the text as caption.
func Content(media domain.Media, text string) interface{} {
	if media.IsZero() {
		return text
	}

	file := telebot.File{FileID: media.FileID}
	if media.FileID == "" {
		file = telebot.FromURL(media.URL)
	}

	switch media.Kind {
	case domain.MediaVideo:
		return &telebot.Video{File: file, Caption: text}
	case domain.MediaGIF:
		return &telebot.Animation{File: file, Caption: text}
	default:
		return &telebot.Photo{File: file, Caption: text}
	}
}

// MediaOf extracts the media attached to a message.
func MediaOf(msg *telebot.Message) (domain.Media, bool) {
	if msg == nil {
		return domain.Media{}, false
	}

	switch {
	case msg.Photo != nil:
		return domain.Media{Kind: domain.MediaPhoto, FileID: msg.Photo.FileID}, true
	case msg.Animation != nil:
		return domain.Media{Kind: domain.MediaGIF, FileID: msg.Animation.FileID}, true
	case msg.Video != nil:
		return domain.Media{Kind: domain.MediaVideo, FileID: msg.Video.FileID}, true
	default:
		return domain.Media{}, false
	}
}

// Classify maps a telebot error onto the AppError taxonomy: flood control and
// server failures may be retried, rejected requests may not.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var flood telebot.FloodError
	if errors.As(err, &flood) {
		return apperrors.NewExternalAPIError(apiName, err)
	}

	var tgErr *telebot.Error
	if errors.As(err, &tgErr) && tgErr.Code >= 400 && tgErr.Code < 500 {
		return apperrors.NewPermanentAPIError(apiName, err)
	}

	return apperrors.NewExternalAPIError(apiName, err)
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

func isQueryTooOld(err error) bool {
	return err != nil && strings.Contains(err.Error(), "query is too old")
}

func isMarkupRejected(err error) bool {
	return err != nil && strings.Contains(err.Error(), "can't parse entities")
}
