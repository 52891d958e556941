// Package render shows views to the user. Button presses edit the message
// they came from; when that is impossible the old message is deleted and a
// new one is sent. Transport quirks never reach the handlers.
package render

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/mediacache"
)

const respondedKey = "render.responded"

var errKindSwitch = errors.New("render: cannot edit between text and media")

// View is one screen: text or a captioned media, with an optional keyboard.
type View struct {
	Text   string
	Media  domain.Media
	Markup *telebot.ReplyMarkup
	// Plain disables Markdown.
	Plain bool
}

// UploadHook is called after a URL-only media got a Telegram file id.
type UploadHook func(ctx context.Context, media domain.Media, fileID string)

// API is the part of *telebot.Bot the renderer talks to.
type API interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error)
	EditMedia(msg telebot.Editable, media telebot.Inputtable, opts ...interface{}) (*telebot.Message, error)
	Delete(msg telebot.Editable) error
}

var _ API = (*telebot.Bot)(nil)

type Renderer struct {
	api      API
	cache    *mediacache.Cache
	log      *slog.Logger
	onUpload UploadHook
}

func New(api API, cache *mediacache.Cache, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{api: api, cache: cache, log: log}
}

// OnUpload registers the hook called with file ids of freshly uploaded media.
func (r *Renderer) OnUpload(hook UploadHook) {
	r.onUpload = hook
}

// Show replaces the message a button was pressed on, or sends a new one.
func (r *Renderer) Show(ctx context.Context, c telebot.Context, v View) error {
	v.Media = r.resolve(ctx, v.Media)

	if cb := c.Callback(); cb != nil && cb.Message != nil {
		err := r.edit(cb.Message, v)
		if err == nil || isNotModified(err) {
			return nil
		}

		r.log.Debug("edit failed, resending", slog.Int("message_id", cb.Message.ID), slog.Any("error", err))
		if delErr := r.api.Delete(cb.Message); delErr != nil {
			r.log.Debug("delete before resend failed", slog.Any("error", delErr))
		}
	}

	_, err := r.Send(ctx, recipient(c), v)
	return err
}

// Replace deletes msg and sends v in its place.
func (r *Renderer) Replace(ctx context.Context, to telebot.Recipient, msg *telebot.Message, v View) error {
	if msg != nil {
		if err := r.api.Delete(msg); err != nil {
			r.log.Debug("delete before replace failed", slog.Any("error", err))
		}
	}
	_, err := r.Send(ctx, to, v)
	return err
}

// Send delivers v as a new message. Text rejected as Markdown is resent plain.
func (r *Renderer) Send(ctx context.Context, to telebot.Recipient, v View) (*telebot.Message, error) {
	v.Media = r.resolve(ctx, v.Media)

	msg, err := r.api.Send(to, Content(v.Media, v.Text), r.options(v))
	if isMarkupRejected(err) && !v.Plain {
		v.Plain = true
		msg, err = r.api.Send(to, Content(v.Media, v.Text), r.options(v))
	}
	if err != nil {
		return nil, Classify(err)
	}

	r.remember(ctx, v.Media, msg)
	return msg, nil
}

// Notify sends v to a chat by id, e.g. the partner or an admin.
func (r *Renderer) Notify(ctx context.Context, chatID int64, v View) error {
	_, err := r.Send(ctx, telebot.ChatID(chatID), v)
	return err
}

// Respond answers the pending callback query once. Stale queries are ignored.
func (r *Renderer) Respond(c telebot.Context, text string, alert bool) error {
	if c.Callback() == nil {
		return nil
	}
	if answered, _ := c.Get(respondedKey).(bool); answered {
		return nil
	}
	c.Set(respondedKey, true)

	err := c.Respond(&telebot.CallbackResponse{Text: text, ShowAlert: alert})
	if err != nil && !isQueryTooOld(err) {
		r.log.Warn("callback respond failed", slog.Any("error", err))
	}
	return nil
}

func (r *Renderer) edit(msg *telebot.Message, v View) error {
	_, hasMedia := MediaOf(msg)

	switch {
	case v.Media.IsZero() && !hasMedia:
		_, err := r.api.Edit(msg, v.Text, r.options(v))
		return err
	case !v.Media.IsZero() && hasMedia:
		input, ok := Content(v.Media, v.Text).(telebot.Inputtable)
		if !ok {
			return errKindSwitch
		}
		_, err := r.api.EditMedia(msg, input, r.options(v))
		return err
	default:
		return errKindSwitch
	}
}

func (r *Renderer) options(v View) *telebot.SendOptions {
	opts := &telebot.SendOptions{ReplyMarkup: v.Markup}
	if !v.Plain {
		opts.ParseMode = telebot.ModeMarkdown
	}
	return opts
}

func (r *Renderer) resolve(ctx context.Context, media domain.Media) domain.Media {
	resolved, err := r.cache.Resolve(ctx, media)
	if err != nil {
		r.log.Warn("media cache lookup failed", slog.Any("error", err))
	}
	return resolved
}

func (r *Renderer) remember(ctx context.Context, media domain.Media, msg *telebot.Message) {
	if media.FileID != "" || media.URL == "" {
		return
	}

	sent, ok := MediaOf(msg)
	if !ok || sent.FileID == "" {
		return
	}

	if err := r.cache.Remember(ctx, media.URL, sent.FileID); err != nil {
		r.log.Warn("media cache store failed", slog.Any("error", err))
	}
	if r.onUpload != nil {
		r.onUpload(ctx, media, sent.FileID)
	}
}

func recipient(c telebot.Context) telebot.Recipient {
	if chat := c.Chat(); chat != nil {
		return chat
	}
	return c.Sender()
}
