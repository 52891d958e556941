package render

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/lovemenu-bot/internal/errors"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/mediacache"
)

type fakeAPI struct {
	sent     []interface{}
	edited   []interface{}
	deleted  int
	sendErrs []error
	editErr  error
	reply    *telebot.Message
}

func (f *fakeAPI) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	f.sent = append(f.sent, what)
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &telebot.Message{ID: len(f.sent)}, nil
}

func (f *fakeAPI) Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	f.edited = append(f.edited, what)
	return &telebot.Message{}, f.editErr
}

func (f *fakeAPI) EditMedia(msg telebot.Editable, media telebot.Inputtable, opts ...interface{}) (*telebot.Message, error) {
	f.edited = append(f.edited, media)
	return &telebot.Message{}, f.editErr
}

func (f *fakeAPI) Delete(msg telebot.Editable) error {
	f.deleted++
	return nil
}

type fakeContext struct {
	telebot.Context

	callback  *telebot.Callback
	store     map[string]interface{}
	responses int
}

func (f *fakeContext) Callback() *telebot.Callback { return f.callback }
func (f *fakeContext) Chat() *telebot.Chat        { return &telebot.Chat{ID: 42} }
func (f *fakeContext) Sender() *telebot.User      { return &telebot.User{ID: 42} }

func (f *fakeContext) Get(key string) interface{} { return f.store[key] }

func (f *fakeContext) Set(key string, v interface{}) {
	if f.store == nil {
		f.store = map[string]interface{}{}
	}
	f.store[key] = v
}

func (f *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	f.responses++
	return nil
}

func newRenderer(t *testing.T, api *fakeAPI) (*Renderer, *mediacache.Cache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := mediacache.NewCache(client, 0)
	return New(api, cache, slog.Default()), cache
}

func TestShowEditsTextMessageInPlace(t *testing.T) {
	api := &fakeAPI{}
	r, _ := newRenderer(t, api)
	c := &fakeContext{callback: &telebot.Callback{Message: &telebot.Message{ID: 7, Text: "old"}}}

	require.NoError(t, r.Show(context.Background(), c, View{Text: "new"}))

	assert.Equal(t, []interface{}{"new"}, api.edited)
	assert.Empty(t, api.sent)
	assert.Zero(t, api.deleted)
}

func TestShowTreatsNotModifiedAsSuccess(t *testing.T) {
	api := &fakeAPI{editErr: errors.New("telegram: Bad Request: message is not modified (400)")}
	r, _ := newRenderer(t, api)
	c := &fakeContext{callback: &telebot.Callback{Message: &telebot.Message{ID: 7, Text: "same"}}}

	require.NoError(t, r.Show(context.Background(), c, View{Text: "same"}))
	assert.Empty(t, api.sent)
	assert.Zero(t, api.deleted)
}

func TestShowReplacesWhenSwitchingBetweenTextAndMedia(t *testing.T) {
	api := &fakeAPI{}
	r, _ := newRenderer(t, api)
	c := &fakeContext{callback: &telebot.Callback{Message: &telebot.Message{ID: 7, Text: "menu"}}}

	view := View{Text: "card", Media: domain.Media{Kind: domain.MediaPhoto, FileID: "AgAD"}}
	require.NoError(t, r.Show(context.Background(), c, view))

	assert.Empty(t, api.edited)
	assert.Equal(t, 1, api.deleted)
	require.Len(t, api.sent, 1)
	photo, ok := api.sent[0].(*telebot.Photo)
	require.True(t, ok)
	assert.Equal(t, "AgAD", photo.FileID)
	assert.Equal(t, "card", photo.Caption)
}

func TestShowFallsBackToSendOnEditFailure(t *testing.T) {
	api := &fakeAPI{editErr: errors.New("telegram: Bad Request: message to edit not found (400)")}
	r, _ := newRenderer(t, api)
	c := &fakeContext{callback: &telebot.Callback{Message: &telebot.Message{ID: 7, Text: "old"}}}

	require.NoError(t, r.Show(context.Background(), c, View{Text: "new"}))
	assert.Equal(t, 1, api.deleted)
	assert.Equal(t, []interface{}{"new"}, api.sent)
}

func TestShowSendsWithoutCallback(t *testing.T) {
	api := &fakeAPI{}
	r, _ := newRenderer(t, api)

	require.NoError(t, r.Show(context.Background(), &fakeContext{}, View{Text: "hello"}))
	assert.Equal(t, []interface{}{"hello"}, api.sent)
	assert.Empty(t, api.edited)
}

func TestSendRetriesPlainWhenMarkdownRejected(t *testing.T) {
	api := &fakeAPI{sendErrs: []error{errors.New("telegram: Bad Request: can't parse entities (400)")}}
	r, _ := newRenderer(t, api)

	_, err := r.Send(context.Background(), telebot.ChatID(1), View{Text: "a_b"})
	require.NoError(t, err)
	assert.Len(t, api.sent, 2)
}

func TestSendRemembersUploadedFileID(t *testing.T) {
	api := &fakeAPI{reply: &telebot.Message{Photo: &telebot.Photo{File: telebot.File{FileID: "uploaded"}}}}
	r, cache := newRenderer(t, api)

	var hooked string
	r.OnUpload(func(ctx context.Context, media domain.Media, fileID string) { hooked = fileID })

	media := domain.Media{Kind: domain.MediaPhoto, URL: "https://example.com/a.jpg"}
	_, err := r.Send(context.Background(), telebot.ChatID(1), View{Text: "x", Media: media})
	require.NoError(t, err)
	assert.Equal(t, "uploaded", hooked)

	resolved, err := cache.Resolve(context.Background(), media)
	require.NoError(t, err)
	assert.Equal(t, "uploaded", resolved.FileID)
}

func TestRespondAnswersOnce(t *testing.T) {
	r, _ := newRenderer(t, &fakeAPI{})
	c := &fakeContext{callback: &telebot.Callback{ID: "q"}}

	require.NoError(t, r.Respond(c, "ok", false))
	require.NoError(t, r.Respond(c, "again", false))
	assert.Equal(t, 1, c.responses)

	require.NoError(t, r.Respond(&fakeContext{}, "no callback", false))
}

func TestContent(t *testing.T) {
	tests := []struct {
		name  string
		media domain.Media
		check func(t *testing.T, v interface{})
	}{
		{
			name: "text",
			check: func(t *testing.T, v interface{}) {
				assert.Equal(t, "caption", v)
			},
		},
		{
			name:  "video by id",
			media: domain.Media{Kind: domain.MediaVideo, FileID: "vid"},
			check: func(t *testing.T, v interface{}) {
				video, ok := v.(*telebot.Video)
				require.True(t, ok)
				assert.Equal(t, "vid", video.FileID)
			},
		},
		{
			name:  "gif by url",
			media: domain.Media{Kind: domain.MediaGIF, URL: "https://example.com/a.gif"},
			check: func(t *testing.T, v interface{}) {
				anim, ok := v.(*telebot.Animation)
				require.True(t, ok)
				assert.Equal(t, "https://example.com/a.gif", anim.FileURL)
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, Content(tc.media, "caption"))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(nil))

	blocked := Classify(&telebot.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"})
	assert.False(t, apperrors.IsRetryable(blocked))

	network := Classify(errors.New("connection reset"))
	assert.True(t, apperrors.IsRetryable(network))
}

func TestBotImplementsAPI(t *testing.T) {
	var api API = &telebot.Bot{}
	assert.NotNil(t, New(api, nil, nil))
}
