package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/pabot/internal/mail"
	"github.com/deusflow/pabot/internal/news"
	"github.com/deusflow/pabot/internal/session"
)

const (
	ownerID = int64(5)
	chatID  = int64(100)
)

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	answers  map[string]string
	commands []tgbotapi.BotCommand
}

func (f *fakeMessenger) Send(_ context.Context, msg tgbotapi.Chattable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg.(tgbotapi.MessageConfig))
	return nil
}

func (f *fakeMessenger) AnswerCallback(id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.answers == nil {
		f.answers = map[string]string{}
	}
	f.answers[id] = text
	return nil
}

func (f *fakeMessenger) SetCommands(commands ...tgbotapi.BotCommand) error {
	f.commands = commands
	return nil
}

func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

type delivery struct {
	chatID int64
	text   string
}

type fakeDeliverer struct {
	mu   sync.Mutex
	sent []delivery
}

func (f *fakeDeliverer) Deliver(_ context.Context, chatID int64, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, delivery{chatID, text})
}

type fakeDigests struct {
	mu      sync.Mutex
	runs    []string
	windows []time.Duration
}

func (f *fakeDigests) RunCategoryDigest(_ context.Context, c news.Category, window time.Duration) news.Digest {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, c.ID)
	f.windows = append(f.windows, window)
	return news.Digest{Category: c.ID, Body: "digest for " + c.ID, RunID: "run-1"}
}

type fakeMailbox struct {
	ids  []string
	msgs map[string]mail.Message
	err  error
}

func (f *fakeMailbox) ListIDs(context.Context, string, int64) ([]string, error) {
	return f.ids, f.err
}

func (f *fakeMailbox) Get(_ context.Context, id string) (mail.Message, error) {
	return f.msgs[id], nil
}

type fakeTable struct {
	rows     [][]string
	appended [][]string
	err      error
}

func (f *fakeTable) ReadAll(context.Context) ([][]string, error) { return f.rows, f.err }

func (f *fakeTable) AppendRow(_ context.Context, values []string) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, values)
	return nil
}

type harness struct {
	d       *Dispatcher
	msgr    *fakeMessenger
	deliver *fakeDeliverer
	digests *fakeDigests
	session *session.Session
}

func newHarness(t *testing.T, mutate func(*Deps)) *harness {
	t.Helper()
	h := &harness{
		msgr:    &fakeMessenger{},
		deliver: &fakeDeliverer{},
		digests: &fakeDigests{},
		session: session.New(0),
	}
	deps := Deps{
		Messenger: h.msgr,
		Deliverer: h.deliver,
		Digests:   h.digests,
		Catalog: news.NewCatalog([]news.Category{
			{ID: "ai_news", Label: "ШІ новини", Sources: []news.Source{{URL: "https://ai.example"}}},
			{ID: "empty_news", Label: "Порожньо"},
		}),
		Session:       h.session,
		AllowedUserID: ownerID,
		Window:        24 * time.Hour,
		Now:           func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	if mutate != nil {
		mutate(&deps)
	}
	h.d = NewDispatcher(deps)
	return h
}

func message(from int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{Message: msg}
}

func callback(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func TestAccessGate(t *testing.T) {
	h := newHarness(t, nil)

	h.d.HandleUpdate(context.Background(), message(42, "/news"))
	h.d.HandleUpdate(context.Background(), callback(42, "news:ai_news"))

	assert.Equal(t, []string{msgAccessDenied}, h.msgr.texts())
	assert.Equal(t, msgNoAccess, h.msgr.answers["cb-news:ai_news"])
	assert.Empty(t, h.digests.runs)
	_, ok := h.session.Target()
	assert.False(t, ok, "denied users do not become the notification target")
}

func TestStartSetsTargetAndShowsKeyboard(t *testing.T) {
	h := newHarness(t, nil)

	h.d.HandleUpdate(context.Background(), message(ownerID, "/start"))

	require.Len(t, h.msgr.sent, 1)
	assert.Equal(t, msgWelcome, h.msgr.sent[0].Text)
	kb, ok := h.msgr.sent[0].ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, kb.ResizeKeyboard)
	assert.Equal(t, ButtonMail, kb.Keyboard[0][0].Text)
	assert.Equal(t, ButtonNotes, kb.Keyboard[0][1].Text)

	id, ok := h.session.Target()
	assert.True(t, ok)
	assert.Equal(t, chatID, id)
}

func TestNewsMenuListsCategories(t *testing.T) {
	h := newHarness(t, nil)

	h.d.HandleUpdate(context.Background(), message(ownerID, "/news"))

	require.Len(t, h.msgr.sent, 1)
	kb, ok := h.msgr.sent[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "ШІ новини", kb.InlineKeyboard[0][0].Text)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "news:ai_news", *kb.InlineKeyboard[0][0].CallbackData)
}

func TestNewsCategoryRunsDigest(t *testing.T) {
	h := newHarness(t, nil)

	h.d.HandleUpdate(context.Background(), callback(ownerID, "news:ai_news"))

	assert.Equal(t, "Збираю ШІ новини...", h.msgr.answers["cb-news:ai_news"])
	assert.Equal(t, []string{"ai_news"}, h.digests.runs)
	assert.Equal(t, []time.Duration{24 * time.Hour}, h.digests.windows)
	assert.Equal(t, []delivery{{chatID, "digest for ai_news"}}, h.deliver.sent)
}

func TestNewsCategoryWithoutSources(t *testing.T) {
	h := newHarness(t, nil)

	h.d.HandleUpdate(context.Background(), callback(ownerID, "news:empty_news"))
	h.d.HandleUpdate(context.Background(), callback(ownerID, "news:missing"))

	assert.Equal(t, []string{msgNoSources}, h.msgr.texts())
	assert.Equal(t, msgUnknownCat, h.msgr.answers["cb-news:missing"])
	assert.Empty(t, h.digests.runs)
}

func TestMailCallbacks(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		h := newHarness(t, nil)
		h.d.HandleUpdate(context.Background(), callback(ownerID, CallbackMailUnread))
		assert.Equal(t, []string{msgGmailFailed}, h.msgr.texts())
	})

	t.Run("not authorized", func(t *testing.T) {
		h := newHarness(t, func(d *Deps) { d.Mailbox = &fakeMailbox{err: mail.ErrNotAuthorized} })
		h.d.HandleUpdate(context.Background(), callback(ownerID, CallbackMailUnread))
		assert.Equal(t, []string{msgGmailFailed}, h.msgr.texts())
	})

	t.Run("nothing found", func(t *testing.T) {
		h := newHarness(t, func(d *Deps) { d.Mailbox = &fakeMailbox{} })
		h.d.HandleUpdate(context.Background(), callback(ownerID, CallbackMailLast))
		assert.Equal(t, []string{msgNoMail}, h.msgr.texts())
	})

	t.Run("lists messages", func(t *testing.T) {
		mb := &fakeMailbox{ids: []string{"a"}, msgs: map[string]mail.Message{"a": {Subject: "Hi", From: "x@example.com"}}}
		h := newHarness(t, func(d *Deps) { d.Mailbox = mb })
		h.d.HandleUpdate(context.Background(), callback(ownerID, CallbackMailUnread))
		require.Len(t, h.deliver.sent, 1)
		assert.Contains(t, h.deliver.sent[0].text, "• Hi\nВід: x@example.com")
	})
}

func TestMailButtonOpensMenu(t *testing.T) {
	h := newHarness(t, nil)

	h.d.HandleUpdate(context.Background(), message(ownerID, ButtonMail))

	require.Len(t, h.msgr.sent, 1)
	kb, ok := h.msgr.sent[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, CallbackMailUnread, *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, CallbackMailLast, *kb.InlineKeyboard[1][0].CallbackData)
}

func TestListAdd(t *testing.T) {
	table := &fakeTable{}
	h := newHarness(t, func(d *Deps) { d.Table = table })

	h.d.HandleUpdate(context.Background(), message(ownerID, "/list_add"))
	h.d.HandleUpdate(context.Background(), message(ownerID, "/list_add молоко x2"))

	assert.Equal(t, []string{msgListAddUsage, "Додано в список: молоко x2"}, h.msgr.texts())
	assert.Equal(t, [][]string{{"молоко x2", "2024-01-02T03:04:05.000000"}}, table.appended)
	assert.Equal(t, 1, h.msgr.sent[1].ReplyToMessageID)
}

func TestListAddFailure(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.Table = &fakeTable{err: errors.New("forbidden")} })

	h.d.HandleUpdate(context.Background(), message(ownerID, "/list_add tea"))

	assert.Equal(t, []string{msgListAddFailed}, h.msgr.texts())
}

func TestNotesCallbacks(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.Table = &fakeTable{rows: [][]string{{"milk"}, {"tea"}}} })

	h.d.HandleUpdate(context.Background(), callback(ownerID, CallbackNotesShow))
	h.d.HandleUpdate(context.Background(), callback(ownerID, CallbackNotesAdd))

	assert.Equal(t, []delivery{{chatID, "1. milk\n2. tea"}}, h.deliver.sent)
	assert.Equal(t, []string{msgNotesAddHint}, h.msgr.texts())
}

func TestRunHandlesAllUpdates(t *testing.T) {
	h := newHarness(t, nil)
	updates := make(chan tgbotapi.Update, 3)
	updates <- callback(ownerID, "news:ai_news")
	updates <- message(ownerID, "/news")
	updates <- message(ownerID, "hello there")
	close(updates)

	require.NoError(t, h.d.Run(context.Background(), updates))

	assert.Len(t, h.digests.runs, 1)
	assert.Len(t, h.msgr.texts(), 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, h.d.Run(ctx, make(chan tgbotapi.Update)))
}

func TestRegisterCommands(t *testing.T) {
	h := newHarness(t, nil)

	h.d.RegisterCommands()

	assert.Equal(t, Commands, h.msgr.commands)
}

func TestNotifier(t *testing.T) {
	s := session.New(0)
	d := &fakeDeliverer{}
	n := NewNotifier(s, d)

	assert.ErrorIs(t, n.Notify(context.Background(), "hi"), ErrNoTarget)

	s.SetTarget(chatID)
	require.NoError(t, n.Notify(context.Background(), "hi"))
	assert.Equal(t, []delivery{{chatID, "hi"}}, d.sent)
}
