// Package bot routes Telegram commands, buttons and callbacks to the news, mail and
// notes features.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/mail"
	"github.com/deusflow/pabot/internal/news"
	"github.com/deusflow/pabot/internal/session"
	"github.com/deusflow/pabot/internal/sheets"
)

const (
	msgAccessDenied   = "Вибачте, у вас немає доступу до цього бота."
	msgNoAccess       = "Немає доступу"
	msgWelcome        = "Привіт! Доступні команди: /news — меню новин, /mail — перегляд пошти."
	msgChooseCategory = "Оберіть категорію новин:"
	msgNoCategories   = "Категорії новин не налаштовані."
	msgNoSources      = "Немає джерел для цієї категорії."
	msgUnknownCat     = "Невідома категорія."
	msgChooseMail     = "Оберіть режим перегляду пошти:"
	msgNoGmail        = "Немає підключення до Gmail"
	msgGmailFailed    = "Неможливо підключитися до Gmail API. Перевірте credentials.json."
	msgNoMail         = "Листів не знайдено за вибраним фільтром."
	msgChooseNotes    = "Нотатки: оберіть дію"
	msgNotesAddHint   = "Надішліть позицію у форматі: /list_add назва [x кількість]"
	msgListAddUsage   = "Формат: /list_add продукт [x кількість]"
	msgListAddFailed  = "Не вдалося додати до списку (перевірте доступи до таблиці)."
	msgNoSheet        = "Список не налаштовано."
)

// DigestRunner runs the news pipeline for one category.
type DigestRunner interface {
	RunCategoryDigest(ctx context.Context, category news.Category, window time.Duration) news.Digest
}

// Deliverer sends arbitrarily long text to a chat.
type Deliverer interface {
	Deliver(ctx context.Context, chatID int64, text string)
}

// Messenger sends keyboards and answers callbacks. *telegram.Client implements it.
type Messenger interface {
	Send(ctx context.Context, msg tgbotapi.Chattable) error
	AnswerCallback(callbackID, text string) error
	SetCommands(commands ...tgbotapi.BotCommand) error
}

// Deps are the collaborators of a Dispatcher. Mailbox and Table may be nil when
// the feature is not configured.
type Deps struct {
	Messenger     Messenger
	Deliverer     Deliverer
	Digests       DigestRunner
	Catalog       *news.Catalog
	Mailbox       mail.Mailbox
	Table         sheets.Table
	Session       *session.Session
	AllowedUserID int64 // 0 = everyone
	Window        time.Duration
	Now           func() time.Time
}

// Dispatcher handles incoming updates.
type Dispatcher struct {
	Deps
	handlers int
}

func NewDispatcher(deps Deps) *Dispatcher {
	if deps.Session == nil {
		deps.Session = session.New(deps.AllowedUserID)
	}
	if deps.Window <= 0 {
		deps.Window = 24 * time.Hour
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Catalog == nil {
		deps.Catalog = news.NewCatalog(nil)
	}
	return &Dispatcher{Deps: deps, handlers: 4}
}

// RegisterCommands publishes the command menu. Failure is logged only.
func (d *Dispatcher) RegisterCommands() {
	if err := d.Messenger.SetCommands(Commands...); err != nil {
		logger.Warn("Failed to register bot commands", "err", err)
	}
}

// Run handles updates until ctx is cancelled or the channel closes. At most four
// updates are processed at once; a slow digest does not block other commands.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.handlers)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case update, ok := <-updates:
			if !ok {
				break loop
			}
			g.Go(func() error {
				d.safeHandle(gctx, update)
				return nil
			})
		}
	}

	return g.Wait()
}

func (d *Dispatcher) safeHandle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Update handler panicked", "update_id", update.UpdateID, "panic", r)
		}
	}()
	d.HandleUpdate(ctx, update)
}

// HandleUpdate processes one update synchronously.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		d.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		d.handleMessage(ctx, update.Message)
	}
}

func (d *Dispatcher) allowed(user *tgbotapi.User) bool {
	return d.AllowedUserID == 0 || (user != nil && user.ID == d.AllowedUserID)
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	var handler func(context.Context, *tgbotapi.Message)
	switch {
	case msg.IsCommand():
		switch msg.Command() {
		case "start":
			handler = d.handleStart
		case "news":
			handler = d.handleNews
		case "mail":
			handler = d.handleMailMenu
		case "list_add":
			handler = d.handleListAdd
		}
	case msg.Text == ButtonMail:
		handler = d.handleMailMenu
	case msg.Text == ButtonNotes:
		handler = d.handleNotesMenu
	}
	if handler == nil {
		return
	}

	if !d.allowed(msg.From) {
		logger.Warn("Access denied", "user_id", userID(msg.From), "text", msg.Text)
		d.reply(ctx, msg, msgAccessDenied, nil)
		return
	}
	d.Session.SetTarget(msg.Chat.ID)
	handler(ctx, msg)
}

func (d *Dispatcher) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	d.reply(ctx, msg, msgWelcome, mainKeyboard())
}

func (d *Dispatcher) handleNews(ctx context.Context, msg *tgbotapi.Message) {
	categories := d.Catalog.All()
	if len(categories) == 0 {
		d.send(ctx, msg.Chat.ID, msgNoCategories, nil)
		return
	}
	d.send(ctx, msg.Chat.ID, msgChooseCategory, newsKeyboard(categories))
}

func (d *Dispatcher) handleMailMenu(ctx context.Context, msg *tgbotapi.Message) {
	d.send(ctx, msg.Chat.ID, msgChooseMail, mailKeyboard())
}

func (d *Dispatcher) handleNotesMenu(ctx context.Context, msg *tgbotapi.Message) {
	d.send(ctx, msg.Chat.ID, msgChooseNotes, notesKeyboard())
}

func (d *Dispatcher) handleListAdd(ctx context.Context, msg *tgbotapi.Message) {
	item := strings.TrimSpace(msg.CommandArguments())
	if item == "" {
		d.reply(ctx, msg, msgListAddUsage, nil)
		return
	}
	if d.Table == nil {
		d.reply(ctx, msg, msgNoSheet, nil)
		return
	}

	row := []string{item, d.Now().UTC().Format("2006-01-02T15:04:05.000000")}
	if err := d.Table.AppendRow(ctx, row); err != nil {
		logger.Error("Failed to append list item", "err", err)
		d.reply(ctx, msg, msgListAddFailed, nil)
		return
	}
	d.reply(ctx, msg, "Додано в список: "+item, nil)
}

func (d *Dispatcher) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if !d.allowed(cb.From) {
		logger.Warn("Callback access denied", "user_id", userID(cb.From), "data", cb.Data)
		d.answer(cb.ID, msgNoAccess)
		return
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		d.answer(cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID
	d.Session.SetTarget(chatID)

	switch {
	case strings.HasPrefix(cb.Data, newsCallbackPrefix):
		d.handleNewsCategory(ctx, cb, chatID, strings.TrimPrefix(cb.Data, newsCallbackPrefix))
	case cb.Data == CallbackMailUnread:
		d.handleMailQuery(ctx, cb, chatID, mail.QueryUnread12h)
	case cb.Data == CallbackMailLast:
		d.handleMailQuery(ctx, cb, chatID, mail.QueryInbox12h)
	case cb.Data == CallbackNotesShow:
		d.answer(cb.ID, "")
		d.showNotes(ctx, chatID)
	case cb.Data == CallbackNotesAdd:
		d.answer(cb.ID, "")
		d.send(ctx, chatID, msgNotesAddHint, nil)
	default:
		d.answer(cb.ID, "")
	}
}

func (d *Dispatcher) handleNewsCategory(ctx context.Context, cb *tgbotapi.CallbackQuery, chatID int64, id string) {
	category, ok := d.Catalog.Get(id)
	if !ok {
		d.answer(cb.ID, msgUnknownCat)
		return
	}
	d.answer(cb.ID, fmt.Sprintf("Збираю %s...", category.Label))

	if len(category.Sources) == 0 {
		d.send(ctx, chatID, msgNoSources, nil)
		return
	}

	logger.Info("News requested", "category", category.ID, "chat_id", chatID)
	digest := d.Digests.RunCategoryDigest(ctx, category, d.Window)
	d.Deliverer.Deliver(ctx, chatID, digest.Body)
	logger.Info("News delivered", "category", category.ID, "run_id", digest.RunID, "articles", digest.Articles)
}

func (d *Dispatcher) handleMailQuery(ctx context.Context, cb *tgbotapi.CallbackQuery, chatID int64, query string) {
	if d.Mailbox == nil {
		d.answer(cb.ID, msgNoGmail)
		d.send(ctx, chatID, msgGmailFailed, nil)
		return
	}

	msgs, err := mail.Fetch(ctx, d.Mailbox, query, mail.MaxListed)
	if err != nil {
		logger.Error("Mail query failed", "query", query, "err", err)
		d.answer(cb.ID, msgNoGmail)
		if errors.Is(err, mail.ErrNotAuthorized) {
			d.send(ctx, chatID, msgGmailFailed, nil)
		} else {
			d.send(ctx, chatID, msgNoMail, nil)
		}
		return
	}
	d.answer(cb.ID, "")

	if len(msgs) == 0 {
		d.send(ctx, chatID, msgNoMail, nil)
		return
	}
	d.Deliverer.Deliver(ctx, chatID, mail.FormatList(msgs))
}

func (d *Dispatcher) showNotes(ctx context.Context, chatID int64) {
	if d.Table == nil {
		d.send(ctx, chatID, msgNoSheet, nil)
		return
	}
	rows, err := d.Table.ReadAll(ctx)
	if err != nil {
		logger.Error("Failed to read list", "err", err)
		d.send(ctx, chatID, msgNoSheet, nil)
		return
	}
	d.Deliverer.Deliver(ctx, chatID, sheets.FormatList(rows))
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if err := d.Messenger.Send(ctx, msg); err != nil {
		logger.Error("Failed to send message", "chat_id", chatID, "err", err)
	}
}

func (d *Dispatcher) reply(ctx context.Context, to *tgbotapi.Message, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(to.Chat.ID, text)
	msg.ReplyToMessageID = to.MessageID
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if err := d.Messenger.Send(ctx, msg); err != nil {
		logger.Error("Failed to send reply", "chat_id", to.Chat.ID, "err", err)
	}
}

func (d *Dispatcher) answer(callbackID, text string) {
	if err := d.Messenger.AnswerCallback(callbackID, text); err != nil {
		logger.Warn("Failed to answer callback", "err", err)
	}
}

func userID(u *tgbotapi.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
