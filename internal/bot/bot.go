// Package bot is the chat front-end: it maps telegram updates onto ledger
// and billing operations and renders replies as text plus inline menus.
package bot

import (
	"context"
	"net/http"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	billingdomain "github.com/kvartplata/kvartplata/internal/billing/domain"
	"github.com/kvartplata/kvartplata/internal/config"
	readingdomain "github.com/kvartplata/kvartplata/internal/meterreading/domain"
	residentdomain "github.com/kvartplata/kvartplata/internal/resident/domain"
	sessiondomain "github.com/kvartplata/kvartplata/internal/session/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	pollTimeoutSeconds = 30
	downloadTimeout    = 30 * time.Second
)

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	ResidentSvc residentdomain.Service
	BillingSvc  billingdomain.Service
	ReadingSvc  readingdomain.Service
	SessionSvc  sessiondomain.Service
}

// sender is the slice of the telegram client the handlers talk to.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	cfg         config.Config
	log         *zap.Logger
	api         *tgbotapi.BotAPI
	out         sender
	residentSvc residentdomain.Service
	billingSvc  billingdomain.Service
	readingSvc  readingdomain.Service
	sessionSvc  sessiondomain.Service
	states      *fsm
	files       *http.Client
	done        chan struct{}
}

func New(p Params) *Bot {
	return &Bot{
		cfg:         p.Cfg,
		log:         p.Log.Named("bot"),
		residentSvc: p.ResidentSvc,
		billingSvc:  p.BillingSvc,
		readingSvc:  p.ReadingSvc,
		sessionSvc:  p.SessionSvc,
		states:      newFSM(),
		files:       &http.Client{Timeout: downloadTimeout},
		done:        make(chan struct{}),
	}
}

func register(lc fx.Lifecycle, b *Bot) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			if b.cfg.BotToken == "" {
				b.log.Warn("BOT_TOKEN is empty, telegram front-end disabled")
				close(b.done)
				return nil
			}
			if err := os.MkdirAll(b.cfg.MediaRoot, 0o755); err != nil {
				return err
			}

			api, err := tgbotapi.NewBotAPI(b.cfg.BotToken)
			if err != nil {
				return err
			}
			b.api = api
			b.out = api
			b.log.Info("telegram bot authorized", zap.String("username", api.Self.UserName))

			go b.poll()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = ctx
			if b.api != nil {
				b.api.StopReceivingUpdates()
			}
			<-b.done
			return nil
		},
	})
}

var Module = fx.Module("bot",
	fx.Provide(New),
	fx.Invoke(register),
)

func (b *Bot) poll() {
	defer close(b.done)

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = pollTimeoutSeconds

	for update := range b.api.GetUpdatesChan(updateCfg) {
		b.handleUpdate(update)
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic while handling update", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.out.Send(msg); err != nil {
		b.log.Error("failed to send message", zap.Error(err))
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.out.Send(msg); err != nil {
		b.log.Error("failed to send message", zap.Error(err))
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.out.Send(msg); err != nil {
		b.log.Error("failed to edit message", zap.Error(err))
	}
}

func (b *Bot) ackCallback(id string) {
	if _, err := b.out.Request(tgbotapi.NewCallback(id, "")); err != nil {
		b.log.Error("failed to ack callback", zap.Error(err))
	}
}
