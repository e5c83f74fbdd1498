package services

import (
	"fmt"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"

	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/helpers"
)

// NotificationService drains the alert queue. Delivery is
// at-least-attempted: a message is only popped once a send succeeds.
type NotificationService struct {
	ctx *core.Context

	bot  *tb.Bot
	chat *tb.Chat
}

func NewNotificationService(ctx *core.Context) *NotificationService {
	return &NotificationService{ctx: ctx}
}

func (ns *NotificationService) Name() string {
	return "notify"
}

func (ns *NotificationService) Interval() time.Duration {
	return ns.ctx.Settings.NotifyInterval
}

func (ns *NotificationService) Init() error {
	if ns.ctx.Settings.TelegramOutput {
		bot, err := tb.NewBot(tb.Settings{
			Token:  ns.ctx.Settings.TelegramToken,
			Poller: &tb.LongPoller{Timeout: 10 * time.Second},
		})
		if err != nil {
			return err
		}
		chat, err := bot.ChatByID(ns.ctx.Settings.TelegramChatId)
		if err != nil {
			return err
		}
		ns.bot = bot
		ns.chat = chat
	}

	ns.ctx.Notify.Queue("Trade bot starting up")
	return nil
}

func (ns *NotificationService) Tick() {
	msg, ok := ns.ctx.Notify.Peek()
	if !ok {
		return
	}
	if ns.send(msg) {
		ns.ctx.Notify.Pop()
	}
}

func (ns *NotificationService) send(msg string) bool {
	if ns.bot == nil {
		// Delivery disabled; alerts land in the log only.
		helpers.Logger.Debugln(fmt.Sprintf("Notification: %s", msg))
		return true
	}
	if _, err := ns.bot.Send(ns.chat, msg); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to send notification: %v", err))
		return false
	}
	return true
}
