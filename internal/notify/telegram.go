// Package notify delivers out-of-band messages: one-time codes to
// users and operational alerts to the admin Telegram chat.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Notifier sends admin alerts and one-time codes. The Telegram bot is
// optional: without a token everything degrades to log output, which
// keeps local development and tests working with no external setup.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// New builds a Notifier. An empty token disables Telegram delivery.
func New(token string, adminChatID int64) (*Notifier, error) {
	if token == "" {
		log.Warn("Telegram token is empty, admin alerts go to the log only")
		return &Notifier{}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	log.WithField("bot", bot.Self.UserName).Info("Telegram notifier ready")
	return &Notifier{bot: bot, chatID: adminChatID}, nil
}

// NotifyAdmin pushes a message to the admin chat.
func (n *Notifier) NotifyAdmin(ctx context.Context, text string) error {
	if n.bot == nil || n.chatID == 0 {
		log.WithField("text", text).Info("admin alert")
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send admin alert: %w", err)
	}
	return nil
}

// SendOTP delivers a one-time code to the user's contact channels.
// Email and SMS gateways are not wired yet; the code lands in the log
// so operators can relay it manually.
// TODO: integrate Africa's Talking for SMS delivery.
func (n *Notifier) SendOTP(ctx context.Context, email, phone, code string) error {
	log.WithFields(log.Fields{
		"email": email,
		"phone": phone,
	}).Infof("OTP issued: %s", code)
	return nil
}
