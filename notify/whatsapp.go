package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
)

var ErrEmptyMessage = errors.New("empty message")

// Message is one text addressed to the shop about an order.
type Message struct {
	OrderID  string
	Text     string
	Reminder bool
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// WhatsAppSender builds click-to-chat links for the shop's number.
type WhatsAppSender struct {
	phone  string
	logger *log.Logger
}

func NewWhatsAppSender(phone string, logger *log.Logger) *WhatsAppSender {
	if logger == nil {
		logger = log.Default()
	}
	return &WhatsAppSender{phone: phone, logger: logger}
}

// Link returns the wa.me URL that opens a chat prefilled with text.
func (w *WhatsAppSender) Link(text string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", w.phone, escaped)
}

func (w *WhatsAppSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.Text) == "" {
		return ErrEmptyMessage
	}

	kind := "new order"
	if msg.Reminder {
		kind = "pending reminder"
	}
	w.logger.Printf("WhatsApp %s for order %s: %s", kind, msg.OrderID, w.Link(msg.Text))
	return nil
}
