package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"
)

// mailSender is satisfied by *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Email sends an HTML order confirmation over SMTP.
type Email struct {
	sender mailSender
	from   string
	brand  string
}

// NewEmail creates an SMTP notifier.
func NewEmail(host string, port int, username, password, from, brand string) *Email {
	return &Email{
		sender: gomail.NewDialer(host, port, username, password),
		from:   from,
		brand:  brand,
	}
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`
		<h2>Thank you for shopping with {{.Brand}}!</h2>
		<p>Hi {{.Name}}, your order has been placed successfully.</p>
		<p><strong>Order ID:</strong> {{.OrderID}}</p>
		<p><strong>Amount:</strong> ₹{{.Total}}</p>
		<p>We will notify you once it ships.</p>
`))

// NotifyOrderPlaced emails the customer. Orders without an email are skipped.
func (e *Email) NotifyOrderPlaced(_ context.Context, n OrderNotice) error {
	to := strings.TrimSpace(n.Email)
	if to == "" {
		return nil
	}

	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, map[string]string{
		"Brand":   e.brand,
		"Name":    n.Name,
		"OrderID": n.OrderID,
		"Total":   n.Total.StringFixed(2),
	}); err != nil {
		return fmt.Errorf("email: render: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Your %s order %s is confirmed", e.brand, n.OrderID))
	m.SetBody("text/html", body.String())

	if err := e.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
