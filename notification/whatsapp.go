package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Govind-619/Clomora/utils"
)

// DefaultWhatsAppAPIBase is the Graph API version the messages endpoint lives under.
const DefaultWhatsAppAPIBase = "https://graph.facebook.com/v19.0"

// WhatsApp sends text messages through the WhatsApp Cloud API.
type WhatsApp struct {
	client  *http.Client
	baseURL string
	phoneID string
	token   string
}

// NewWhatsApp creates a WhatsApp notifier. An empty baseURL uses DefaultWhatsAppAPIBase.
func NewWhatsApp(baseURL, phoneID, token string) *WhatsApp {
	if baseURL == "" {
		baseURL = DefaultWhatsAppAPIBase
	}
	return &WhatsApp{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		phoneID: phoneID,
		token:   token,
	}
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

// NotifyOrderPlaced sends the confirmation message to the order's phone.
func (w *WhatsApp) NotifyOrderPlaced(ctx context.Context, n OrderNotice) error {
	return w.Send(ctx, n.Phone, Message(n))
}

// Send posts a text message to phone.
func (w *WhatsApp) Send(ctx context.Context, phone, body string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("whatsapp: no phone number")
	}

	raw, err := json.Marshal(whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "text",
		Text:             whatsAppText{Body: body},
	})
	if err != nil {
		return fmt.Errorf("whatsapp: marshal: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", w.baseURL, w.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("whatsapp: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp: API returned HTTP %d: %s", resp.StatusCode, respBody)
	}
	utils.LogDebug("WhatsApp API Response: %s", respBody)
	return nil
}
