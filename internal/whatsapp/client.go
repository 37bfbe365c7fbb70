package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/dialogue"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/pkg/logging"
)

const defaultBaseURL = "https://graph.facebook.com"

// Sends must never risk the webhook acknowledgement window, so the artificial
// typing delay is clamped well under one second.
const maxTypingDelay = 900 * time.Millisecond

// ClientConfig captures the credentials and tuning for the Graph API sender.
type ClientConfig struct {
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	Token         string
	Timeout       time.Duration
	TypingDelay   time.Duration
}

// Client sends messages through the WhatsApp Cloud API. It implements
// dialogue.Messenger.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiVersion    string
	phoneNumberID string
	token         string
	typingDelay   time.Duration
	logger        *logging.Logger
}

// NewClient builds a Graph API client.
func NewClient(cfg ClientConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v19.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	delay := cfg.TypingDelay
	if delay < 0 {
		delay = 0
	}
	if delay > maxTypingDelay {
		delay = maxTypingDelay
	}
	return &Client{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		baseURL:       cfg.BaseURL,
		apiVersion:    cfg.APIVersion,
		phoneNumberID: cfg.PhoneNumberID,
		token:         cfg.Token,
		typingDelay:   delay,
		logger:        logger,
	}
}

// Configured reports whether the client has credentials to send anything.
func (c *Client) Configured() bool {
	return c != nil && c.token != "" && c.phoneNumberID != ""
}

// Deliver sends each message in order, pausing the typing delay between them.
// A failed send is logged and does not stop the remaining messages.
func (c *Client) Deliver(ctx context.Context, to string, msgs []dialogue.Message) error {
	if !c.Configured() {
		return errors.New("whatsapp: client not configured")
	}
	var errs []error
	for i, msg := range msgs {
		if i > 0 && c.typingDelay > 0 {
			select {
			case <-time.After(c.typingDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := c.send(ctx, buildSendRequest(to, msg)); err != nil {
			c.logger.Error("whatsapp send failed", "error", err, "to", to, "kind", int(msg.Kind))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Client) send(ctx context.Context, payload sendRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp: graph api status %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

func buildSendRequest(to string, msg dialogue.Message) sendRequest {
	req := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
	}
	switch msg.Kind {
	case dialogue.KindButtons:
		req.Type = "interactive"
		buttons := make([]interactiveButton, 0, len(msg.Buttons))
		for i, title := range msg.Buttons {
			if i >= dialogue.MaxButtons {
				break
			}
			buttons = append(buttons, interactiveButton{
				Type:  "reply",
				Reply: buttonReply{ID: fmt.Sprintf("btn_%d", i), Title: truncate(title, dialogue.MaxButtonTitleLen)},
			})
		}
		req.Interactive = &sendInteractive{
			Type:   "button",
			Body:   interactiveBody{Text: msg.Body},
			Action: &interactiveAction{Buttons: buttons},
		}
	case dialogue.KindList:
		req.Type = "interactive"
		sections := make([]listSection, 0, len(msg.Sections))
		for si, sec := range msg.Sections {
			rows := make([]listRow, 0, len(sec.Rows))
			for ri, title := range sec.Rows {
				rows = append(rows, listRow{
					ID:    fmt.Sprintf("row_%d_%d", si, ri),
					Title: truncate(title, dialogue.MaxListRowLen),
				})
			}
			sections = append(sections, listSection{Title: sec.Title, Rows: rows})
		}
		button := msg.ListButton
		if button == "" {
			button = "Ver opções"
		}
		req.Interactive = &sendInteractive{
			Type:   "list",
			Body:   interactiveBody{Text: msg.Body},
			Action: &interactiveAction{Button: button, Sections: sections},
		}
	default:
		req.Type = "text"
		req.Text = &sendText{Body: msg.Body}
	}
	return req
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
