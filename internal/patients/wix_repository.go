package patients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/pkg/logging"
)

// WixRepository talks to the clinic's Wix CMS webhook function. Both reads and
// writes go through the same HTTP function, discriminated by the "action" key.
type WixRepository struct {
	httpClient *http.Client
	url        string
	logger     *logging.Logger
}

// NewWixRepository builds the CMS client. timeout bounds every call; the
// webhook's own acknowledgement budget depends on it.
func NewWixRepository(url string, timeout time.Duration, logger *logging.Logger) *WixRepository {
	if url == "" {
		panic("patients: wix webhook url required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WixRepository{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		logger:     logger,
	}
}

type wixRequest struct {
	Action string            `json:"action"`
	From   string            `json:"from"`
	Text   string            `json:"text,omitempty"`
	Unit   string            `json:"unit,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Get implements Repository.
func (r *WixRepository) Get(ctx context.Context, phone, text, unit string) (*Conversation, error) {
	body, err := r.post(ctx, wixRequest{Action: "lookup", From: phone, Text: text, Unit: unit})
	if err != nil {
		return nil, err
	}

	conv := Default(phone, unit)
	if err := json.Unmarshal(body, conv); err != nil {
		return nil, fmt.Errorf("patients: decode record: %w", err)
	}
	if conv.Phone == "" {
		conv.Phone = phone
	}
	if conv.Unit == "" {
		conv.Unit = unit
	}
	if conv.Status == "" {
		conv.Status = "triagem"
	}
	return conv, nil
}

// Patch implements Repository.
func (r *WixRepository) Patch(ctx context.Context, phone string, fields Patch) error {
	if len(fields) == 0 {
		return nil
	}
	_, err := r.post(ctx, wixRequest{Action: "patch", From: phone, Fields: fields})
	return err
}

func (r *WixRepository) post(ctx context.Context, payload wixRequest) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("patients: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("patients: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("patients: cms call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("patients: cms status %d: %s", resp.StatusCode, snippet)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("patients: read response: %w", err)
	}
	return body, nil
}
