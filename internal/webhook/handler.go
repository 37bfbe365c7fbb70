// Package webhook is the HTTP surface of the intake bot: Meta's verification
// handshake, the inbound message webhook and the staff takeover endpoint. The
// inbound handler always answers 200 once the payload is authenticated, since
// any other status makes Meta re-deliver the same message in a retry storm.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/dedup"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/dialogue"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/observability/metrics"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/patients"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/transcript"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/whatsapp"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/pkg/logging"
)

const maxBodyBytes = 1 << 20

// Handler serves the Meta webhook endpoints.
type Handler struct {
	logger      *logging.Logger
	engine      *dialogue.Engine
	repo        patients.Repository
	messenger   dialogue.Messenger
	resolver    *UnitResolver
	guard       *dedup.Guard
	archive     *transcript.Store
	metrics     *metrics.WebhookMetrics
	verifyToken string
	appSecret   string
	tracer      trace.Tracer
}

// Config wires the handler. Engine, Repo and Messenger are required; Guard,
// Archive and Metrics may be nil.
type Config struct {
	Logger      *logging.Logger
	Engine      *dialogue.Engine
	Repo        patients.Repository
	Messenger   dialogue.Messenger
	Resolver    *UnitResolver
	Guard       *dedup.Guard
	Archive     *transcript.Store
	Metrics     *metrics.WebhookMetrics
	VerifyToken string
	AppSecret   string
}

func NewHandler(cfg Config) *Handler {
	if cfg.Engine == nil {
		panic("webhook: engine required")
	}
	if cfg.Repo == nil {
		panic("webhook: patient repository required")
	}
	if cfg.Messenger == nil {
		panic("webhook: messenger required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		logger:      logger,
		engine:      cfg.Engine,
		repo:        cfg.Repo,
		messenger:   cfg.Messenger,
		resolver:    cfg.Resolver,
		guard:       cfg.Guard,
		archive:     cfg.Archive,
		metrics:     cfg.Metrics,
		verifyToken: cfg.VerifyToken,
		appSecret:   cfg.AppSecret,
		tracer:      otel.Tracer("conectifisio.internal.webhook"),
	}
}

// Verify answers Meta's GET subscription handshake.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, challenge)
		return
	}
	h.logger.Warn("webhook verification rejected", "mode", mode)
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// Receive handles POST webhook deliveries. After authentication it commits to
// a 200 no matter what happens downstream; failures degrade per component.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Signature check only when an app secret is configured; local setups run
	// without one.
	if h.appSecret != "" && !ValidSignature(h.appSecret, body, r.Header.Get("X-Hub-Signature-256")) {
		h.logger.Warn("webhook signature rejected", "remote_ip", r.RemoteAddr)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook handler panicked", "panic", rec)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "EVENT_RECEIVED")
	}()

	var payload whatsapp.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("webhook payload undecodable", "error", err)
		return
	}

	msg, meta, ok := payload.FirstMessage()
	if !ok {
		// Delivery/read receipts, nothing to do.
		return
	}

	h.process(r, msg, meta)
}

// process runs one conversation turn for an inbound message.
func (h *Handler) process(r *http.Request, msg whatsapp.Message, meta whatsapp.Metadata) {
	ctx, span := h.tracer.Start(r.Context(), "webhook.process")
	defer span.End()
	start := time.Now()

	span.SetAttributes(
		attribute.String("webhook.message_type", msg.Type),
		attribute.String("webhook.phone_number_id", meta.PhoneNumberID),
	)

	if !h.guard.FirstDelivery(ctx, msg.ID) {
		h.logger.Info("duplicate delivery skipped", "message_id", msg.ID)
		h.metrics.ObserveInbound(msg.Type, "duplicate")
		return
	}

	unit := h.resolver.Resolve(meta.DisplayPhoneNumber)
	label := msg.Label()

	conv, err := h.repo.Get(ctx, msg.From, label, unit)
	if err != nil {
		// The CMS being down must not silence the bot; run the turn against a
		// fresh triage record.
		h.logger.Error("patient record lookup failed", "error", err, "phone", msg.From)
		h.metrics.ObserveStoreError("wix")
		span.RecordError(err)
		conv = patients.Default(msg.From, unit)
	}

	res := h.engine.Handle(ctx, conv, dialogue.Input{Label: label, IsImage: msg.IsImage()})
	h.metrics.ObserveInbound(msg.Type, conv.Status)

	if len(res.Patch) > 0 {
		if err := h.repo.Patch(ctx, msg.From, res.Patch); err != nil {
			h.logger.Error("patient record patch failed", "error", err, "phone", msg.From)
			h.metrics.ObserveStoreError("wix")
			span.RecordError(err)
		}
	}

	h.archiveTurn(ctx, msg.From, unit, label, res.Messages)

	if len(res.Messages) > 0 {
		if err := h.messenger.Deliver(ctx, msg.From, res.Messages); err != nil {
			h.logger.Error("outbound delivery failed", "error", err, "phone", msg.From)
			h.metrics.ObserveOutbound("error")
			span.RecordError(err)
		} else {
			h.metrics.ObserveOutbound("sent")
		}
	}

	h.metrics.ObserveWebhookLatency(msg.Type, time.Since(start).Seconds())
}

// archiveTurn writes the inbound message and every outbound reply to the
// transcript archive. Failures are logged and counted, never surfaced.
func (h *Handler) archiveTurn(ctx context.Context, phone, unit, inbound string, outbound []dialogue.Message) {
	if h.archive == nil {
		return
	}
	entries := []transcript.Entry{{
		Phone:     phone,
		Unit:      unit,
		Direction: transcript.DirectionInbound,
		Body:      inbound,
		Status:    "received",
	}}
	for _, msg := range outbound {
		entries = append(entries, transcript.Entry{
			Phone:     phone,
			Unit:      unit,
			Direction: transcript.DirectionOutbound,
			Body:      msg.Body,
			Status:    "sent",
		})
	}
	for _, e := range entries {
		if err := h.archive.Append(ctx, e); err != nil {
			h.logger.Error("transcript append failed", "error", err, "phone", phone)
			h.metrics.ObserveStoreError("postgres")
		}
	}
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}
