package webhook

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/dialogue"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/patients"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/transcript"
)

type takeoverRequest struct {
	Phone string `json:"phone"`
	Text  string `json:"text"`
}

// Takeover lets a staff member answer the patient directly. Sending a manual
// message parks the conversation in human takeover so the bot stops replying.
func (h *Handler) Takeover(w http.ResponseWriter, r *http.Request) {
	var req takeoverRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	req.Phone = strings.TrimSpace(req.Phone)
	req.Text = strings.TrimSpace(req.Text)
	if req.Phone == "" || req.Text == "" {
		http.Error(w, "phone and text are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := h.messenger.Deliver(ctx, req.Phone, []dialogue.Message{dialogue.Text(req.Text)}); err != nil {
		h.logger.Error("takeover delivery failed", "error", err, "phone", req.Phone)
		h.metrics.ObserveOutbound("error")
		http.Error(w, "delivery failed", http.StatusBadGateway)
		return
	}
	h.metrics.ObserveOutbound("sent")

	patch := patients.Patch{}.Set(patients.FieldStatus, string(dialogue.StatusAtendimentoHumano))
	if err := h.repo.Patch(ctx, req.Phone, patch); err != nil {
		// The message already went out; report success but flag the stale status.
		h.logger.Error("takeover status patch failed", "error", err, "phone", req.Phone)
		h.metrics.ObserveStoreError("wix")
	}

	if h.archive != nil {
		if err := h.archive.Append(ctx, transcript.Entry{
			Phone:     req.Phone,
			Unit:      h.resolver.Resolve(""),
			Direction: transcript.DirectionOutbound,
			Body:      req.Text,
			Status:    "manual",
		}); err != nil {
			h.logger.Error("transcript append failed", "error", err, "phone", req.Phone)
			h.metrics.ObserveStoreError("postgres")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "sent", "phone": req.Phone})
}
