package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/dedup"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/dialogue"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/patients"
)

type fakeRepo struct {
	conv     *patients.Conversation
	getErr   error
	patchErr error

	gotPhone string
	gotText  string
	gotUnit  string
	patches  []patients.Patch
}

func (f *fakeRepo) Get(_ context.Context, phone, text, unit string) (*patients.Conversation, error) {
	f.gotPhone, f.gotText, f.gotUnit = phone, text, unit
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.conv != nil {
		return f.conv, nil
	}
	return patients.Default(phone, unit), nil
}

func (f *fakeRepo) Patch(_ context.Context, phone string, fields patients.Patch) error {
	f.gotPhone = phone
	f.patches = append(f.patches, fields)
	return f.patchErr
}

type fakeMessenger struct {
	err        error
	to         []string
	deliveries [][]dialogue.Message
}

func (f *fakeMessenger) Deliver(_ context.Context, to string, msgs []dialogue.Message) error {
	f.to = append(f.to, to)
	f.deliveries = append(f.deliveries, msgs)
	return f.err
}

func newTestHandler(t *testing.T, repo *fakeRepo, messenger *fakeMessenger) *Handler {
	t.Helper()
	resolver, err := NewUnitResolver(`{"23629360":"Ipiranga"}`, "SCS")
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	return NewHandler(Config{
		Engine:      dialogue.NewEngine(nil, nil),
		Repo:        repo,
		Messenger:   messenger,
		Resolver:    resolver,
		VerifyToken: "token_de_teste",
	})
}

func textPayload(msgID, from, body, display string) []byte {
	return []byte(fmt.Sprintf(`{
		"object": "whatsapp_business_account",
		"entry": [{"id": "1", "changes": [{"field": "messages", "value": {
			"messaging_product": "whatsapp",
			"metadata": {"display_phone_number": %q, "phone_number_id": "12345"},
			"messages": [{"from": %q, "id": %q, "timestamp": "1700000000", "type": "text", "text": {"body": %q}}]
		}}]}]
	}`, display, from, msgID, body))
}

func TestVerifyChallenge(t *testing.T) {
	h := newTestHandler(t, &fakeRepo{}, &fakeMessenger{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/whatsapp?hub.mode=subscribe&hub.verify_token=token_de_teste&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "12345" {
		t.Fatalf("verify = %d %q", rec.Code, rec.Body.String())
	}
}

func TestVerifyWrongTokenForbidden(t *testing.T) {
	h := newTestHandler(t, &fakeRepo{}, &fakeMessenger{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/whatsapp?hub.mode=subscribe&hub.verify_token=errado&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("verify with wrong token = %d, want 403", rec.Code)
	}
}

func TestReceiveRunsOneTurn(t *testing.T) {
	repo := &fakeRepo{}
	messenger := &fakeMessenger{}
	h := newTestHandler(t, repo, messenger)

	body := textPayload("wamid.1", "5511987654321", "Oi", "+55 11 2362-9360")
	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if repo.gotUnit != "Ipiranga" || repo.gotText != "Oi" {
		t.Fatalf("repo saw unit=%q text=%q", repo.gotUnit, repo.gotText)
	}
	if len(repo.patches) != 1 {
		t.Fatalf("want one patch, got %v", repo.patches)
	}
	if got := repo.patches[0][patients.FieldStatus]; got != string(dialogue.StatusAguardandoNomeNovo) {
		t.Fatalf("patched status = %q", got)
	}
	if len(messenger.deliveries) != 1 || messenger.to[0] != "5511987654321" {
		t.Fatalf("deliveries = %v to %v", messenger.deliveries, messenger.to)
	}
}

func TestReceiveReceiptOnlyAcknowledged(t *testing.T) {
	repo := &fakeRepo{}
	messenger := &fakeMessenger{}
	h := newTestHandler(t, repo, messenger)

	body := []byte(`{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{
		"messaging_product":"whatsapp",
		"metadata":{"display_phone_number":"+55 11 2362-9360","phone_number_id":"12345"},
		"statuses":[{"id":"wamid.1","status":"delivered","timestamp":"1700000000","recipient_id":"5511987654321"}]
	}}]}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(messenger.deliveries) != 0 || len(repo.patches) != 0 {
		t.Fatal("receipts must not drive the dialogue")
	}
}

func TestReceiveMalformedBodyStill200(t *testing.T) {
	h := newTestHandler(t, &fakeRepo{}, &fakeMessenger{})

	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestReceiveRejectsBadSignature(t *testing.T) {
	repo := &fakeRepo{}
	messenger := &fakeMessenger{}
	resolver, _ := NewUnitResolver("", "SCS")
	h := NewHandler(Config{
		Engine:      dialogue.NewEngine(nil, nil),
		Repo:        repo,
		Messenger:   messenger,
		Resolver:    resolver,
		VerifyToken: "token_de_teste",
		AppSecret:   "s3cret",
	})

	body := textPayload("wamid.1", "5511987654321", "Oi", "+55 11 4002-8922")
	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if len(messenger.deliveries) != 0 {
		t.Fatal("unauthenticated payload must not be processed")
	}

	// And the same payload with a valid signature goes through.
	req = httptest.NewRequest(http.MethodPost, "/api/whatsapp", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", signBody("s3cret", body))
	rec = httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusOK || len(messenger.deliveries) != 1 {
		t.Fatalf("signed payload: status = %d, deliveries = %d", rec.Code, len(messenger.deliveries))
	}
}

func TestReceiveRepoDownStillReplies(t *testing.T) {
	repo := &fakeRepo{getErr: errors.New("wix unreachable")}
	messenger := &fakeMessenger{}
	h := newTestHandler(t, repo, messenger)

	body := textPayload("wamid.1", "5511987654321", "Oi", "+55 11 2362-9360")
	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// The turn ran against a default triage record and the patient still got a reply.
	if len(messenger.deliveries) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(messenger.deliveries))
	}
}

func TestReceiveDeliveryFailureStill200(t *testing.T) {
	repo := &fakeRepo{}
	messenger := &fakeMessenger{err: errors.New("graph api 500")}
	h := newTestHandler(t, repo, messenger)

	body := textPayload("wamid.1", "5511987654321", "Oi", "+55 11 2362-9360")
	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestReceiveDuplicateDeliverySkipped(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &fakeRepo{}
	messenger := &fakeMessenger{}
	resolver, _ := NewUnitResolver("", "SCS")
	h := NewHandler(Config{
		Engine:      dialogue.NewEngine(nil, nil),
		Repo:        repo,
		Messenger:   messenger,
		Resolver:    resolver,
		Guard:       dedup.NewGuard(client, time.Minute),
		VerifyToken: "token_de_teste",
	})

	body := textPayload("wamid.dup", "5511987654321", "Oi", "+55 11 4002-8922")
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/whatsapp", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		h.Receive(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: status = %d", i, rec.Code)
		}
	}

	if len(messenger.deliveries) != 1 {
		t.Fatalf("redelivery must not run a second turn, deliveries = %d", len(messenger.deliveries))
	}
}
