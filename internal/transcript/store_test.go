package transcript

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func TestAppendInsertsRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &Store{pool: mock}
	mock.ExpectExec("INSERT INTO transcript_messages").
		WithArgs(pgxmock.AnyArg(), "5511987654321", "Ipiranga", DirectionInbound, "dor no ombro", "received", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.Append(context.Background(), Entry{
		Phone:     "5511987654321",
		Unit:      "Ipiranga",
		Direction: DirectionInbound,
		Body:      "dor no ombro",
		Status:    "received",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendKeepsCallerIDAndTimestamp(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &Store{pool: mock}
	id := uuid.New()
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO transcript_messages").
		WithArgs(id, "5511987654321", "SCS", DirectionOutbound, "Qual o seu e-mail?", "sent", at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.Append(context.Background(), Entry{
		ID:        id,
		Phone:     "5511987654321",
		Unit:      "SCS",
		Direction: DirectionOutbound,
		Body:      "Qual o seu e-mail?",
		Status:    "sent",
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestRecentScansRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &Store{pool: mock}
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "phone", "unit", "direction", "body", "status", "created_at"}).
		AddRow(uuid.New(), "5511987654321", "Ipiranga", DirectionOutbound, "Qual o seu CPF?", "sent", now).
		AddRow(uuid.New(), "5511987654321", "Ipiranga", DirectionInbound, "dor lombar", "received", now.Add(-time.Minute))
	mock.ExpectQuery("SELECT id, phone, unit, direction, body, status, created_at").
		WithArgs("5511987654321", 10).
		WillReturnRows(rows)

	got, err := store.Recent(context.Background(), "5511987654321", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 entries, got %d", len(got))
	}
	if got[0].Direction != DirectionOutbound || got[1].Body != "dor lombar" {
		t.Fatalf("entries = %+v", got)
	}
}

func TestNilStoreIsNoop(t *testing.T) {
	var store *Store
	if err := store.Append(context.Background(), Entry{Phone: "5511"}); err != nil {
		t.Fatalf("nil store append: %v", err)
	}
	entries, err := store.Recent(context.Background(), "5511", 5)
	if err != nil || entries != nil {
		t.Fatalf("nil store recent = %v, %v", entries, err)
	}
}
