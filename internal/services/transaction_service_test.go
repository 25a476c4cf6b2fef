package services

import (
	"context"
	"errors"
	"testing"

	"spendtrack/internal/amqp"
	"spendtrack/internal/core"
)

type fakeLedger struct {
	nextID    int64
	rows      map[int64]core.Transaction
	createErr error
	deleteErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: make(map[int64]core.Transaction)}
}

func (f *fakeLedger) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if f.createErr != nil {
		return core.Transaction{}, f.createErr
	}
	f.nextID++
	tx.ID = f.nextID
	f.rows[tx.ID] = tx
	return tx, nil
}

func (f *fakeLedger) ListTransactionsByUser(_ context.Context, userID int64) ([]core.Transaction, error) {
	var out []core.Transaction
	for id := int64(1); id <= f.nextID; id++ {
		if tx, ok := f.rows[id]; ok && tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeLedger) DeleteTransaction(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, id)
	return nil
}

type fakePublisher struct {
	events []*amqp.TransactionEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev *amqp.TransactionEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func TestRecordPublishesEvent(t *testing.T) {
	ledger := newFakeLedger()
	pub := &fakePublisher{}
	svc := NewTransactionService(ledger, pub)

	saved, err := svc.Record(context.Background(), core.Transaction{
		Date:     "2025-01-15",
		Category: "Groceries",
		Type:     core.TypeExpense,
		Amount:   core.Money{Cents: 1250},
		UserID:   7,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if saved.ID != 1 {
		t.Errorf("id = %d, want 1", saved.ID)
	}
	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Event != amqp.EventTransactionRecorded || ev.ID != saved.ID || ev.UserID != 7 {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestRecordSucceedsWhenPublishFails(t *testing.T) {
	ledger := newFakeLedger()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(ledger, pub)

	saved, err := svc.Record(context.Background(), core.Transaction{Type: core.TypeIncome, UserID: 1})
	if err != nil {
		t.Fatalf("Record should not fail when publish fails: %v", err)
	}
	if _, ok := ledger.rows[saved.ID]; !ok {
		t.Error("transaction not saved")
	}
}

func TestRecordFailsWhenStorageFails(t *testing.T) {
	ledger := newFakeLedger()
	ledger.createErr = errors.New("disk full")
	svc := NewTransactionService(ledger, &fakePublisher{})

	if _, err := svc.Record(context.Background(), core.Transaction{UserID: 1}); err == nil {
		t.Fatal("expected error from storage")
	}
}

func TestRecordWithoutPublisher(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewTransactionService(ledger, nil)

	if _, err := svc.Record(context.Background(), core.Transaction{UserID: 1}); err != nil {
		t.Fatalf("Record without publisher: %v", err)
	}
}

func TestDeleteIgnoresOwnership(t *testing.T) {
	ledger := newFakeLedger()
	pub := &fakePublisher{}
	svc := NewTransactionService(ledger, pub)

	saved, _ := svc.Record(context.Background(), core.Transaction{UserID: 1})
	pub.events = nil

	// Any caller can delete any id; there is no ownership check.
	if err := svc.Delete(context.Background(), saved.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := ledger.rows[saved.ID]; ok {
		t.Error("transaction still present after delete")
	}
	if len(pub.events) != 1 || pub.events[0].Event != amqp.EventTransactionDeleted {
		t.Errorf("expected one deleted event, got %+v", pub.events)
	}
}

func TestListScopedByUser(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewTransactionService(ledger, nil)
	ctx := context.Background()

	svc.Record(ctx, core.Transaction{UserID: 1, Category: "a"})
	svc.Record(ctx, core.Transaction{UserID: 2, Category: "b"})
	svc.Record(ctx, core.Transaction{UserID: 1, Category: "c"})

	rows, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Category != "a" || rows[1].Category != "c" {
		t.Errorf("rows out of order: %+v", rows)
	}
}
