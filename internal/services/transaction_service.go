package services

import (
	"context"
	"fmt"
	"log/slog"

	"spendtrack/internal/amqp"
	"spendtrack/internal/core"
	"spendtrack/internal/log"
)

// LedgerStore is the storage surface the transaction service needs.
type LedgerStore interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID int64) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

// EventPublisher publishes transaction events to the message stream.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.TransactionEvent) error
}

// TransactionService orchestrates ledger writes across SQLite and AMQP.
// Events are best effort: a publish failure never fails the request.
type TransactionService struct {
	storage LedgerStore
	events  EventPublisher
}

func NewTransactionService(storage LedgerStore, events EventPublisher) *TransactionService {
	return &TransactionService{
		storage: storage,
		events:  events,
	}
}

// Record saves a transaction and publishes a recorded event.
func (s *TransactionService) Record(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	saved, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	log.LogTransactionCreated(ctx, saved.ID, saved.Category, saved.Type, saved.Amount.Cents)

	if err := s.publish(ctx, amqp.NewRecordedEvent(saved.ID, saved.UserID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish recorded event",
			"id", saved.ID, "error", err)
		// Don't fail the request - transaction is saved locally
	}

	return saved, nil
}

// List returns the user's transactions in insertion order.
func (s *TransactionService) List(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.storage.ListTransactionsByUser(ctx, userID)
}

// Delete removes a transaction by id and publishes a deleted event.
// Ownership is not checked; any id can be deleted.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := s.publish(ctx, amqp.NewDeletedEvent(id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish deleted event",
			"id", id, "error", err)
	}

	return nil
}

func (s *TransactionService) publish(ctx context.Context, ev *amqp.TransactionEvent) error {
	if s.events == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping event")
		return nil
	}
	return s.events.Publish(ctx, ev)
}
