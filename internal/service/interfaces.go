// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"io"

	"github.com/sharedsmiles/ticketdesk/internal/model"
)

// ErrValidation marks malformed or missing input. Handlers map it to 400.
var ErrValidation = errors.New("validation failed")

// PassStore is the pass catalog persistence contract.
type PassStore interface {
	ListActive(ctx context.Context) ([]model.Pass, error)
	List(ctx context.Context) ([]model.Pass, error)
	GetByID(ctx context.Context, id int64) (*model.Pass, error)
	Create(ctx context.Context, in model.PassInput) (*model.Pass, error)
	Update(ctx context.Context, id int64, in model.PassInput) error
	Delete(ctx context.Context, id int64) error
}

// RegistrationStore is the registration persistence contract. UpdateStatus
// and Delete report zero-affected-rows as repository.ErrUpdateRestricted.
type RegistrationStore interface {
	Insert(ctx context.Context, reg *model.Registration) error
	GetByID(ctx context.Context, id int64) (*model.Registration, error)
	List(ctx context.Context) ([]model.Registration, error)
	UpdateStatus(ctx context.Context, id int64, status model.Status) error
	Delete(ctx context.Context, id int64) error
	CountByPass(ctx context.Context, passID int64) (int, error)
}

// SeatPoolStore is the seat ledger contract. Reserve must be atomic: the
// capacity check and the increment happen in one step at the storage layer.
type SeatPoolStore interface {
	GetByKey(ctx context.Context, key model.PoolKey) (*model.SeatPool, error)
	List(ctx context.Context) ([]model.SeatPool, error)
	Reserve(ctx context.Context, key model.PoolKey, amount int) error
	Release(ctx context.Context, key model.PoolKey, amount int) error
	SetUsed(ctx context.Context, key model.PoolKey, used int) error
}

// BlobStore stores a receipt upload and returns its public URL.
type BlobStore interface {
	Put(ctx context.Context, data io.Reader, contentType, originalName string) (string, error)
}

// Notifier sends lifecycle email. Callers treat every error as non-fatal.
type Notifier interface {
	SendRegistrationReceived(ctx context.Context, reg *model.Registration, pass *model.Pass) error
	SendSeatConfirmed(ctx context.Context, reg *model.Registration, pass *model.Pass) error
}

// PassCache caches the active pass list. Implementations must treat every
// failure as a miss.
type PassCache interface {
	Get(ctx context.Context) ([]model.Pass, bool)
	Set(ctx context.Context, passes []model.Pass)
	Invalidate(ctx context.Context)
}
