package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sharedsmiles/ticketdesk/internal/model"
	"github.com/sharedsmiles/ticketdesk/internal/repository"
)

// ReceiptUpload carries an optional payment-receipt file alongside a
// registration request.
type ReceiptUpload struct {
	Data        io.Reader
	ContentType string
	Filename    string
}

// RejectResult reports what a rejection restored to the ledger.
type RejectResult struct {
	SeatsRestored int           `json:"seatsRestored"`
	SeatPool      model.PoolKey `json:"seatPool"`
}

// RegistrationService owns the registration lifecycle: create, confirm,
// reject, delete, and the seat-ledger resync.
type RegistrationService struct {
	passes   PassStore
	regs     RegistrationStore
	pools    SeatPoolStore
	receipts BlobStore
	notifier Notifier
}

// NewRegistrationService constructs a RegistrationService with its
// collaborators. receipts and notifier may be nil for installs without
// uploads or email.
func NewRegistrationService(
	passes PassStore,
	regs RegistrationStore,
	pools SeatPoolStore,
	receipts BlobStore,
	notifier Notifier,
) *RegistrationService {
	return &RegistrationService{
		passes:   passes,
		regs:     regs,
		pools:    pools,
		receipts: receipts,
		notifier: notifier,
	}
}

// Create validates the request, reserves seats, optionally stores the
// receipt, and persists the registration as pending.
//
// Failure policy: seat exhaustion and validation hard-fail before anything is
// persisted; a failed receipt upload is logged and the registration proceeds
// with no receipt URL; a failed notification never fails the create.
func (s *RegistrationService) Create(ctx context.Context, req model.CreateRegistrationRequest, receipt *ReceiptUpload) (*model.Registration, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	if req.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !isValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: email is not a valid address", ErrValidation)
	}
	if req.Phone == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrValidation)
	}

	pass, err := s.passes.GetByID(ctx, req.PassID)
	if err != nil {
		return nil, err
	}
	if !pass.IsActive {
		return nil, repository.ErrPassNotFound
	}

	if len(req.AdditionalNames) != pass.MaxPeople-1 {
		return nil, fmt.Errorf("%w: this pass covers %d people, expected %d additional names",
			ErrValidation, pass.MaxPeople, pass.MaxPeople-1)
	}
	for _, name := range req.AdditionalNames {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: additional guest names must not be empty", ErrValidation)
		}
	}

	pool := pass.Pool()
	if err := s.pools.Reserve(ctx, pool, pass.MaxPeople); err != nil {
		return nil, err
	}

	var receiptURL *string
	if receipt != nil && s.receipts != nil {
		url, upErr := s.receipts.Put(ctx, receipt.Data, receipt.ContentType, receipt.Filename)
		if upErr != nil {
			// Soft failure: the registration goes through without a receipt.
			logrus.WithError(upErr).WithField("email", req.Email).Error("receipt upload failed")
		} else {
			receiptURL = &url
		}
	}

	reg := &model.Registration{
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		PassID:          pass.ID,
		AdditionalNames: req.AdditionalNames,
		WantsUpdates:    req.WantsUpdates,
		ReceiptURL:      receiptURL,
		Status:          model.StatusPending,
	}
	if err := s.regs.Insert(ctx, reg); err != nil {
		// Hand the reserved seats back; if this release also fails the
		// ledger drifts and a manual resync reconciles it.
		if relErr := s.pools.Release(ctx, pool, pass.MaxPeople); relErr != nil {
			logrus.WithError(relErr).WithField("pool", pool).Error("seat release after failed insert")
		}
		return nil, err
	}

	if s.notifier != nil {
		if nErr := s.notifier.SendRegistrationReceived(ctx, reg, pass); nErr != nil {
			logrus.WithError(nErr).WithField("registration_id", reg.ID).Warn("registration email failed")
		}
	}

	return reg, nil
}

// Confirm moves a registration to confirmed and sends the confirmation email
// with its unique code. Seats were already reserved at create time; this is a
// status-only transition.
func (s *RegistrationService) Confirm(ctx context.Context, id int64) error {
	reg, err := s.regs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.regs.UpdateStatus(ctx, id, model.StatusConfirmed); err != nil {
		return err
	}
	reg.Status = model.StatusConfirmed

	if s.notifier != nil {
		pass, passErr := s.passes.GetByID(ctx, reg.PassID)
		if passErr != nil {
			pass = nil // deleted pass: email renders "Unknown Pass"
		}
		if nErr := s.notifier.SendSeatConfirmed(ctx, reg, pass); nErr != nil {
			logrus.WithError(nErr).WithField("registration_id", id).Warn("confirmation email failed")
		}
	}
	return nil
}

// Reject returns the registration's seats to its pool and marks it rejected.
// No email is sent on rejection.
func (s *RegistrationService) Reject(ctx context.Context, id int64) (*RejectResult, error) {
	reg, err := s.regs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pass, err := s.passes.GetByID(ctx, reg.PassID)
	if err != nil {
		return nil, err
	}

	pool := pass.Pool()
	if err := s.pools.Release(ctx, pool, pass.MaxPeople); err != nil {
		return nil, err
	}
	if err := s.regs.UpdateStatus(ctx, id, model.StatusRejected); err != nil {
		return nil, err
	}

	return &RejectResult{SeatsRestored: pass.MaxPeople, SeatPool: pool}, nil
}

// Delete removes the registration row and returns its seats to the pool. A
// missing pass is non-fatal: the row is deleted and the release is skipped.
// Deleting an already-rejected registration releases its seats again — the
// release is unconditional on delete, so rejected rows should be kept, not
// deleted, unless the double release is intended.
func (s *RegistrationService) Delete(ctx context.Context, id int64) error {
	reg, err := s.regs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	pass, passErr := s.passes.GetByID(ctx, reg.PassID)
	if passErr != nil {
		logrus.WithField("registration_id", id).WithField("pass_id", reg.PassID).
			Warn("pass missing on delete, skipping seat release")
	}

	if err := s.regs.Delete(ctx, id); err != nil {
		return err
	}

	if passErr == nil {
		if err := s.pools.Release(ctx, pass.Pool(), pass.MaxPeople); err != nil {
			logrus.WithError(err).WithField("registration_id", id).Error("seat release after delete")
		}
	}
	return nil
}

// Resync recomputes both pool counters from scratch: the sum of max_people
// over all non-rejected registrations whose pass maps to the pool. This is
// the recovery tool for drift left behind by partial failures.
func (s *RegistrationService) Resync(ctx context.Context) (map[model.PoolKey]int, error) {
	regs, err := s.regs.List(ctx)
	if err != nil {
		return nil, err
	}
	passes, err := s.passes.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*model.Pass, len(passes))
	for i := range passes {
		byID[passes[i].ID] = &passes[i]
	}

	counts := map[model.PoolKey]int{
		model.PoolEarlyBird: 0,
		model.PoolGeneral:   0,
	}
	for _, reg := range regs {
		if reg.Status == model.StatusRejected {
			continue
		}
		pass, ok := byID[reg.PassID]
		if !ok {
			continue // dangling pass reference counts nowhere
		}
		counts[pass.Pool()] += pass.MaxPeople
	}

	for key, used := range counts {
		if err := s.pools.SetUsed(ctx, key, used); err != nil {
			return nil, err
		}
	}
	return counts, nil
}

// ListRegistrations returns all registrations, newest first.
func (s *RegistrationService) ListRegistrations(ctx context.Context) ([]model.Registration, error) {
	return s.regs.List(ctx)
}

// SeatPools returns both pool counters for the admin dashboard.
func (s *RegistrationService) SeatPools(ctx context.Context) ([]model.SeatPool, error) {
	return s.pools.List(ctx)
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}

// IsNotFound reports whether err is one of the domain not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrPassNotFound) ||
		errors.Is(err, repository.ErrRegistrationNotFound) ||
		errors.Is(err, repository.ErrPoolNotFound)
}
