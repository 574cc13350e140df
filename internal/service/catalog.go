package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sharedsmiles/ticketdesk/internal/model"
)

// CatalogService manages the pass catalog. The public active-pass list is
// served through an optional cache; admin mutations invalidate it.
type CatalogService struct {
	passes PassStore
	regs   RegistrationStore
	cache  PassCache
}

// NewCatalogService constructs a CatalogService. cache may be nil.
func NewCatalogService(passes PassStore, regs RegistrationStore, cache PassCache) *CatalogService {
	return &CatalogService{passes: passes, regs: regs, cache: cache}
}

// ListActive returns buyer-visible passes in display order.
func (s *CatalogService) ListActive(ctx context.Context) ([]model.Pass, error) {
	if s.cache != nil {
		if passes, ok := s.cache.Get(ctx); ok {
			return passes, nil
		}
	}
	passes, err := s.passes.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, passes)
	}
	return passes, nil
}

// ListAdmin returns every pass with its registration count.
func (s *CatalogService) ListAdmin(ctx context.Context) ([]model.PassSummary, error) {
	passes, err := s.passes.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]model.PassSummary, 0, len(passes))
	for _, p := range passes {
		n, err := s.regs.CountByPass(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, model.PassSummary{Pass: p, Registrations: n})
	}
	return summaries, nil
}

// Get returns a single pass.
func (s *CatalogService) Get(ctx context.Context, id int64) (*model.Pass, error) {
	return s.passes.GetByID(ctx, id)
}

// Create validates and persists a new pass.
func (s *CatalogService) Create(ctx context.Context, in model.PassInput) (*model.Pass, error) {
	if err := validatePassInput(in); err != nil {
		return nil, err
	}
	pass, err := s.passes.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return pass, nil
}

// Update validates and overwrites a pass.
func (s *CatalogService) Update(ctx context.Context, id int64, in model.PassInput) error {
	if err := validatePassInput(in); err != nil {
		return err
	}
	if err := s.passes.Update(ctx, id, in); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes a pass. Existing registrations keep the dangling reference.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.passes.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func validatePassInput(in model.PassInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if in.TotalSeats < 0 {
		return fmt.Errorf("%w: total seats must not be negative", ErrValidation)
	}
	if in.MaxPeople < 1 {
		return fmt.Errorf("%w: a pass must cover at least one person", ErrValidation)
	}
	return nil
}
