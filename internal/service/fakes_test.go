package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/sharedsmiles/ticketdesk/internal/model"
	"github.com/sharedsmiles/ticketdesk/internal/repository"
)

// In-memory collaborators for lifecycle tests. They mirror the repository
// layer's contracts, including zero-rows-as-ErrUpdateRestricted.

type fakePassStore struct {
	passes      map[int64]model.Pass
	nextID      int64
	listCalls   int
	activeCalls int
}

func newFakePassStore(passes ...model.Pass) *fakePassStore {
	s := &fakePassStore{passes: make(map[int64]model.Pass)}
	for _, p := range passes {
		s.passes[p.ID] = p
		if p.ID > s.nextID {
			s.nextID = p.ID
		}
	}
	return s
}

func (s *fakePassStore) sorted() []model.Pass {
	out := make([]model.Pass, 0, len(s.passes))
	for _, p := range s.passes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakePassStore) ListActive(ctx context.Context) ([]model.Pass, error) {
	s.activeCalls++
	var out []model.Pass
	for _, p := range s.sorted() {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePassStore) List(ctx context.Context) ([]model.Pass, error) {
	s.listCalls++
	return s.sorted(), nil
}

func (s *fakePassStore) GetByID(ctx context.Context, id int64) (*model.Pass, error) {
	p, ok := s.passes[id]
	if !ok {
		return nil, repository.ErrPassNotFound
	}
	return &p, nil
}

func (s *fakePassStore) Create(ctx context.Context, in model.PassInput) (*model.Pass, error) {
	s.nextID++
	p := model.Pass{
		ID: s.nextID, Title: in.Title, Price: in.Price, TotalSeats: in.TotalSeats,
		MaxPeople: in.MaxPeople, IsEarlyBird: in.IsEarlyBird, IsActive: in.IsActive,
		DisplayOrder: in.DisplayOrder, CreatedAt: time.Now(),
	}
	s.passes[p.ID] = p
	return &p, nil
}

func (s *fakePassStore) Update(ctx context.Context, id int64, in model.PassInput) error {
	p, ok := s.passes[id]
	if !ok {
		return repository.ErrPassNotFound
	}
	p.Title, p.Price, p.TotalSeats = in.Title, in.Price, in.TotalSeats
	p.MaxPeople, p.IsEarlyBird, p.IsActive, p.DisplayOrder = in.MaxPeople, in.IsEarlyBird, in.IsActive, in.DisplayOrder
	s.passes[id] = p
	return nil
}

func (s *fakePassStore) Delete(ctx context.Context, id int64) error {
	if _, ok := s.passes[id]; !ok {
		return repository.ErrPassNotFound
	}
	delete(s.passes, id)
	return nil
}

type fakeRegStore struct {
	regs           map[int64]*model.Registration
	nextID         int64
	insertErr      error
	restrictWrites bool
}

func newFakeRegStore() *fakeRegStore {
	return &fakeRegStore{regs: make(map[int64]*model.Registration)}
}

func (s *fakeRegStore) Insert(ctx context.Context, reg *model.Registration) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.nextID++
	reg.ID = s.nextID
	reg.CreatedAt = time.Now()
	clone := *reg
	s.regs[reg.ID] = &clone
	return nil
}

func (s *fakeRegStore) GetByID(ctx context.Context, id int64) (*model.Registration, error) {
	reg, ok := s.regs[id]
	if !ok {
		return nil, repository.ErrRegistrationNotFound
	}
	clone := *reg
	return &clone, nil
}

func (s *fakeRegStore) List(ctx context.Context) ([]model.Registration, error) {
	out := make([]model.Registration, 0, len(s.regs))
	for _, reg := range s.regs {
		out = append(out, *reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeRegStore) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	reg, ok := s.regs[id]
	if !ok || s.restrictWrites {
		return repository.ErrUpdateRestricted
	}
	reg.Status = status
	return nil
}

func (s *fakeRegStore) Delete(ctx context.Context, id int64) error {
	if _, ok := s.regs[id]; !ok || s.restrictWrites {
		return repository.ErrUpdateRestricted
	}
	delete(s.regs, id)
	return nil
}

func (s *fakeRegStore) CountByPass(ctx context.Context, passID int64) (int, error) {
	n := 0
	for _, reg := range s.regs {
		if reg.PassID == passID {
			n++
		}
	}
	return n, nil
}

type fakeSeatStore struct {
	pools map[model.PoolKey]*model.SeatPool
}

func newFakeSeatStore(earlyTotal, earlyUsed, generalTotal, generalUsed int) *fakeSeatStore {
	return &fakeSeatStore{pools: map[model.PoolKey]*model.SeatPool{
		model.PoolEarlyBird: {Key: model.PoolEarlyBird, TotalSeats: earlyTotal, UsedSeats: earlyUsed},
		model.PoolGeneral:   {Key: model.PoolGeneral, TotalSeats: generalTotal, UsedSeats: generalUsed},
	}}
}

func (s *fakeSeatStore) GetByKey(ctx context.Context, key model.PoolKey) (*model.SeatPool, error) {
	p, ok := s.pools[key]
	if !ok {
		return nil, repository.ErrPoolNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *fakeSeatStore) List(ctx context.Context) ([]model.SeatPool, error) {
	out := make([]model.SeatPool, 0, len(s.pools))
	for _, p := range s.pools {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *fakeSeatStore) Reserve(ctx context.Context, key model.PoolKey, amount int) error {
	p, ok := s.pools[key]
	if !ok {
		return repository.ErrPoolNotFound
	}
	if p.UsedSeats+amount > p.TotalSeats {
		return repository.ErrSeatsUnavailable
	}
	p.UsedSeats += amount
	return nil
}

func (s *fakeSeatStore) Release(ctx context.Context, key model.PoolKey, amount int) error {
	p, ok := s.pools[key]
	if !ok {
		return repository.ErrPoolNotFound
	}
	p.UsedSeats -= amount
	if p.UsedSeats < 0 {
		p.UsedSeats = 0
	}
	return nil
}

func (s *fakeSeatStore) SetUsed(ctx context.Context, key model.PoolKey, used int) error {
	p, ok := s.pools[key]
	if !ok {
		return repository.ErrPoolNotFound
	}
	p.UsedSeats = used
	return nil
}

func (s *fakeSeatStore) used(key model.PoolKey) int {
	return s.pools[key].UsedSeats
}

type fakeBlobStore struct {
	url  string
	err  error
	puts int
}

func (s *fakeBlobStore) Put(ctx context.Context, data io.Reader, contentType, originalName string) (string, error) {
	s.puts++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type fakeNotifier struct {
	err       error
	received  int
	confirmed int
	lastReg   *model.Registration
	lastPass  *model.Pass
}

func (n *fakeNotifier) SendRegistrationReceived(ctx context.Context, reg *model.Registration, pass *model.Pass) error {
	n.received++
	n.lastReg, n.lastPass = reg, pass
	return n.err
}

func (n *fakeNotifier) SendSeatConfirmed(ctx context.Context, reg *model.Registration, pass *model.Pass) error {
	n.confirmed++
	n.lastReg, n.lastPass = reg, pass
	return n.err
}

type fakePassCache struct {
	passes        []model.Pass
	ok            bool
	sets          int
	invalidations int
}

func (c *fakePassCache) Get(ctx context.Context) ([]model.Pass, bool) {
	return c.passes, c.ok
}

func (c *fakePassCache) Set(ctx context.Context, passes []model.Pass) {
	c.sets++
	c.passes, c.ok = passes, true
}

func (c *fakePassCache) Invalidate(ctx context.Context) {
	c.invalidations++
	c.passes, c.ok = nil, false
}

var errBoom = errors.New("boom")
