package employees

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PayrollCleaner removes payroll records that belong to an employee.
type PayrollCleaner interface {
	DeleteForEmployee(ctx context.Context, employeeID string) (int, error)
}

type Service struct {
	store    StoreAPI
	payrolls PayrollCleaner
	now      func() time.Time

	mu     sync.Mutex
	lastID int64
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

// SetPayrollCleaner wires the cascade used by Delete.
func (s *Service) SetPayrollCleaner(c PayrollCleaner) {
	s.payrolls = c
}

func (s *Service) All(ctx context.Context) ([]Employee, error) {
	return s.store.List(ctx)
}

// List pages through employees in creation order and returns the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Employee, int, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	total := len(all)
	if offset >= total {
		return []Employee{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	if strings.TrimSpace(id) == "" {
		return Employee{}, ErrNotFound
	}
	return s.store.Get(ctx, ID(strings.TrimSpace(id)))
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	e := Employee{
		Name:       strings.TrimSpace(in.Name),
		PIN:        NormalizePIN(in.PIN),
		EmployeeNo: strings.TrimSpace(in.EmployeeNo),
		NationalID: strings.TrimSpace(in.NationalID),
		CreatedAt:  now,
	}
	if err := validate(e); err != nil {
		return Employee{}, err
	}
	id, err := s.nextID(ctx, now)
	if err != nil {
		return Employee{}, err
	}
	e.ID = id
	if err := s.store.Put(ctx, e); err != nil {
		return Employee{}, err
	}
	return e, nil
}

// nextID mints a millisecond id, bumping past any id already in use.
func (s *Service) nextID(ctx context.Context, now time.Time) (ID, error) {
	candidate := now.UnixMilli()
	if candidate <= s.lastID {
		candidate = s.lastID + 1
	}
	for {
		id := ID(strconv.FormatInt(candidate, 10))
		exists, err := s.store.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			s.lastID = candidate
			return id, nil
		}
		candidate++
	}
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if in.Name != nil {
		e.Name = strings.TrimSpace(*in.Name)
	}
	if in.PIN != nil {
		e.PIN = NormalizePIN(*in.PIN)
	}
	if in.EmployeeNo != nil {
		e.EmployeeNo = strings.TrimSpace(*in.EmployeeNo)
	}
	if in.NationalID != nil {
		e.NationalID = strings.TrimSpace(*in.NationalID)
	}
	if err := validate(e); err != nil {
		return Employee{}, err
	}
	now := s.now().UTC()
	e.UpdatedAt = &now
	if err := s.store.Put(ctx, e); err != nil {
		return Employee{}, err
	}
	return e, nil
}

// Delete removes the employee and every payroll record keyed to them.
func (s *Service) Delete(ctx context.Context, id string) (int, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	removed := 0
	if s.payrolls != nil {
		removed, err = s.payrolls.DeleteForEmployee(ctx, string(e.ID))
		if err != nil {
			return 0, err
		}
	}
	if err := s.store.Delete(ctx, e.ID); err != nil {
		return 0, err
	}
	slog.Info("employee deleted", "employeeId", e.ID, "payrollsRemoved", removed)
	return removed, nil
}

// Replace overwrites the stored employee as-is. Used by restore and repair.
func (s *Service) Replace(ctx context.Context, e Employee) error {
	return s.store.Put(ctx, e)
}
