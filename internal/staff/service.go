package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Service validates input and enforces email uniqueness over a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs the employee service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("employee store is required")
	}
	return &Service{store: store, now: time.Now}, nil
}

// EmployeeInput carries the caller-supplied fields for create and update.
type EmployeeInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Salary     int64  `json:"salary"`
}

func (in *EmployeeInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Department = strings.TrimSpace(in.Department)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if in.Salary < 0 {
		return fmt.Errorf("%w: salary must not be negative", ErrInvalidInput)
	}
	return nil
}

// Create stores a new employee. The email must be unused.
func (s *Service) Create(ctx context.Context, in EmployeeInput) (*Employee, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if _, err := s.store.FindByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, in.Email)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	e := &Employee{
		Name:       in.Name,
		Email:      in.Email,
		Department: in.Department,
		Salary:     in.Salary,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns the employee with the given id.
func (s *Service) Get(ctx context.Context, id string) (*Employee, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}

// GetByEmail returns the employee with the given email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Employee, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return s.store.FindByEmail(ctx, email)
}

// List returns all employees.
func (s *Service) List(ctx context.Context) ([]*Employee, error) {
	return s.store.List(ctx)
}

// ListByDepartment returns the employees of one department.
func (s *Service) ListByDepartment(ctx context.Context, department string) ([]*Employee, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, fmt.Errorf("%w: department is required", ErrInvalidInput)
	}
	return s.store.ListByDepartment(ctx, department)
}

// SearchByName returns employees whose name contains the fragment,
// case-insensitively.
func (s *Service) SearchByName(ctx context.Context, name string) ([]*Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.store.SearchByName(ctx, name)
}

// Update replaces the employee's fields. Changing the email to one already
// held by another employee is rejected.
func (s *Service) Update(ctx context.Context, id string, in EmployeeInput) (*Employee, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	e, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Email != in.Email {
		if other, err := s.store.FindByEmail(ctx, in.Email); err == nil && other.ID != id {
			return nil, fmt.Errorf("%w: %s", ErrEmailTaken, in.Email)
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	e.Name = in.Name
	e.Email = in.Email
	e.Department = in.Department
	e.Salary = in.Salary
	e.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes the employee with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}

// Count returns the total number of employees.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}
