package staff

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("staff: employee not found")
	ErrEmailTaken   = errors.New("staff: email already in use")
	ErrInvalidInput = errors.New("staff: invalid input")
)

// Store is the persistence boundary for employee records.
type Store interface {
	Create(ctx context.Context, e *Employee) error
	Find(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
	ListByDepartment(ctx context.Context, department string) ([]*Employee, error)
	SearchByName(ctx context.Context, name string) ([]*Employee, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
