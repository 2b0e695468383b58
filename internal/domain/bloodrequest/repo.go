package bloodrequest

import "context"

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	List(ctx context.Context, limit, offset int) ([]*Request, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Request, int, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
