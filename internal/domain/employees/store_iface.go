package employees

import "context"

type StoreAPI interface {
	List(ctx context.Context) ([]Employee, error)
	Get(ctx context.Context, id ID) (Employee, error)
	Exists(ctx context.Context, id ID) (bool, error)
	Put(ctx context.Context, e Employee) error
	Delete(ctx context.Context, id ID) error
}
