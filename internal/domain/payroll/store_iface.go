package payroll

import (
	"context"
	"time"
)

type StoreAPI interface {
	Get(ctx context.Context, key Key) (Result, error)
	Put(ctx context.Context, key Key, result Result) error
	Delete(ctx context.Context, key Key) error
	ListAll(ctx context.Context) (map[Key]Result, error)
	ListMonth(ctx context.Context, year int, month time.Month) (map[Key]Result, error)
	ListYear(ctx context.Context, year int) (map[Key]Result, error)
}
