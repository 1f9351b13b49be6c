package service

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// fakeUnitOfWork runs fn directly; mock repositories ignore the transaction handle.
type fakeUnitOfWork struct {
	calls int
	err   error
}

func (f *fakeUnitOfWork) WithinTx(ctx context.Context, fn func(tx sqlx.ExtContext) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}
