// AngelaMos | 2026
// transactor.go

// Package coretest holds test doubles for the core package.
package coretest

import (
	"context"
	"sync"

	"github.com/kallan/backend/internal/core"
)

type txKey struct{}

// Transactor stands in for core.TxManager over in-memory repositories.
// Transactions run one at a time, which is what row locks give the real
// thing for the rows a test touches. Commit hooks run after fn returns
// nil and never after an error.
type Transactor struct {
	mu sync.Mutex

	statsMu   sync.Mutex
	commits   int
	rollbacks int
}

func (t *Transactor) InTx(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	if _, nested := ctx.Value(txKey{}).(bool); nested {
		return fn(ctx)
	}

	txCtx, hooks := core.WithCommitHooks(ctx)
	txCtx = context.WithValue(txCtx, txKey{}, true)

	t.mu.Lock()
	err := fn(txCtx)
	t.mu.Unlock()

	t.statsMu.Lock()
	if err != nil {
		t.rollbacks++
	} else {
		t.commits++
	}
	t.statsMu.Unlock()

	if err != nil {
		return err
	}

	hooks.Run(context.WithoutCancel(ctx))
	return nil
}

func (t *Transactor) Commits() int {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	return t.commits
}

func (t *Transactor) Rollbacks() int {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	return t.rollbacks
}

var _ core.Transactor = (*Transactor)(nil)
