package memory

import (
	"context"
	"fmt"
	"sync"
)

// Bank is an in-memory registry.ValueChannel. It keeps per-account balances
// so tests can assert exact credit amounts, and supports the same failure and
// reentrancy hooks as AssetRegistry.
type Bank struct {
	mu       sync.Mutex
	balances map[string]uint64

	// FailSend makes every Send report failure without crediting anyone.
	FailSend bool

	// Rejecting lists recipients that can never accept value. A send to a
	// rejecting recipient fails the same way a non-accepting address would.
	Rejecting map[string]bool

	// SendHook, if set, runs at the start of Send, before any credit.
	SendHook func(ctx context.Context, to string, amount uint64)
}

// NewBank creates a Bank with no balances.
func NewBank() *Bank {
	return &Bank{
		balances:  make(map[string]uint64),
		Rejecting: make(map[string]bool),
	}
}

// Balance returns the recorded balance of an account.
func (b *Bank) Balance(account string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[account]
}

// Credit adds funds to an account. Test setup helper.
func (b *Bank) Credit(account string, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[account] += amount
}

// Send credits amount to the recipient, or fails without any effect.
func (b *Bank) Send(ctx context.Context, to string, amount uint64) error {
	if b.SendHook != nil {
		b.SendHook(ctx, to, amount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailSend {
		return fmt.Errorf("send of %d to %s rejected", amount, to)
	}
	if b.Rejecting[to] {
		return fmt.Errorf("recipient %s does not accept value transfers", to)
	}

	b.balances[to] += amount
	return nil
}
