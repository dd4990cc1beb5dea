package treasury

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"auction-ledger/internal/models"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidPayout = errors.New("invalid payout")

// Payout is one transfer out of escrow
type Payout struct {
	To     common.Address `json:"to"`
	Amount *big.Int       `json:"amount"`
	At     time.Time      `json:"at"`
}

// Treasury is the in-process account book that receives funds released from
// escrow. It is safe for concurrent use.
type Treasury struct {
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
	paid     *big.Int
	payouts  []Payout
}

// New creates an empty treasury
func New() *Treasury {
	return &Treasury{
		balances: make(map[common.Address]*big.Int),
		paid:     new(big.Int),
	}
}

// Pay credits amount to the account of to
func (t *Treasury) Pay(ctx context.Context, to common.Address, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("treasury: pay %s: %w", to.Hex(), err)
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("treasury: %w - amount must be positive", ErrInvalidPayout)
	}
	if to == (common.Address{}) {
		return fmt.Errorf("treasury: %w - zero recipient", ErrInvalidPayout)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(to, amount, time.Now().UTC())
	return nil
}

func (t *Treasury) credit(to common.Address, amount *big.Int, at time.Time) {
	bal, ok := t.balances[to]
	if !ok {
		bal = new(big.Int)
		t.balances[to] = bal
	}
	bal.Add(bal, amount)
	t.paid.Add(t.paid, amount)
	t.payouts = append(t.payouts, Payout{To: to, Amount: new(big.Int).Set(amount), At: at})
}

// Rebuild re-credits the payouts recorded in a journal. Withdrawals pay the
// bidder; a finish with a positive amount pays the auctioneer.
func (t *Treasury) Rebuild(events []models.Event, auctioneer common.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ev := range events {
		if ev.Amount == nil || ev.Amount.Sign() <= 0 {
			continue
		}
		switch ev.Kind {
		case models.EventWithdrawBid:
			t.credit(ev.Account, ev.Amount, ev.At())
		case models.EventAuctionFinished:
			t.credit(auctioneer, ev.Amount, ev.At())
		}
	}
}

// Balance returns the total received by addr
func (t *Treasury) Balance(addr common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if bal, ok := t.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// TotalPaid returns the sum of every payout
func (t *Treasury) TotalPaid() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.paid)
}

// Payouts returns every payout in the order it was made
func (t *Treasury) Payouts() []Payout {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Payout, len(t.payouts))
	for i, p := range t.payouts {
		p.Amount = new(big.Int).Set(p.Amount)
		out[i] = p
	}
	return out
}
