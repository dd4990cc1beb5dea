package contract

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"auction-ledger/internal/auctionerrors"
	"auction-ledger/internal/clock"
	"auction-ledger/internal/ledger"
	"auction-ledger/internal/models"

	"github.com/ethereum/go-ethereum/common"
)

//go:generate mockgen -destination=mock_payer.go -package=contract auction-ledger/internal/contract Payer

// Payer delivers funds leaving escrow. Implementations may call back into the
// Auction; no auction lock is held while Pay runs.
type Payer interface {
	Pay(ctx context.Context, to common.Address, amount *big.Int) error
}

// EventSink observes committed operations in Seq order. Emit must not block
// for long and must not call back into the Auction synchronously.
type EventSink interface {
	Emit(ev models.Event)
}

// Option configures an Auction
type Option func(*Auction)

// WithSink registers an additional event sink
func WithSink(sink EventSink) Option {
	return func(a *Auction) {
		a.events.sinks = append(a.events.sinks, sink)
	}
}

// Auction is a single sealed-clock auction: the AuctionState, the BidLedger
// it owns, and the three operations allowed to change them.
//
// Every operation commits its state change before paying anybody, so a payee
// that re-enters the Auction sees balances that are already zero.
type Auction struct {
	mu     sync.RWMutex
	meta   models.Meta
	state  *AuctionState
	ledger *ledger.BidLedger
	seq    uint64

	clock  clock.Clock
	payer  Payer
	events *dispatcher
}

// New creates an auction from its immutable configuration
func New(meta models.Meta, c clock.Clock, payer Payer, opts ...Option) *Auction {
	if meta.Reserve == nil {
		meta.Reserve = new(big.Int)
	}
	a := &Auction{
		meta:   meta,
		state:  newAuctionState(meta.Auctioneer, meta.BiddingEndTime, meta.Reserve),
		ledger: ledger.New(),
		clock:  c,
		payer:  payer,
		events: newDispatcher(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PlaceBid records amount as the new highest bid from caller. The funds are
// considered already in custody when PlaceBid is called.
func (a *Auction) PlaceBid(ctx context.Context, caller common.Address, amount *big.Int) (models.BidEntry, error) {
	if err := validateCaller(caller); err != nil {
		return models.BidEntry{}, err
	}
	if amount == nil || amount.Sign() < 0 {
		return models.BidEntry{}, fmt.Errorf("contract: %w - amount must be a non-negative integer", auctionerrors.ErrInvalidBid)
	}

	a.mu.Lock()
	now := a.clock.Now()
	if err := a.state.requireOpen(now); err != nil {
		a.mu.Unlock()
		return models.BidEntry{}, err
	}
	if err := a.state.requireOutbids(amount); err != nil {
		a.mu.Unlock()
		return models.BidEntry{}, err
	}

	id := a.ledger.Record(caller, amount)
	a.state.advance(caller, amount, id)

	entry, _ := a.ledger.Entry(id)
	ev := a.nextEvent(models.EventNewHighestBid, caller, amount, []uint64{id}, now)
	a.mu.Unlock()

	a.events.deliver(ev)
	return entry, nil
}

// Withdraw refunds every outbid entry of caller and returns the total paid.
// The current highest bidder cannot withdraw until the auction is finished.
func (a *Auction) Withdraw(ctx context.Context, caller common.Address) (*big.Int, error) {
	if err := validateCaller(caller); err != nil {
		return nil, err
	}

	a.mu.Lock()
	now := a.clock.Now()
	if err := a.state.requireUnlocked(caller); err != nil {
		a.mu.Unlock()
		return nil, err
	}
	ids := a.ledger.Refundable(caller, a.state.highestEntry)
	if len(ids) == 0 {
		a.mu.Unlock()
		return nil, auctionerrors.ErrNothingToWithdraw
	}
	total, amounts := a.ledger.Zero(ids)
	ev := a.nextEvent(models.EventWithdrawBid, caller, total, ids, now)
	a.mu.Unlock()

	if err := a.payer.Pay(ctx, caller, total); err != nil {
		a.mu.Lock()
		a.ledger.Restore(ids, amounts)
		a.mu.Unlock()
		a.events.skip(ev.Seq)
		return nil, fmt.Errorf("contract: refund %s to %s: %w: %w", total, caller.Hex(), auctionerrors.ErrTransferFailed, err)
	}

	a.events.deliver(ev)
	return total, nil
}

// Finish ends the auction and pays the winning bid to the auctioneer. While
// the payout is in flight a second Finish, or a withdrawal by the winner,
// fails with ErrSettlementPending.
func (a *Auction) Finish(ctx context.Context, caller common.Address) (models.Settlement, error) {
	a.mu.Lock()
	now := a.clock.Now()
	if err := a.state.requireAuctioneer(caller); err != nil {
		a.mu.Unlock()
		return models.Settlement{}, err
	}
	if err := a.state.requireClosed(now); err != nil {
		a.mu.Unlock()
		return models.Settlement{}, err
	}
	if err := a.state.requireNotEnded(); err != nil {
		a.mu.Unlock()
		return models.Settlement{}, err
	}

	a.state.ended = true
	var ids []uint64
	if a.state.hasBid() {
		ids = []uint64{a.state.highestEntry}
		a.state.settling = true
	}
	_, amounts := a.ledger.Zero(ids)
	settlement := models.Settlement{
		Winner:     a.state.highestBidder,
		Auctioneer: a.state.auctioneer,
		Amount:     new(big.Int).Set(a.state.highestBid),
		Entry:      a.state.highestEntry,
	}
	ev := a.nextEvent(models.EventAuctionFinished, settlement.Winner, settlement.Amount, ids, now)
	a.mu.Unlock()

	if settlement.Amount.Sign() > 0 {
		if err := a.payer.Pay(ctx, settlement.Auctioneer, settlement.Amount); err != nil {
			a.mu.Lock()
			a.state.ended = false
			a.state.settling = false
			a.ledger.Restore(ids, amounts)
			a.mu.Unlock()
			a.events.skip(ev.Seq)
			return models.Settlement{}, fmt.Errorf("contract: pay %s to auctioneer: %w: %w", settlement.Amount, auctionerrors.ErrTransferFailed, err)
		}
	}
	if len(ids) > 0 {
		a.mu.Lock()
		a.state.settling = false
		a.mu.Unlock()
	}

	a.events.deliver(ev)
	return settlement, nil
}

// ListOfBids returns the ledger entry with the given 1-based id
func (a *Auction) ListOfBids(id uint64) (models.BidEntry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ledger.Entry(id)
}

// Bids returns every ledger entry in insertion order
func (a *Auction) Bids() []models.BidEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ledger.Entries()
}

func (a *Auction) HighestBid() *big.Int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return new(big.Int).Set(a.state.highestBid)
}

func (a *Auction) HighestBidder() common.Address {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.highestBidder
}

func (a *Auction) Auctioneer() common.Address {
	return a.meta.Auctioneer
}

func (a *Auction) BiddingEndTime() time.Time {
	return a.meta.BiddingEndTime
}

func (a *Auction) Meta() models.Meta {
	m := a.meta
	m.Reserve = new(big.Int).Set(a.meta.Reserve)
	return m
}

func (a *Auction) Ended() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.ended
}

// IsOpen reports whether bids are currently accepted
func (a *Auction) IsOpen() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.isOpen(a.clock.Now())
}

// Escrowed returns the total currently held on behalf of bidders
func (a *Auction) Escrowed() *big.Int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ledger.Escrowed()
}

// Snapshot returns a consistent view of the whole auction state
func (a *Auction) Snapshot() models.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return models.Snapshot{
		AuctionID:      a.meta.AuctionID,
		Auctioneer:     a.meta.Auctioneer,
		BiddingEndTime: a.meta.BiddingEndTime,
		Reserve:        new(big.Int).Set(a.meta.Reserve),
		HighestBid:     new(big.Int).Set(a.state.highestBid),
		HighestBidder:  a.state.highestBidder,
		HighestEntry:   a.state.highestEntry,
		Ended:          a.state.ended,
		Open:           a.state.isOpen(a.clock.Now()),
		Escrowed:       a.ledger.Escrowed(),
		Bids:           a.ledger.Len(),
	}
}

// LastSeq returns the sequence number of the last committed event
func (a *Auction) LastSeq() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.seq
}

// nextEvent must be called with a.mu held
func (a *Auction) nextEvent(kind models.EventKind, account common.Address, amount *big.Int, ids []uint64, now time.Time) models.Event {
	a.seq++
	return models.Event{
		Seq:     a.seq,
		Kind:    kind,
		Account: account,
		Amount:  new(big.Int).Set(amount),
		Entries: append([]uint64(nil), ids...),
		Time:    uint64(now.UnixNano()),
	}
}

func validateCaller(caller common.Address) error {
	if caller == (common.Address{}) {
		return fmt.Errorf("contract: %w - zero address", auctionerrors.ErrInvalidCaller)
	}
	return nil
}
