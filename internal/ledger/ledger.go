package ledger

import (
	"fmt"
	"math/big"

	"auction-ledger/internal/auctionerrors"
	"auction-ledger/internal/models"

	"github.com/ethereum/go-ethereum/common"
)

// BidLedger is the append-only escrow record of every accepted bid.
// Entry ids are 1-based insertion positions and never change.
//
// A BidLedger is not safe for concurrent use; its owner serializes access.
type BidLedger struct {
	entries  []models.BidEntry
	byBidder map[common.Address][]uint64 // key: bidder -> value: entry ids in insertion order
	escrowed *big.Int
}

// New creates an empty ledger
func New() *BidLedger {
	return &BidLedger{
		byBidder: make(map[common.Address][]uint64),
		escrowed: new(big.Int),
	}
}

// Record appends an entry for an already validated bid and returns its id.
func (l *BidLedger) Record(bidder common.Address, amount *big.Int) uint64 {
	id := uint64(len(l.entries) + 1)
	l.entries = append(l.entries, models.BidEntry{
		ID:            id,
		Bidder:        bidder,
		OfferedAmount: new(big.Int).Set(amount),
	})
	l.byBidder[bidder] = append(l.byBidder[bidder], id)
	l.escrowed.Add(l.escrowed, amount)
	return id
}

// MarkRefundable is a documented hook with no effect: an entry becomes
// refundable simply by no longer being the highest one, so nothing is stored
// and the auction does not call it.
func (l *BidLedger) MarkRefundable(id uint64) {}

// Refundable returns the ids of bidder's entries that still hold funds,
// skipping locked (the entry backing the current highest bid, 0 for none).
func (l *BidLedger) Refundable(bidder common.Address, locked uint64) []uint64 {
	var ids []uint64
	for _, id := range l.byBidder[bidder] {
		if id == locked {
			continue
		}
		if l.entries[id-1].Refundable() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Zero empties the given entries and returns the total removed from escrow
// along with the per-entry amounts, which Restore accepts unchanged.
func (l *BidLedger) Zero(ids []uint64) (*big.Int, []*big.Int) {
	total := new(big.Int)
	amounts := make([]*big.Int, len(ids))
	for i, id := range ids {
		e := &l.entries[id-1]
		amounts[i] = e.OfferedAmount
		total.Add(total, e.OfferedAmount)
		e.OfferedAmount = new(big.Int)
	}
	l.escrowed.Sub(l.escrowed, total)
	return total, amounts
}

// Restore puts back balances removed by Zero when the payout they funded
// could not be delivered.
func (l *BidLedger) Restore(ids []uint64, amounts []*big.Int) {
	for i, id := range ids {
		e := &l.entries[id-1]
		e.OfferedAmount = new(big.Int).Set(amounts[i])
		l.escrowed.Add(l.escrowed, amounts[i])
	}
}

// Entry returns a copy of the entry with the given id
func (l *BidLedger) Entry(id uint64) (models.BidEntry, error) {
	if id == 0 || id > uint64(len(l.entries)) {
		return models.BidEntry{}, fmt.Errorf("ledger entry %d: %w", id, auctionerrors.ErrEntryNotFound)
	}
	return copyEntry(l.entries[id-1]), nil
}

// Entries returns a copy of every entry in insertion order
func (l *BidLedger) Entries() []models.BidEntry {
	out := make([]models.BidEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = copyEntry(e)
	}
	return out
}

// EntriesOf returns the ids of all entries submitted by bidder
func (l *BidLedger) EntriesOf(bidder common.Address) []uint64 {
	return append([]uint64(nil), l.byBidder[bidder]...)
}

// Len returns the number of entries ever recorded
func (l *BidLedger) Len() int {
	return len(l.entries)
}

// Escrowed returns the sum of all positive entry balances
func (l *BidLedger) Escrowed() *big.Int {
	return new(big.Int).Set(l.escrowed)
}

func copyEntry(e models.BidEntry) models.BidEntry {
	e.OfferedAmount = new(big.Int).Set(e.OfferedAmount)
	return e
}
