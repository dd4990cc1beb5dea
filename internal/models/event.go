package models

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind identifies what a committed operation did.
type EventKind uint8

const (
	EventNewHighestBid EventKind = iota + 1
	EventWithdrawBid
	EventAuctionFinished
)

func (k EventKind) String() string {
	switch k {
	case EventNewHighestBid:
		return "NewHighestBid"
	case EventWithdrawBid:
		return "WithdrawBid"
	case EventAuctionFinished:
		return "AuctionFinished"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is emitted once per committed operation. Seq is assigned while the
// auction lock is held, so ordering by Seq reproduces the commit order.
//
// Account is the bidder for NewHighestBid and WithdrawBid, and the winner for
// AuctionFinished. Entries lists the ledger entries the operation touched.
type Event struct {
	Seq     uint64
	Kind    EventKind
	Account common.Address
	Amount  *big.Int
	Entries []uint64
	Time    uint64 // unix nanoseconds
}

// At returns the event time.
func (e Event) At() time.Time {
	return time.Unix(0, int64(e.Time)).UTC()
}
