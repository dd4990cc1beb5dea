package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// BidEntry is one accepted bid in the ledger. OfferedAmount is zeroed once the
// funds leave escrow and is never increased.
type BidEntry struct {
	ID            uint64         `json:"id"`
	Bidder        common.Address `json:"bidder"`
	OfferedAmount *big.Int       `json:"offered_amount"`
}

// Refundable reports whether the entry still holds escrowed funds.
func (e BidEntry) Refundable() bool {
	return e.OfferedAmount != nil && e.OfferedAmount.Sign() > 0
}

// Meta is the immutable configuration of an auction instance.
type Meta struct {
	AuctionID      string
	Auctioneer     common.Address
	BiddingEndTime time.Time
	Reserve        *big.Int
}

// Snapshot is a point-in-time view of the auction state.
type Snapshot struct {
	AuctionID      string         `json:"auction_id"`
	Auctioneer     common.Address `json:"auctioneer"`
	BiddingEndTime time.Time      `json:"bidding_end_time"`
	Reserve        *big.Int       `json:"reserve"`
	HighestBid     *big.Int       `json:"highest_bid"`
	HighestBidder  common.Address `json:"highest_bidder"`
	HighestEntry   uint64         `json:"highest_entry"`
	Ended          bool           `json:"ended"`
	Open           bool           `json:"open"`
	Escrowed       *big.Int       `json:"escrowed"`
	Bids           int            `json:"bids"`
}

// Settlement describes the payout made when an auction is finished. Winner is
// the zero address and Amount is zero when nobody bid.
type Settlement struct {
	Winner     common.Address `json:"winner"`
	Auctioneer common.Address `json:"auctioneer"`
	Amount     *big.Int       `json:"amount"`
	Entry      uint64         `json:"entry"`
}
