package contract

import (
	"math/big"
	"time"

	"auction-ledger/internal/auctionerrors"

	"github.com/ethereum/go-ethereum/common"
)

// AuctionState is the lifecycle gate every operation consults.
// The zero highestBidder means no bid has been accepted yet.
type AuctionState struct {
	auctioneer     common.Address
	biddingEndTime time.Time
	reserve        *big.Int

	ended         bool
	settling      bool
	highestBid    *big.Int
	highestBidder common.Address
	highestEntry  uint64
}

func newAuctionState(auctioneer common.Address, end time.Time, reserve *big.Int) *AuctionState {
	if reserve == nil {
		reserve = new(big.Int)
	}
	return &AuctionState{
		auctioneer:     auctioneer,
		biddingEndTime: end,
		reserve:        new(big.Int).Set(reserve),
		highestBid:     new(big.Int),
	}
}

func (s *AuctionState) isOpen(now time.Time) bool {
	return now.Before(s.biddingEndTime) && !s.ended
}

func (s *AuctionState) requireAuctioneer(caller common.Address) error {
	if caller != s.auctioneer {
		return auctionerrors.ErrUnauthorized
	}
	return nil
}

func (s *AuctionState) requireOpen(now time.Time) error {
	if !s.isOpen(now) {
		return auctionerrors.ErrAuctionClosed
	}
	return nil
}

func (s *AuctionState) requireClosed(now time.Time) error {
	if now.Before(s.biddingEndTime) {
		return auctionerrors.ErrAuctionStillOpen
	}
	return nil
}

func (s *AuctionState) requireNotEnded() error {
	if s.settling {
		return auctionerrors.ErrSettlementPending
	}
	if s.ended {
		return auctionerrors.ErrAlreadyFinished
	}
	return nil
}

// requireOutbids checks amount against the current highest bid, and against
// the reserve while nothing has been accepted.
func (s *AuctionState) requireOutbids(amount *big.Int) error {
	tooLow := amount.Cmp(s.highestBid) <= 0
	if !s.hasBid() && amount.Cmp(s.reserve) < 0 {
		tooLow = true
	}
	if tooLow {
		return &auctionerrors.BidTooLowError{
			Offered: new(big.Int).Set(amount),
			Highest: new(big.Int).Set(s.highestBid),
			Reserve: new(big.Int).Set(s.reserve),
		}
	}
	return nil
}

// requireUnlocked refuses a withdrawal by the bidder whose entry backs the
// highest bid until the auction has been settled.
func (s *AuctionState) requireUnlocked(caller common.Address) error {
	if !s.hasBid() || caller != s.highestBidder {
		return nil
	}
	if s.settling {
		return auctionerrors.ErrSettlementPending
	}
	if !s.ended {
		return auctionerrors.ErrNothingToWithdraw
	}
	return nil
}

func (s *AuctionState) hasBid() bool {
	return s.highestEntry != 0
}

func (s *AuctionState) advance(bidder common.Address, amount *big.Int, entry uint64) {
	s.highestBid = new(big.Int).Set(amount)
	s.highestBidder = bidder
	s.highestEntry = entry
}
