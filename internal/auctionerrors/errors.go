package auctionerrors

import (
	"errors"
	"fmt"
	"math/big"
)

// Lifecycle and authorization errors
var (
	ErrUnauthorized      = errors.New("caller is not the auctioneer")
	ErrAuctionClosed     = errors.New("the auction has ended")
	ErrAuctionStillOpen  = errors.New("the auction is still open")
	ErrAlreadyFinished   = errors.New("the auction is already finished")
	ErrNothingToWithdraw = errors.New("nothing to withdraw: already refunded, never outbid, or not a bidder")
	ErrSettlementPending = errors.New("the winning bid is being paid out")
)

// business logic errors
var (
	ErrBidTooLow     = errors.New("bid amount too low")
	ErrInvalidBid    = errors.New("invalid bid")
	ErrInvalidCaller = errors.New("invalid caller")
	ErrEntryNotFound = errors.New("bid entry not found")
)

// infrastructure errors
var (
	ErrTransferFailed  = errors.New("transfer failed")
	ErrJournalMismatch = errors.New("journal belongs to a different auction")
)

// BidTooLowError is returned when an offer does not strictly exceed the
// current highest bid, or is below the reserve while no bid has been accepted.
// It matches ErrBidTooLow under errors.Is.
type BidTooLowError struct {
	Offered *big.Int
	Highest *big.Int
	Reserve *big.Int
}

func (e *BidTooLowError) Error() string {
	if e.Highest.Sign() == 0 && e.Reserve != nil && e.Reserve.Sign() > 0 {
		return fmt.Sprintf("%s: offered %s, reserve is %s", ErrBidTooLow, e.Offered, e.Reserve)
	}
	return fmt.Sprintf("%s: offered %s, current highest bid is %s", ErrBidTooLow, e.Offered, e.Highest)
}

func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}

// MinimumNext returns the smallest amount that would currently be accepted.
func (e *BidTooLowError) MinimumNext() *big.Int {
	next := new(big.Int).Add(e.Highest, big.NewInt(1))
	if e.Highest.Sign() == 0 && e.Reserve != nil && e.Reserve.Cmp(next) > 0 {
		return new(big.Int).Set(e.Reserve)
	}
	return next
}
