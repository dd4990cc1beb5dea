package auction

import (
	"context"
	"fmt"
	"math/big"

	"auction-ledger/internal/auctionerrors"
	"auction-ledger/internal/models"
	"auction-ledger/utils"

	"github.com/ethereum/go-ethereum/common"
)

//go:generate mockgen -destination=mock_contract.go -package=auction auction-ledger/internal/auctionService Contract

// Contract is the auction state machine the service drives
type Contract interface {
	PlaceBid(ctx context.Context, caller common.Address, amount *big.Int) (models.BidEntry, error)
	Withdraw(ctx context.Context, caller common.Address) (*big.Int, error)
	Finish(ctx context.Context, caller common.Address) (models.Settlement, error)
	ListOfBids(id uint64) (models.BidEntry, error)
	Bids() []models.BidEntry
	Snapshot() models.Snapshot
}

// Recorder counts rejected operations
type Recorder interface {
	Rejected(operation string, err error)
}

// EventSource reads committed events back
type EventSource interface {
	Events(from uint64) ([]models.Event, error)
}

// Accounts reports what each address has been paid
type Accounts interface {
	Balance(addr common.Address) *big.Int
}

// Option configures an AuctionService
type Option func(*AuctionService)

func WithRecorder(r Recorder) Option       { return func(s *AuctionService) { s.recorder = r } }
func WithEventSource(e EventSource) Option { return func(s *AuctionService) { s.events = e } }
func WithAccounts(a Accounts) Option       { return func(s *AuctionService) { s.accounts = a } }

// AuctionService defines the business logic in front of the auction contract
type AuctionService struct {
	contract Contract
	recorder Recorder
	events   EventSource
	accounts Accounts
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(contract Contract, opts ...Option) *AuctionService {
	s := &AuctionService{contract: contract}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceBid validates and submits a bid
func (s *AuctionService) PlaceBid(ctx context.Context, bidder string, amount *big.Int) (models.BidEntry, error) {
	caller, err := parseAddress(bidder)
	if err != nil {
		return models.BidEntry{}, s.reject("bid", err)
	}
	if amount == nil || amount.Sign() < 0 {
		return models.BidEntry{}, s.reject("bid", fmt.Errorf("service: %w - amount must be a non-negative integer", auctionerrors.ErrInvalidBid))
	}

	entry, err := s.contract.PlaceBid(ctx, caller, amount)
	if err != nil {
		return models.BidEntry{}, s.reject("bid", fmt.Errorf("service: failed to place bid of %s by %s: %w", amount, caller.Hex(), err))
	}

	utils.Info("service: new highest bid", map[string]any{
		"entry_id": entry.ID,
		"bidder":   caller.Hex(),
		"amount":   amount.String(),
	})
	return entry, nil
}

// Withdraw refunds every outbid entry of caller
func (s *AuctionService) Withdraw(ctx context.Context, callerHex string) (*big.Int, error) {
	caller, err := parseAddress(callerHex)
	if err != nil {
		return nil, s.reject("withdraw", err)
	}

	amount, err := s.contract.Withdraw(ctx, caller)
	if err != nil {
		return nil, s.reject("withdraw", fmt.Errorf("service: failed to withdraw for %s: %w", caller.Hex(), err))
	}

	utils.Info("service: bid withdrawn", map[string]any{
		"bidder": caller.Hex(),
		"amount": amount.String(),
	})
	return amount, nil
}

// Finish ends the auction on behalf of the auctioneer
func (s *AuctionService) Finish(ctx context.Context, callerHex string) (models.Settlement, error) {
	caller, err := parseAddress(callerHex)
	if err != nil {
		return models.Settlement{}, s.reject("finish", err)
	}

	settlement, err := s.contract.Finish(ctx, caller)
	if err != nil {
		return models.Settlement{}, s.reject("finish", fmt.Errorf("service: failed to finish auction as %s: %w", caller.Hex(), err))
	}

	utils.Info("service: auction finished", map[string]any{
		"winner": settlement.Winner.Hex(),
		"amount": settlement.Amount.String(),
	})
	return settlement, nil
}

// GetBid returns a ledger entry by its 1-based id
func (s *AuctionService) GetBid(id uint64) (models.BidEntry, error) {
	if id == 0 {
		return models.BidEntry{}, fmt.Errorf("service: %w - entry ids start at 1", auctionerrors.ErrEntryNotFound)
	}

	entry, err := s.contract.ListOfBids(id)
	if err != nil {
		return models.BidEntry{}, fmt.Errorf("service: failed to get bid %d: %w", id, err)
	}
	return entry, nil
}

// GetBids returns every ledger entry
func (s *AuctionService) GetBids() []models.BidEntry {
	return s.contract.Bids()
}

// GetAuction returns the current auction state
func (s *AuctionService) GetAuction() models.Snapshot {
	return s.contract.Snapshot()
}

// GetEvents returns committed events starting at sequence number from
func (s *AuctionService) GetEvents(from uint64) ([]models.Event, error) {
	if s.events == nil {
		return nil, nil
	}
	events, err := s.events.Events(from)
	if err != nil {
		return nil, fmt.Errorf("service: failed to read events from %d: %w", from, err)
	}
	return events, nil
}

// GetBalance returns the funds paid out to an address
func (s *AuctionService) GetBalance(addrHex string) (*big.Int, error) {
	addr, err := parseAddress(addrHex)
	if err != nil {
		return nil, err
	}
	if s.accounts == nil {
		return new(big.Int), nil
	}
	return s.accounts.Balance(addr), nil
}

// reject counts err against operation and returns it unchanged
func (s *AuctionService) reject(operation string, err error) error {
	if s.recorder != nil {
		s.recorder.Rejected(operation, err)
	}
	utils.Warn("service: operation rejected", map[string]any{
		"operation": operation,
		"error":     err.Error(),
	})
	return err
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("service: %w - %q is not a hex address", auctionerrors.ErrInvalidCaller, s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("service: %w - zero address", auctionerrors.ErrInvalidCaller)
	}
	return addr, nil
}
