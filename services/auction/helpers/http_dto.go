package helpers

import (
	"math/big"
	"time"

	"auction-ledger/internal/models"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	Bidder string `json:"bidder" binding:"required"`
	Amount string `json:"amount" binding:"required"`
	Unit   string `json:"unit"` // "wei" (default), "gwei" or "ether"
}

// CallerRequest is the body of POST /withdrawals and POST /finish
type CallerRequest struct {
	Caller string `json:"caller" binding:"required"`
}

type BidResponse struct {
	ID          uint64 `json:"id"`
	Bidder      string `json:"bidder"`
	Amount      string `json:"amount"`
	AmountEther string `json:"amount_ether"`
	Refundable  bool   `json:"refundable"`
}

type WithdrawResponse struct {
	Caller      string `json:"caller"`
	Amount      string `json:"amount"`
	AmountEther string `json:"amount_ether"`
}

type SettlementResponse struct {
	Winner      string `json:"winner"`
	Auctioneer  string `json:"auctioneer"`
	Amount      string `json:"amount"`
	AmountEther string `json:"amount_ether"`
	Entry       uint64 `json:"entry"`
}

type AuctionResponse struct {
	AuctionID      string `json:"auction_id"`
	Auctioneer     string `json:"auctioneer"`
	BiddingEndTime string `json:"bidding_end_time"`
	Reserve        string `json:"reserve"`
	HighestBid     string `json:"highest_bid"`
	HighestBidder  string `json:"highest_bidder"`
	HighestEntry   uint64 `json:"highest_entry"`
	Ended          bool   `json:"ended"`
	Open           bool   `json:"open"`
	Escrowed       string `json:"escrowed"`
	Bids           int    `json:"bids"`
}

type EventResponse struct {
	Seq     uint64   `json:"seq"`
	Kind    string   `json:"kind"`
	Account string   `json:"account"`
	Amount  string   `json:"amount"`
	Entries []uint64 `json:"entries"`
	Time    string   `json:"time"`
}

type BalanceResponse struct {
	Address      string `json:"address"`
	Balance      string `json:"balance"`
	BalanceEther string `json:"balance_ether"`
}

// BidTooLowDetails is attached to 409 responses for rejected bids
type BidTooLowDetails struct {
	Offered     string `json:"offered"`
	Highest     string `json:"highest"`
	MinimumNext string `json:"minimum_next"`
}

func NewBidResponse(e models.BidEntry) BidResponse {
	return BidResponse{
		ID:          e.ID,
		Bidder:      e.Bidder.Hex(),
		Amount:      weiString(e.OfferedAmount),
		AmountEther: FormatEther(e.OfferedAmount),
		Refundable:  e.Refundable(),
	}
}

func NewBidResponses(entries []models.BidEntry) []BidResponse {
	out := make([]BidResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewBidResponse(e))
	}
	return out
}

func NewSettlementResponse(s models.Settlement) SettlementResponse {
	return SettlementResponse{
		Winner:      s.Winner.Hex(),
		Auctioneer:  s.Auctioneer.Hex(),
		Amount:      weiString(s.Amount),
		AmountEther: FormatEther(s.Amount),
		Entry:       s.Entry,
	}
}

func NewAuctionResponse(s models.Snapshot) AuctionResponse {
	return AuctionResponse{
		AuctionID:      s.AuctionID,
		Auctioneer:     s.Auctioneer.Hex(),
		BiddingEndTime: s.BiddingEndTime.UTC().Format(time.RFC3339),
		Reserve:        weiString(s.Reserve),
		HighestBid:     weiString(s.HighestBid),
		HighestBidder:  s.HighestBidder.Hex(),
		HighestEntry:   s.HighestEntry,
		Ended:          s.Ended,
		Open:           s.Open,
		Escrowed:       weiString(s.Escrowed),
		Bids:           s.Bids,
	}
}

func NewEventResponse(ev models.Event) EventResponse {
	entries := ev.Entries
	if entries == nil {
		entries = []uint64{}
	}
	return EventResponse{
		Seq:     ev.Seq,
		Kind:    ev.Kind.String(),
		Account: ev.Account.Hex(),
		Amount:  weiString(ev.Amount),
		Entries: entries,
		Time:    ev.At().Format(time.RFC3339Nano),
	}
}

func NewEventResponses(events []models.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, NewEventResponse(ev))
	}
	return out
}

func weiString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
