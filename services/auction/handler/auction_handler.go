package handler

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"auction-ledger/internal/auctionerrors"
	"auction-ledger/internal/models"
	"auction-ledger/services/auction/helpers"
	"auction-ledger/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=auction_handler.go -destination=mock_auction_service.go -package=handler

type AuctionServiceInterface interface {
	PlaceBid(ctx context.Context, bidder string, amount *big.Int) (models.BidEntry, error)
	Withdraw(ctx context.Context, caller string) (*big.Int, error)
	Finish(ctx context.Context, caller string) (models.Settlement, error)
	GetBid(id uint64) (models.BidEntry, error)
	GetBids() []models.BidEntry
	GetAuction() models.Snapshot
	GetEvents(from uint64) ([]models.Event, error)
	GetBalance(addr string) (*big.Int, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// RecordBidHandler handles POST /bids
func (h *AuctionHandler) RecordBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RecordBidHandler", err)
		return
	}

	amount, err := helpers.ParseAmount(req.Amount, req.Unit)
	if err != nil {
		helpers.WriteServiceError(c, err)
		utils.Warn("RecordBidHandler: invalid amount", map[string]any{
			"bidder": req.Bidder,
			"amount": req.Amount,
			"unit":   req.Unit,
			"error":  err.Error(),
		})
		return
	}

	entry, err := h.service.PlaceBid(c.Request.Context(), req.Bidder, amount)
	if err != nil {
		helpers.WriteServiceError(c, err)
		utils.Error("RecordBidHandler: failed to record bid", map[string]any{
			"handler": "RecordBidHandler",
			"bidder":  req.Bidder,
			"amount":  amount.String(),
			"error":   err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(entry), "bid recorded successfully")
	helpers.LogSuccess("RecordBidHandler", "bid recorded successfully", map[string]any{
		"entry_id": entry.ID,
		"bidder":   req.Bidder,
		"amount":   amount.String(),
	})
}

// GetBidsHandler handles GET /bids
func (h *AuctionHandler) GetBidsHandler(c *gin.Context) {
	bids := helpers.NewBidResponses(h.service.GetBids())

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsHandler", "bids retrieved successfully", map[string]any{
		"count": len(bids),
	})
}

// GetBidHandler handles GET /bids/:id
func (h *AuctionHandler) GetBidHandler(c *gin.Context) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		wrapped := fmt.Errorf("%w - bid id %q: %v", auctionerrors.ErrEntryNotFound, raw, err)
		utils.JSONError(c, http.StatusBadRequest, wrapped, "invalid bid id")
		utils.Warn("GetBidHandler: invalid bid id", map[string]any{"id": raw})
		return
	}

	entry, err := h.service.GetBid(id)
	if err != nil {
		helpers.WriteServiceError(c, err)
		utils.Warn("GetBidHandler: error retrieving bid", map[string]any{"id": id, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(entry), "bid retrieved successfully")
	helpers.LogSuccess("GetBidHandler", "bid retrieved successfully", map[string]any{"id": id})
}

// WithdrawHandler handles POST /withdrawals
func (h *AuctionHandler) WithdrawHandler(c *gin.Context) {
	var req helpers.CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "WithdrawHandler", err)
		return
	}

	amount, err := h.service.Withdraw(c.Request.Context(), req.Caller)
	if err != nil {
		helpers.WriteServiceError(c, err)
		utils.Warn("WithdrawHandler: withdrawal rejected", map[string]any{
			"caller": req.Caller,
			"error":  err.Error(),
		})
		return
	}

	resp := helpers.WithdrawResponse{
		Caller:      req.Caller,
		Amount:      amount.String(),
		AmountEther: helpers.FormatEther(amount),
	}
	utils.JSONResponse(c, http.StatusOK, resp, "bid withdrawn successfully")
	helpers.LogSuccess("WithdrawHandler", "bid withdrawn successfully", map[string]any{
		"caller": req.Caller,
		"amount": amount.String(),
	})
}

// FinishHandler handles POST /finish
func (h *AuctionHandler) FinishHandler(c *gin.Context) {
	var req helpers.CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "FinishHandler", err)
		return
	}

	settlement, err := h.service.Finish(c.Request.Context(), req.Caller)
	if err != nil {
		helpers.WriteServiceError(c, err)
		utils.Warn("FinishHandler: finish rejected", map[string]any{
			"caller": req.Caller,
			"error":  err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewSettlementResponse(settlement), "auction finished successfully")
	helpers.LogSuccess("FinishHandler", "auction finished successfully", map[string]any{
		"winner": settlement.Winner.Hex(),
		"amount": settlement.Amount.String(),
	})
}

// GetAuctionHandler handles GET /auction
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(h.service.GetAuction()), "auction retrieved successfully")
}

// GetBalanceHandler handles GET /accounts/:address/balance
func (h *AuctionHandler) GetBalanceHandler(c *gin.Context) {
	address := c.Param("address")
	balance, err := h.service.GetBalance(address)
	if err != nil {
		helpers.WriteServiceError(c, err)
		utils.Warn("GetBalanceHandler: error retrieving balance", map[string]any{"address": address, "error": err.Error()})
		return
	}

	resp := helpers.BalanceResponse{
		Address:      address,
		Balance:      balance.String(),
		BalanceEther: helpers.FormatEther(balance),
	}
	utils.JSONResponse(c, http.StatusOK, resp, "balance retrieved successfully")
}

// GetEventsHandler handles GET /events?from=N
func (h *AuctionHandler) GetEventsHandler(c *gin.Context) {
	var from uint64
	if raw := c.Query("from"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid from %q: %w", raw, err), "invalid from parameter")
			return
		}
		from = v
	}

	events, err := h.service.GetEvents(from)
	if err != nil {
		helpers.WriteServiceError(c, err)
		utils.Error("GetEventsHandler: error reading events", map[string]any{"from": from, "error": err.Error()})
		return
	}

	resp := helpers.NewEventResponses(events)
	utils.JSONResponse(c, http.StatusOK, resp, "events retrieved successfully")
	helpers.LogSuccess("GetEventsHandler", "events retrieved successfully", map[string]any{
		"from":  from,
		"count": len(resp),
	})
}
