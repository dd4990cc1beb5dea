package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-ledger/internal/auctionerrors"
	"auction-ledger/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "caller is not the auctioneer"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return http.StatusConflict, "auction has ended"
	case errors.Is(err, auctionerrors.ErrAuctionStillOpen):
		return http.StatusConflict, "auction is still open"
	case errors.Is(err, auctionerrors.ErrAlreadyFinished):
		return http.StatusConflict, "auction already finished"
	case errors.Is(err, auctionerrors.ErrSettlementPending):
		return http.StatusConflict, "settlement in progress"
	case errors.Is(err, auctionerrors.ErrNothingToWithdraw):
		return http.StatusNotFound, "nothing to withdraw"
	case errors.Is(err, auctionerrors.ErrEntryNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrInvalidCaller):
		return http.StatusBadRequest, "invalid address"
	case errors.Is(err, auctionerrors.ErrTransferFailed):
		return http.StatusBadGateway, "payout failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// WriteServiceError maps err and writes the error envelope. Rejected bids
// carry the amount the next bid must reach.
func WriteServiceError(c *gin.Context, err error) {
	status, message := MapErrorToHTTP(err)

	var tooLow *auctionerrors.BidTooLowError
	if errors.As(err, &tooLow) {
		utils.JSONErrorWithDetails(c, status, fmt.Errorf("%s: %w", message, err), message, BidTooLowDetails{
			Offered:     weiString(tooLow.Offered),
			Highest:     weiString(tooLow.Highest),
			MinimumNext: tooLow.MinimumNext().String(),
		})
		return
	}
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
