package metrics

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"auction-ledger/internal/auctionerrors"
	"auction-ledger/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Emit(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.Emit(models.Event{Seq: 1, Kind: models.EventNewHighestBid, Amount: big.NewInt(100)})
	m.Emit(models.Event{Seq: 2, Kind: models.EventNewHighestBid, Amount: big.NewInt(250)})
	m.Emit(models.Event{Seq: 3, Kind: models.EventWithdrawBid, Amount: big.NewInt(100)})

	require.Equal(t, 2.0, testutil.ToFloat64(m.bidsAccepted))
	require.Equal(t, 1.0, testutil.ToFloat64(m.withdrawals))
	require.Equal(t, 250.0, testutil.ToFloat64(m.highestBid))
	require.Equal(t, 250.0, testutil.ToFloat64(m.escrowed))
	require.Equal(t, 0.0, testutil.ToFloat64(m.finished))

	m.Emit(models.Event{Seq: 4, Kind: models.EventAuctionFinished, Amount: big.NewInt(250)})
	require.Equal(t, 0.0, testutil.ToFloat64(m.escrowed))
	require.Equal(t, 1.0, testutil.ToFloat64(m.finished))
}

func TestMetrics_Rejected(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	tooLow := &auctionerrors.BidTooLowError{Offered: big.NewInt(1), Highest: big.NewInt(1), Reserve: new(big.Int)}

	m.Rejected("bid", fmt.Errorf("service: %w", tooLow))
	m.Rejected("bid", auctionerrors.ErrAuctionClosed)
	m.Rejected("finish", auctionerrors.ErrUnauthorized)

	require.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("bid", "bid_too_low")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("bid", "auction_closed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("finish", "unauthorized")))
}

func TestReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{err: auctionerrors.ErrUnauthorized, want: "unauthorized"},
		{err: auctionerrors.ErrAuctionClosed, want: "auction_closed"},
		{err: auctionerrors.ErrAuctionStillOpen, want: "auction_still_open"},
		{err: auctionerrors.ErrAlreadyFinished, want: "already_finished"},
		{err: auctionerrors.ErrSettlementPending, want: "settlement_pending"},
		{err: auctionerrors.ErrNothingToWithdraw, want: "nothing_to_withdraw"},
		{err: fmt.Errorf("wrapped: %w", auctionerrors.ErrInvalidCaller), want: "invalid_input"},
		{err: fmt.Errorf("%w: %w", auctionerrors.ErrTransferFailed, errors.New("io")), want: "transfer_failed"},
		{err: errors.New("boom"), want: "internal"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.want, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Reason(tc.err))
		})
	}
}
