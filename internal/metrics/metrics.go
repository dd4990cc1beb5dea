package metrics

import (
	"errors"
	"math/big"

	"auction-ledger/internal/auctionerrors"
	"auction-ledger/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the auction collectors. It observes committed events as a
// sink and counts rejected operations reported by the service.
type Metrics struct {
	bidsAccepted prometheus.Counter
	withdrawals  prometheus.Counter
	rejections   *prometheus.CounterVec
	escrowed     prometheus.Gauge
	highestBid   prometheus.Gauge
	finished     prometheus.Gauge
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bidsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auction_bids_accepted_total",
			Help: "Counter of accepted bids",
		}),
		withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auction_withdrawals_total",
			Help: "Counter of successful refunds",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_rejections_total",
			Help: "Counter of rejected operations by operation and reason",
		}, []string{"operation", "reason"}),
		escrowed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auction_escrowed_wei",
			Help: "Funds currently held in escrow, in wei (float approximation)",
		}),
		highestBid: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auction_highest_bid_wei",
			Help: "Current highest bid, in wei (float approximation)",
		}),
		finished: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auction_finished",
			Help: "status of the auction (0-open or closed, 1-finished)",
		}),
	}
	reg.MustRegister(m.bidsAccepted, m.withdrawals, m.rejections, m.escrowed, m.highestBid, m.finished)
	return m
}

// Emit updates the collectors from a committed event. The escrow gauge is
// kept by adding and subtracting event amounts.
func (m *Metrics) Emit(ev models.Event) {
	switch ev.Kind {
	case models.EventNewHighestBid:
		m.bidsAccepted.Inc()
		m.highestBid.Set(weiFloat(ev.Amount))
		m.escrowed.Add(weiFloat(ev.Amount))
	case models.EventWithdrawBid:
		m.withdrawals.Inc()
		m.escrowed.Sub(weiFloat(ev.Amount))
	case models.EventAuctionFinished:
		m.finished.Set(1)
		m.escrowed.Sub(weiFloat(ev.Amount))
	}
}

// Rejected counts a failed operation under a stable reason label
func (m *Metrics) Rejected(operation string, err error) {
	m.rejections.WithLabelValues(operation, Reason(err)).Inc()
}

// Restore sets the gauges from a snapshot, used after journal replay
func (m *Metrics) Restore(s models.Snapshot) {
	m.escrowed.Set(weiFloat(s.Escrowed))
	m.highestBid.Set(weiFloat(s.HighestBid))
	if s.Ended {
		m.finished.Set(1)
	}
}

// Reason maps an operation error to a metric label
func Reason(err error) string {
	switch {
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return "auction_closed"
	case errors.Is(err, auctionerrors.ErrAuctionStillOpen):
		return "auction_still_open"
	case errors.Is(err, auctionerrors.ErrAlreadyFinished):
		return "already_finished"
	case errors.Is(err, auctionerrors.ErrSettlementPending):
		return "settlement_pending"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return "bid_too_low"
	case errors.Is(err, auctionerrors.ErrNothingToWithdraw):
		return "nothing_to_withdraw"
	case errors.Is(err, auctionerrors.ErrInvalidBid), errors.Is(err, auctionerrors.ErrInvalidCaller):
		return "invalid_input"
	case errors.Is(err, auctionerrors.ErrTransferFailed):
		return "transfer_failed"
	default:
		return "internal"
	}
}

func weiFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
