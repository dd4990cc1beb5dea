package perftests

import (
	"context"
	"math/big"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	auction "auction-ledger/internal/auctionService"
	"auction-ledger/internal/metrics"

	"github.com/gonum/stat"
	"github.com/prometheus/client_golang/prometheus"
)

// LoadScenario defines configurable benchmark parameters
type LoadScenario struct {
	Name          string
	NumBidders    int
	ReadRatio     int // out of 10
	WithdrawRatio int // out of 10, taken from the non-read share
	MaxIncrement  int64
	Burst         bool // if true, no delay between ops
}

// OperationMetrics collects latencies safely
type OperationMetrics struct {
	mu        sync.Mutex
	latencies []float64 // microseconds
}

func (om *OperationMetrics) Record(d time.Duration) {
	om.mu.Lock()
	om.latencies = append(om.latencies, float64(d.Nanoseconds())/1e3)
	om.mu.Unlock()
}

// Stats returns min, mean, max, p95 and p99 in microseconds
func (om *OperationMetrics) Stats() (min, mean, max, p95, p99 float64) {
	om.mu.Lock()
	defer om.mu.Unlock()
	if len(om.latencies) == 0 {
		return
	}
	sorted := append([]float64(nil), om.latencies...)
	sort.Float64s(sorted)

	min = sorted[0]
	max = sorted[len(sorted)-1]
	mean = stat.Mean(sorted, nil)
	p95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	p99 = stat.Quantile(0.99, stat.Empirical, sorted, nil)
	return
}

// Benchmark_Load_Auction runs the service layer under several mixes
func Benchmark_Load_Auction(b *testing.B) {
	scenarios := []LoadScenario{
		{Name: "WriteHeavy", NumBidders: 200, ReadRatio: 0, WithdrawRatio: 2, MaxIncrement: 50},
		{Name: "High-Contention-FewBidders", NumBidders: 5, ReadRatio: 2, WithdrawRatio: 3, MaxIncrement: 5},
		{Name: "Mixed-Workload", NumBidders: 100, ReadRatio: 6, WithdrawRatio: 3, MaxIncrement: 20},
		{Name: "ReadHeavy", NumBidders: 100, ReadRatio: 9, WithdrawRatio: 1, MaxIncrement: 20},
		{Name: "Peak-Burst", NumBidders: 500, ReadRatio: 3, WithdrawRatio: 2, MaxIncrement: 10, Burst: true},
	}

	for _, s := range scenarios {
		s := s
		b.Run(s.Name, func(b *testing.B) {
			runParallelScenario(b, s)
		})
	}
}

func runParallelScenario(b *testing.B, s LoadScenario) {
	b.ReportAllocs()

	a, tres := newAuction()
	m := metrics.New(prometheus.NewRegistry())
	svc := auction.NewAuctionService(a, auction.WithRecorder(m), auction.WithAccounts(tres))
	ctx := context.Background()

	bidders := make([]string, s.NumBidders)
	for i := range bidders {
		bidders[i] = bidder(i).Hex()
	}

	var totalOps, acceptedBids, rejectedBids, refunds, reads int64
	var ceiling, bidTotal int64
	lat := &OperationMetrics{}

	start := time.Now()

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

		for pb.Next() {
			who := bidders[rnd.Intn(len(bidders))]
			op := rnd.Intn(10)

			opStart := time.Now()
			switch {
			case op < s.ReadRatio:
				_ = svc.GetAuction()
				atomic.AddInt64(&reads, 1)
			case op < s.ReadRatio+s.WithdrawRatio:
				if _, err := svc.Withdraw(ctx, who); err == nil {
					atomic.AddInt64(&refunds, 1)
				}
			default:
				amount := atomic.AddInt64(&ceiling, rnd.Int63n(s.MaxIncrement)+1)
				if _, err := svc.PlaceBid(ctx, who, big.NewInt(amount)); err != nil {
					atomic.AddInt64(&rejectedBids, 1)
				} else {
					atomic.AddInt64(&acceptedBids, 1)
					atomic.AddInt64(&bidTotal, amount)
				}
			}
			lat.Record(time.Since(opStart))
			atomic.AddInt64(&totalOps, 1)

			if !s.Burst {
				time.Sleep(time.Millisecond)
			}
		}
	})

	elapsed := time.Since(start)
	min, mean, max, p95, p99 := lat.Stats()

	// escrow plus everything paid out equals everything bid
	held := new(big.Int).Add(a.Snapshot().Escrowed, tres.TotalPaid())
	if held.Cmp(big.NewInt(bidTotal)) != 0 {
		b.Fatalf("escrow not conserved: held %s, bid %d", held, bidTotal)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	b.Logf(
		"Scenario: %s | Bidders: %d | Total Ops: %d | Accepted: %d | Rejected: %d | Refunds: %d | Reads: %d | Elapsed: %s | Throughput: %.2f ops/sec | Latency(us) min: %.2f avg: %.2f max: %.2f p95: %.2f p99: %.2f | Escrow+Paid: %s | Memory Alloc: %.2f MB",
		s.Name, s.NumBidders, totalOps, acceptedBids, rejectedBids, refunds, reads, elapsed,
		float64(totalOps)/elapsed.Seconds(),
		min, mean, max, p95, p99,
		held.String(),
		float64(mem.Alloc)/1024/1024,
	)
}
