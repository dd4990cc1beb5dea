package app

import (
	"fmt"

	auction "auction-ledger/internal/auctionService"
	"auction-ledger/internal/clock"
	"auction-ledger/internal/config"
	"auction-ledger/internal/contract"
	"auction-ledger/internal/journal"
	"auction-ledger/internal/metrics"
	"auction-ledger/internal/models"
	"auction-ledger/internal/server"
	"auction-ledger/internal/treasury"
	"auction-ledger/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is the fully wired auction: state machine, journal, payouts, metrics
// and HTTP router.
type App struct {
	Router   *gin.Engine
	Auction  *contract.Auction
	Service  *auction.AuctionService
	Journal  *journal.Journal
	Treasury *treasury.Treasury
	Hub      *server.Hub
	Registry *prometheus.Registry
	Clock    clock.Clock
}

// Option overrides a component Build would otherwise create from config
type Option func(*buildOptions)

type buildOptions struct {
	clock clock.Clock
}

// WithClock makes the auction use c instead of the configured clock source
func WithClock(c clock.Clock) Option {
	return func(o *buildOptions) { o.clock = c }
}

// Build wires every component from cfg and replays the journal. The caller
// owns the returned App and must Close it.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clk := o.clock
	if clk == nil {
		clk = NewClock(cfg.Clock)
	}

	j, err := openJournal(cfg.Storage)
	if err != nil {
		return nil, err
	}

	a, err := build(cfg, clk, j)
	if err != nil {
		_ = j.Close()
		return nil, err
	}
	return a, nil
}

func build(cfg config.Config, clk clock.Clock, j *journal.Journal) (*App, error) {
	auctioneer, err := cfg.AuctioneerAddress()
	if err != nil {
		return nil, err
	}
	end, err := cfg.Deadline(clk.Now())
	if err != nil {
		return nil, err
	}
	reserve, err := cfg.ReserveWei()
	if err != nil {
		return nil, err
	}

	// a restarted auction keeps its original id, deadline and reserve
	meta, err := j.EnsureMeta(models.Meta{
		AuctionID:      utils.GenerateID(),
		Auctioneer:     auctioneer,
		BiddingEndTime: end,
		Reserve:        reserve,
	})
	if err != nil {
		return nil, err
	}

	events, err := j.Events(0)
	if err != nil {
		return nil, err
	}

	tres := treasury.New()
	tres.Rebuild(events, meta.Auctioneer)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	hub := server.NewHub()

	// the journal comes first so an event is durable before anyone sees it
	ac := contract.New(meta, clk, tres,
		contract.WithSink(j),
		contract.WithSink(m),
		contract.WithSink(hub),
	)
	if err := ac.Replay(events); err != nil {
		return nil, fmt.Errorf("app: replay journal: %w", err)
	}
	m.Restore(ac.Snapshot())

	svc := auction.NewAuctionService(ac,
		auction.WithRecorder(m),
		auction.WithEventSource(j),
		auction.WithAccounts(tres),
	)

	utils.Info("auction ready", map[string]any{
		"auction_id":       meta.AuctionID,
		"auctioneer":       meta.Auctioneer.Hex(),
		"bidding_end_time": meta.BiddingEndTime.String(),
		"reserve":          meta.Reserve.String(),
		"replayed_events":  len(events),
	})

	return &App{
		Router:   server.SetupRouter(svc, hub, reg),
		Auction:  ac,
		Service:  svc,
		Journal:  j,
		Treasury: tres,
		Hub:      hub,
		Registry: reg,
		Clock:    clk,
	}, nil
}

// Close disconnects event subscribers and closes the journal
func (a *App) Close() error {
	a.Hub.Close()
	return a.Journal.Close()
}

// NewClock returns the configured clock. An NTP clock that cannot sync falls
// back to the system clock.
func NewClock(cfg config.ClockConfig) clock.Clock {
	if cfg.Source != "ntp" {
		return clock.System{}
	}
	c, err := clock.NewNTP(cfg.NTPServer)
	if err != nil {
		utils.Warn("ntp clock unavailable, using system clock", map[string]any{
			"ntp_server": cfg.NTPServer,
			"error":      err.Error(),
		})
		return clock.System{}
	}
	return c
}

func openJournal(cfg config.StorageConfig) (*journal.Journal, error) {
	if cfg.InMemory {
		return journal.OpenMemory()
	}
	return journal.Open(cfg.DataDir, cfg.Sync)
}
