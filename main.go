package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-ledger/internal/app"
	"auction-ledger/internal/clock"
	"auction-ledger/internal/config"
	"auction-ledger/utils"

	"github.com/gin-gonic/gin"
	cli "gopkg.in/urfave/cli.v1"
)

const (
	shutdownTimeout = 10 * time.Second
	ntpResync       = 10 * time.Minute
)

func main() {
	cliApp := cli.App{
		Name:  "auction-ledger",
		Usage: "sealed-clock auction with escrowed bids",
		Flags: []cli.Flag{
			configFlag,
			portFlag,
			dataDirFlag,
			inMemoryFlag,
			auctioneerFlag,
			biddingTimeFlag,
			reserveFlag,
			clockFlag,
			ntpServerFlag,
			logLevelFlag,
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	applyFlags(ctx, &cfg)

	if err := utils.SetLevel(cfg.Log.Level); err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	a, err := app.Build(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			utils.Error("failed to close journal", map[string]any{"error": err.Error()})
		}
	}()

	exit := handleExitSignal()
	if ntpClock, ok := a.Clock.(*clock.NTP); ok {
		go resyncLoop(exit, ntpClock)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Info("starting auction server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-exit.Done():
	}

	a.Hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	utils.Info("auction server stopped", nil)
	return nil
}

// applyFlags lets command-line flags override file and environment settings
func applyFlags(ctx *cli.Context, cfg *config.Config) {
	if v := ctx.String(portFlag.Name); v != "" {
		cfg.Server.Port = v
	}
	if v := ctx.String(dataDirFlag.Name); v != "" {
		cfg.Storage.DataDir = v
	}
	if ctx.Bool(inMemoryFlag.Name) {
		cfg.Storage.InMemory = true
	}
	if v := ctx.String(auctioneerFlag.Name); v != "" {
		cfg.Auction.Auctioneer = v
	}
	if v := ctx.String(biddingTimeFlag.Name); v != "" {
		cfg.Auction.BiddingTime = v
	}
	if v := ctx.String(reserveFlag.Name); v != "" {
		cfg.Auction.Reserve = v
	}
	if v := ctx.String(clockFlag.Name); v != "" {
		cfg.Clock.Source = v
	}
	if v := ctx.String(ntpServerFlag.Name); v != "" {
		cfg.Clock.NTPServer = v
	}
	if v := ctx.String(logLevelFlag.Name); v != "" {
		cfg.Log.Level = v
	}
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		utils.Info("exit signal received", map[string]any{"signal": sig.String()})
		cancel()
	}()
	return ctx
}

func resyncLoop(ctx context.Context, c *clock.NTP) {
	ticker := time.NewTicker(ntpResync)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Sync(); err != nil {
				utils.Warn("ntp resync failed", map[string]any{"error": err.Error()})
			}
		}
	}
}
