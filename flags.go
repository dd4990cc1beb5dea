package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML configuration file",
	}
	portFlag = cli.StringFlag{
		Name:   "port",
		Usage:  "HTTP listening port",
		EnvVar: "PORT",
	}
	dataDirFlag = cli.StringFlag{
		Name:   "datadir",
		Usage:  "directory for the event journal",
		EnvVar: "AUCTION_DATA_DIR",
	}
	inMemoryFlag = cli.BoolFlag{
		Name:  "in-memory",
		Usage: "keep the journal in memory; state is lost on exit",
	}
	auctioneerFlag = cli.StringFlag{
		Name:   "auctioneer",
		Usage:  "address allowed to finish the auction and receive the winning bid",
		EnvVar: "AUCTIONEER",
	}
	biddingTimeFlag = cli.StringFlag{
		Name:  "bidding-time",
		Usage: "how long bidding stays open from first start, e.g. 90m",
	}
	reserveFlag = cli.StringFlag{
		Name:  "reserve",
		Usage: "minimum first bid in wei",
	}
	clockFlag = cli.StringFlag{
		Name:  "clock",
		Usage: "time source (system|ntp)",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Usage: "NTP server queried when --clock=ntp",
	}
	logLevelFlag = cli.StringFlag{
		Name:   "log-level",
		Usage:  "log level (debug|info|warn|error)",
		EnvVar: "LOG_LEVEL",
	}
)
