package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full service configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auction AuctionConfig `yaml:"auction"`
	Storage StorageConfig `yaml:"storage"`
	Clock   ClockConfig   `yaml:"clock"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type AuctionConfig struct {
	Auctioneer  string `yaml:"auctioneer"`
	BiddingTime string `yaml:"bidding_time"` // Go duration, counted from startup
	EndTime     string `yaml:"end_time"`     // RFC 3339, takes precedence over bidding_time
	Reserve     string `yaml:"reserve"`      // wei
}

type StorageConfig struct {
	DataDir  string `yaml:"data_dir"`
	Sync     bool   `yaml:"sync"`
	InMemory bool   `yaml:"in_memory"`
}

type ClockConfig struct {
	Source    string `yaml:"source"` // "system" or "ntp"
	NTPServer string `yaml:"ntp_server"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		Server:  ServerConfig{Port: "8080"},
		Auction: AuctionConfig{BiddingTime: "1h", Reserve: "0"},
		Storage: StorageConfig{DataDir: "./data", Sync: true},
		Clock:   ClockConfig{Source: "system", NTPServer: "pool.ntp.org"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads defaults, then the YAML file at path (if any), then environment
// overrides
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides fields from PORT, LOG_LEVEL, AUCTION_DATA_DIR and
// AUCTIONEER when they are set
func (c *Config) ApplyEnv(getenv func(string) string) {
	if p := getenv("PORT"); p != "" {
		c.Server.Port = p
	}
	if l := getenv("LOG_LEVEL"); l != "" {
		c.Log.Level = l
	}
	if d := getenv("AUCTION_DATA_DIR"); d != "" {
		c.Storage.DataDir = d
	}
	if a := getenv("AUCTIONEER"); a != "" {
		c.Auction.Auctioneer = a
	}
}

// Validate checks every field that can be checked without side effects
func (c Config) Validate() error {
	if _, err := c.AuctioneerAddress(); err != nil {
		return err
	}
	if _, err := c.Deadline(time.Now()); err != nil {
		return err
	}
	if _, err := c.ReserveWei(); err != nil {
		return err
	}
	if c.Server.Port == "" {
		return fmt.Errorf("config: %w - empty server port", ErrInvalidConfig)
	}
	switch c.Clock.Source {
	case "system":
	case "ntp":
		if c.Clock.NTPServer == "" {
			return fmt.Errorf("config: %w - ntp clock without ntp_server", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("config: %w - unknown clock source %q", ErrInvalidConfig, c.Clock.Source)
	}
	if !c.Storage.InMemory && c.Storage.DataDir == "" {
		return fmt.Errorf("config: %w - empty data_dir", ErrInvalidConfig)
	}
	return nil
}

// AuctioneerAddress parses the configured auctioneer
func (c Config) AuctioneerAddress() (common.Address, error) {
	if !common.IsHexAddress(c.Auction.Auctioneer) {
		return common.Address{}, fmt.Errorf("config: %w - auctioneer %q is not a hex address", ErrInvalidConfig, c.Auction.Auctioneer)
	}
	addr := common.HexToAddress(c.Auction.Auctioneer)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("config: %w - zero auctioneer address", ErrInvalidConfig)
	}
	return addr, nil
}

// Deadline resolves the bidding end time relative to now
func (c Config) Deadline(now time.Time) (time.Time, error) {
	if c.Auction.EndTime != "" {
		end, err := time.Parse(time.RFC3339, c.Auction.EndTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("config: %w - end_time: %v", ErrInvalidConfig, err)
		}
		return end.UTC(), nil
	}
	d, err := time.ParseDuration(c.Auction.BiddingTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: %w - bidding_time: %v", ErrInvalidConfig, err)
	}
	if d <= 0 {
		return time.Time{}, fmt.Errorf("config: %w - bidding_time must be positive", ErrInvalidConfig)
	}
	return now.Add(d).UTC(), nil
}

// ReserveWei parses the reserve as a non-negative integer amount of wei
func (c Config) ReserveWei() (*big.Int, error) {
	s := strings.TrimSpace(c.Auction.Reserve)
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("config: %w - reserve %q is not a non-negative integer", ErrInvalidConfig, c.Auction.Reserve)
	}
	return v, nil
}

// ListenAddr returns the address the HTTP server binds to
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%s", strings.TrimPrefix(c.Server.Port, ":"))
}
