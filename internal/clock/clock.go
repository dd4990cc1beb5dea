package clock

import (
	"fmt"
	"sync"
	"time"

	"auction-ledger/utils"

	"github.com/beevik/ntp"
)

// Clock supplies the current time used to decide whether bidding is open.
type Clock interface {
	Now() time.Time
}

// System reads the local wall clock
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Manual is a clock that only moves when told to. It is used by tests and by
// replay tooling.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual creates a manual clock set to t
func NewManual(t time.Time) *Manual {
	return &Manual{now: t.UTC()}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d; negative values are ignored
func (m *Manual) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Set moves the clock to t unless that would move it backwards
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	if t.After(m.now) {
		m.now = t.UTC()
	}
	m.mu.Unlock()
}

// queryFunc matches ntp.Query and is swapped in tests
type queryFunc func(host string) (*ntp.Response, error)

// NTP is the local clock corrected by the offset reported by an NTP server.
// It never returns a time earlier than one it already returned, even when a
// later sync shrinks the offset.
type NTP struct {
	host  string
	query queryFunc

	mu     sync.Mutex
	offset time.Duration
	last   time.Time
	local  func() time.Time
}

// NewNTP creates an NTP clock and performs the first sync. A failed first sync
// is returned so the caller can decide whether to fall back to System.
func NewNTP(host string) (*NTP, error) {
	c := &NTP{host: host, query: ntp.Query, local: time.Now}
	if err := c.Sync(); err != nil {
		return nil, err
	}
	return c, nil
}

// Sync refreshes the clock offset from the server
func (c *NTP) Sync() error {
	resp, err := c.query(c.host)
	if err != nil {
		return fmt.Errorf("clock: ntp query %s: %w", c.host, err)
	}
	if err := resp.Validate(); err != nil {
		return fmt.Errorf("clock: ntp response from %s: %w", c.host, err)
	}

	c.mu.Lock()
	c.offset = resp.ClockOffset
	c.mu.Unlock()

	utils.Info("ntp clock synced", map[string]any{
		"host":   c.host,
		"offset": resp.ClockOffset.String(),
	})
	return nil
}

// Offset returns the last measured offset
func (c *NTP) Offset() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

func (c *NTP) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.local().Add(c.offset).UTC()
	if now.Before(c.last) {
		return c.last
	}
	c.last = now
	return now
}
