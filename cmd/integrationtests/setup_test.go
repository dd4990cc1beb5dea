package integrationtests

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"auction-ledger/internal/app"
	"auction-ledger/internal/clock"
	"auction-ledger/internal/config"
	"auction-ledger/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	auctioneerHex = "0x000000000000000000000000000000000000A0c7"
	aliceHex      = "0x00000000000000000000000000000000000A11cE"
	bobHex        = "0x0000000000000000000000000000000000000b0B"
	carolHex      = "0x00000000000000000000000000000000000C4501"
)

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetOutput(io.Discard)
}

// testConfig returns an in-memory auction that closes one minute after start
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Auction.Auctioneer = auctioneerHex
	cfg.Auction.BiddingTime = "1m"
	cfg.Storage.InMemory = true
	return cfg
}

// SetupTestApp builds the full application with a manual clock
func SetupTestApp(t *testing.T, cfg config.Config) (*app.App, *clock.Manual) {
	t.Helper()

	clk := clock.NewManual(start)
	a, err := app.Build(cfg, app.WithClock(clk))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, clk
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// data returns the "data" object of a response envelope
func data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	d, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return d
}
