package auction

import (
	"context"
	"errors"
	"io"
	"math/big"
	"sync"
	"testing"

	"auction-ledger/internal/auctionerrors"
	"auction-ledger/internal/models"
	"auction-ledger/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

const (
	auctioneerHex = "0x000000000000000000000000000000000000a0c7"
	aliceHex      = "0x00000000000000000000000000000000000a11ce"
	bobHex        = "0x0000000000000000000000000000000000000b0b"
)

func init() {
	utils.SetOutput(io.Discard)
}

// recorder captures Rejected calls
type recorder struct {
	mu   sync.Mutex
	seen []string
}

func (r *recorder) Rejected(operation string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, operation)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

type fakeEvents struct {
	events []models.Event
	err    error
}

func (f fakeEvents) Events(from uint64) ([]models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Event
	for _, ev := range f.events {
		if ev.Seq >= from {
			out = append(out, ev)
		}
	}
	return out, nil
}

type fakeAccounts map[common.Address]*big.Int

func (f fakeAccounts) Balance(addr common.Address) *big.Int {
	if v, ok := f[addr]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Tests PlaceBid
func TestAuctionService_PlaceBid(t *testing.T) {
	t.Parallel()

	alice := common.HexToAddress(aliceHex)

	tests := []struct {
		name          string
		bidder        string
		amount        *big.Int
		mockSetup     func(m *MockContract)
		expectError   bool
		expectedError error
		rejected      int
	}{
		{
			name:   "valid_bid",
			bidder: aliceHex,
			amount: big.NewInt(100),
			mockSetup: func(m *MockContract) {
				m.EXPECT().PlaceBid(gomock.Any(), alice, big.NewInt(100)).
					Return(models.BidEntry{ID: 1, Bidder: alice, OfferedAmount: big.NewInt(100)}, nil)
			},
		},
		{
			name:          "malformed_bidder",
			bidder:        "alice",
			amount:        big.NewInt(100),
			mockSetup:     func(m *MockContract) {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidCaller,
			rejected:      1,
		},
		{
			name:          "zero_bidder",
			bidder:        "0x0000000000000000000000000000000000000000",
			amount:        big.NewInt(100),
			mockSetup:     func(m *MockContract) {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidCaller,
			rejected:      1,
		},
		{
			name:          "nil_amount",
			bidder:        aliceHex,
			mockSetup:     func(m *MockContract) {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidBid,
			rejected:      1,
		},
		{
			name:          "negative_amount",
			bidder:        aliceHex,
			amount:        big.NewInt(-1),
			mockSetup:     func(m *MockContract) {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidBid,
			rejected:      1,
		},
		{
			name:   "zero_amount_reaches_auction",
			bidder: aliceHex,
			amount: new(big.Int),
			mockSetup: func(m *MockContract) {
				m.EXPECT().PlaceBid(gomock.Any(), alice, new(big.Int)).
					Return(models.BidEntry{}, &auctionerrors.BidTooLowError{Offered: new(big.Int), Highest: new(big.Int), Reserve: new(big.Int)})
			},
			expectError:   true,
			expectedError: auctionerrors.ErrBidTooLow,
			rejected:      1,
		},
		{
			name:   "zero_amount_after_deadline",
			bidder: aliceHex,
			amount: new(big.Int),
			mockSetup: func(m *MockContract) {
				m.EXPECT().PlaceBid(gomock.Any(), alice, new(big.Int)).
					Return(models.BidEntry{}, auctionerrors.ErrAuctionClosed)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrAuctionClosed,
			rejected:      1,
		},
		{
			name:   "bid_too_low",
			bidder: aliceHex,
			amount: big.NewInt(50),
			mockSetup: func(m *MockContract) {
				m.EXPECT().PlaceBid(gomock.Any(), alice, gomock.Any()).
					Return(models.BidEntry{}, &auctionerrors.BidTooLowError{Offered: big.NewInt(50), Highest: big.NewInt(100), Reserve: new(big.Int)})
			},
			expectError:   true,
			expectedError: auctionerrors.ErrBidTooLow,
			rejected:      1,
		},
		{
			name:   "auction_closed",
			bidder: aliceHex,
			amount: big.NewInt(500),
			mockSetup: func(m *MockContract) {
				m.EXPECT().PlaceBid(gomock.Any(), alice, gomock.Any()).
					Return(models.BidEntry{}, auctionerrors.ErrAuctionClosed)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrAuctionClosed,
			rejected:      1,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // Run tests concurrently

			ctrl := gomock.NewController(t)
			mockContract := NewMockContract(ctrl)
			rec := &recorder{}
			service := NewAuctionService(mockContract, WithRecorder(rec))

			tc.mockSetup(mockContract)

			entry, err := service.PlaceBid(context.Background(), tc.bidder, tc.amount)
			require.Equal(t, tc.rejected, rec.count())

			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				}
				return
			}
			require.NoError(t, err)
			require.Equal(t, uint64(1), entry.ID)
			require.Equal(t, alice, entry.Bidder)
		})
	}
}

func TestAuctionService_BidTooLowKeepsDetails(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockContract := NewMockContract(ctrl)
	service := NewAuctionService(mockContract)

	mockContract.EXPECT().PlaceBid(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.BidEntry{}, &auctionerrors.BidTooLowError{Offered: big.NewInt(5), Highest: big.NewInt(9), Reserve: new(big.Int)})

	_, err := service.PlaceBid(context.Background(), bobHex, big.NewInt(5))

	var tooLow *auctionerrors.BidTooLowError
	require.True(t, errors.As(err, &tooLow))
	require.Equal(t, "9", tooLow.Highest.String())
}

// Tests Withdraw
func TestAuctionService_Withdraw(t *testing.T) {
	t.Parallel()

	bob := common.HexToAddress(bobHex)

	tests := []struct {
		name          string
		caller        string
		mockSetup     func(m *MockContract)
		expectError   bool
		expectedError error
		expected      string
	}{
		{
			name:   "refund",
			caller: bobHex,
			mockSetup: func(m *MockContract) {
				m.EXPECT().Withdraw(gomock.Any(), bob).Return(big.NewInt(1000), nil)
			},
			expected: "1000",
		},
		{
			name:   "nothing_to_withdraw",
			caller: bobHex,
			mockSetup: func(m *MockContract) {
				m.EXPECT().Withdraw(gomock.Any(), bob).Return(nil, auctionerrors.ErrNothingToWithdraw)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrNothingToWithdraw,
		},
		{
			name:          "bad_caller",
			caller:        "0x1234",
			mockSetup:     func(m *MockContract) {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidCaller,
		},
		{
			name:   "transfer_failed",
			caller: bobHex,
			mockSetup: func(m *MockContract) {
				m.EXPECT().Withdraw(gomock.Any(), bob).Return(nil, auctionerrors.ErrTransferFailed)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrTransferFailed,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockContract := NewMockContract(ctrl)
			service := NewAuctionService(mockContract)

			tc.mockSetup(mockContract)

			amount, err := service.Withdraw(context.Background(), tc.caller)
			if tc.expectError {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, amount.String())
		})
	}
}

// Tests Finish
func TestAuctionService_Finish(t *testing.T) {
	t.Parallel()

	auctioneer := common.HexToAddress(auctioneerHex)
	alice := common.HexToAddress(aliceHex)

	tests := []struct {
		name          string
		caller        string
		mockSetup     func(m *MockContract)
		expectError   bool
		expectedError error
	}{
		{
			name:   "settles",
			caller: auctioneerHex,
			mockSetup: func(m *MockContract) {
				m.EXPECT().Finish(gomock.Any(), auctioneer).
					Return(models.Settlement{Winner: alice, Auctioneer: auctioneer, Amount: big.NewInt(2000), Entry: 2}, nil)
			},
		},
		{
			name:   "unauthorized",
			caller: aliceHex,
			mockSetup: func(m *MockContract) {
				m.EXPECT().Finish(gomock.Any(), alice).Return(models.Settlement{}, auctionerrors.ErrUnauthorized)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrUnauthorized,
		},
		{
			name:   "still_open",
			caller: auctioneerHex,
			mockSetup: func(m *MockContract) {
				m.EXPECT().Finish(gomock.Any(), auctioneer).Return(models.Settlement{}, auctionerrors.ErrAuctionStillOpen)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrAuctionStillOpen,
		},
		{
			name:   "already_finished",
			caller: auctioneerHex,
			mockSetup: func(m *MockContract) {
				m.EXPECT().Finish(gomock.Any(), auctioneer).Return(models.Settlement{}, auctionerrors.ErrAlreadyFinished)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrAlreadyFinished,
		},
		{
			name:          "empty_caller",
			caller:        "",
			mockSetup:     func(m *MockContract) {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidCaller,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockContract := NewMockContract(ctrl)
			service := NewAuctionService(mockContract)

			tc.mockSetup(mockContract)

			settlement, err := service.Finish(context.Background(), tc.caller)
			if tc.expectError {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, alice, settlement.Winner)
			require.Equal(t, "2000", settlement.Amount.String())
		})
	}
}

// Tests GetBid
func TestAuctionService_GetBid(t *testing.T) {
	t.Parallel()

	alice := common.HexToAddress(aliceHex)

	tests := []struct {
		name          string
		id            uint64
		mockSetup     func(m *MockContract)
		expectError   bool
		expectedError error
	}{
		{
			name: "found",
			id:   1,
			mockSetup: func(m *MockContract) {
				m.EXPECT().ListOfBids(uint64(1)).Return(models.BidEntry{ID: 1, Bidder: alice, OfferedAmount: big.NewInt(10)}, nil)
			},
		},
		{
			name:          "zero_id",
			id:            0,
			mockSetup:     func(m *MockContract) {},
			expectError:   true,
			expectedError: auctionerrors.ErrEntryNotFound,
		},
		{
			name: "out_of_range",
			id:   7,
			mockSetup: func(m *MockContract) {
				m.EXPECT().ListOfBids(uint64(7)).Return(models.BidEntry{}, auctionerrors.ErrEntryNotFound)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrEntryNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockContract := NewMockContract(ctrl)
			service := NewAuctionService(mockContract)

			tc.mockSetup(mockContract)

			entry, err := service.GetBid(tc.id)
			if tc.expectError {
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, alice, entry.Bidder)
		})
	}
}

func TestAuctionService_Queries(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockContract := NewMockContract(ctrl)

	alice := common.HexToAddress(aliceHex)
	events := fakeEvents{events: []models.Event{
		{Seq: 1, Kind: models.EventNewHighestBid, Account: alice, Amount: big.NewInt(1)},
		{Seq: 2, Kind: models.EventNewHighestBid, Account: alice, Amount: big.NewInt(2)},
	}}
	accounts := fakeAccounts{alice: big.NewInt(42)}
	service := NewAuctionService(mockContract, WithEventSource(events), WithAccounts(accounts))

	bids := []models.BidEntry{{ID: 1, Bidder: alice, OfferedAmount: big.NewInt(1)}}
	mockContract.EXPECT().Bids().Return(bids)
	mockContract.EXPECT().Snapshot().Return(models.Snapshot{Bids: 1, Open: true})

	require.Equal(t, bids, service.GetBids())
	require.True(t, service.GetAuction().Open)

	got, err := service.GetEvents(2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, uint64(2), got[0].Seq)

	balance, err := service.GetBalance(aliceHex)
	require.NoError(t, err)
	require.Equal(t, "42", balance.String())

	balance, err = service.GetBalance(bobHex)
	require.NoError(t, err)
	require.Equal(t, "0", balance.String())

	_, err = service.GetBalance("nope")
	require.True(t, errors.Is(err, auctionerrors.ErrInvalidCaller))
}

func TestAuctionService_EventsUnavailable(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	service := NewAuctionService(NewMockContract(ctrl), WithEventSource(fakeEvents{err: errors.New("disk gone")}))

	_, err := service.GetEvents(0)
	require.Error(t, err)

	bare := NewAuctionService(NewMockContract(ctrl))
	events, err := bare.GetEvents(0)
	require.NoError(t, err)
	require.Empty(t, events)
}
