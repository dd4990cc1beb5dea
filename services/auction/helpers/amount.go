package helpers

import (
	"fmt"
	"math/big"
	"strings"

	"auction-ledger/internal/auctionerrors"

	"github.com/shopspring/decimal"
)

// maxWeiDigits bounds amounts to the size of a uint256
const maxWeiDigits = 78

var unitExponents = map[string]int32{
	"":      0,
	"wei":   0,
	"gwei":  9,
	"ether": 18,
}

// ParseAmount converts a decimal amount in unit into wei. The result must be a
// whole, non-negative number of wei; whether it is high enough is for the
// auction to decide.
func ParseAmount(amount, unit string) (*big.Int, error) {
	exp, ok := unitExponents[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return nil, fmt.Errorf("%w - unknown unit %q", auctionerrors.ErrInvalidBid, unit)
	}

	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("%w - amount %q: %v", auctionerrors.ErrInvalidBid, amount, err)
	}

	// exponents are checked before anything rescales the coefficient
	wei := d.Shift(exp)
	if wei.Exponent() < -maxWeiDigits || int64(wei.NumDigits())+int64(wei.Exponent()) > maxWeiDigits {
		return nil, fmt.Errorf("%w - amount %q is out of range", auctionerrors.ErrInvalidBid, amount)
	}
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("%w - %s %s is not a whole number of wei", auctionerrors.ErrInvalidBid, amount, unit)
	}
	if wei.IsNegative() {
		return nil, fmt.Errorf("%w - negative bid amount", auctionerrors.ErrInvalidBid)
	}
	return wei.BigInt(), nil
}

// FormatEther renders a wei amount in ether without losing precision
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}
