package fixedpoint

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const (
	// Decimals is the number of fractional digits carried by a fixed-point value.
	Decimals = 18
	// One is the fixed-point representation of 1.0.
	One uint64 = 1_000_000_000_000_000_000
	// BpsDenominator is the basis-point denominator.
	BpsDenominator uint64 = 10_000
)

var (
	ErrOverflow       = errors.New("arithmetic overflow")
	ErrUnderflow      = errors.New("arithmetic underflow")
	ErrDivisionByZero = errors.New("division by zero")
)

// New returns v as a 256-bit integer.
func New(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// Units returns n whole units scaled by 10^18.
func Units(n uint64) *uint256.Int {
	// n < 2^64 and 10^18 < 2^60, so the product always fits.
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(One))
}

// Precision returns 10^18.
func Precision() *uint256.Int {
	return uint256.NewInt(One)
}

// Max returns 2^256-1, the saturating "unbounded" value.
func Max() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

// Add returns x+y or ErrOverflow.
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, fmt.Errorf("add %s + %s: %w", x.ToBig(), y.ToBig(), ErrOverflow)
	}
	return z, nil
}

// Sub returns x-y or ErrUnderflow.
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, fmt.Errorf("sub %s - %s: %w", x.ToBig(), y.ToBig(), ErrUnderflow)
	}
	return z, nil
}

// Mul returns x*y or ErrOverflow.
func Mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, fmt.Errorf("mul %s * %s: %w", x.ToBig(), y.ToBig(), ErrOverflow)
	}
	return z, nil
}

// MulDiv returns floor(x*y/d). The product is formed in a 512-bit
// intermediate, so only a quotient wider than 256 bits overflows.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	product := new(big.Int).Mul(x.ToBig(), y.ToBig())
	product.Quo(product, d.ToBig())
	z, overflow := uint256.FromBig(product)
	if overflow {
		return nil, fmt.Errorf("muldiv %s * %s / %s: %w", x.ToBig(), y.ToBig(), d.ToBig(), ErrOverflow)
	}
	return z, nil
}

// Min returns a copy of the smaller of x and y.
func Min(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return x.Clone()
	}
	return y.Clone()
}

// Parse parses a base-10 integer string. An empty string is zero.
func Parse(value string) (*uint256.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return new(uint256.Int), nil
	}
	parsed, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("invalid uint256 %q: %w", value, err)
	}
	return parsed, nil
}

// Format renders x as a base-10 integer string.
func Format(x *uint256.Int) string {
	if x == nil {
		return "0"
	}
	return x.ToBig().String()
}

// ParseDecimal converts a human decimal ("1.25", "100000") into a 1e18
// fixed-point value. Digits beyond 18 fractional places are truncated.
func ParseDecimal(value string) (*uint256.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return new(uint256.Int), nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q: %w", value, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("invalid decimal %q: %w", value, ErrUnderflow)
	}
	scaled := d.Shift(Decimals).Truncate(0).BigInt()
	z, overflow := uint256.FromBig(scaled)
	if overflow {
		return nil, fmt.Errorf("invalid decimal %q: %w", value, ErrOverflow)
	}
	return z, nil
}

// FormatDecimal renders a 1e18 fixed-point value as a human decimal.
func FormatDecimal(x *uint256.Int) string {
	if x == nil {
		return "0"
	}
	return decimal.NewFromBigInt(x.ToBig(), -Decimals).String()
}

// ValueUSD returns amount*priceUSD/1e18, where priceUSD is the 1e18
// fixed-point USD price of one 1e18-scaled unit of the asset.
func ValueUSD(amount, priceUSD *uint256.Int) (*uint256.Int, error) {
	return MulDiv(amount, priceUSD, Precision())
}
