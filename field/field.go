// Package field implements the host arithmetic used for constant folding.
// A Field either reduces every result modulo a prime, or operates over
// unbounded integers when no modulus is configured.
package field

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
)

var (
	// ErrNoModulus reports a field operation that requires a prime modulus.
	ErrNoModulus = errors.New("field: no modulus configured")
	// ErrDivisionByZero reports a division or remainder with zero divisor.
	ErrDivisionByZero = errors.New("field: division by zero")
	// ErrBadShift reports a negative or oversized shift amount.
	ErrBadShift = errors.New("field: bad shift amount")
	// ErrNegativeExponent reports a power with negative exponent.
	ErrNegativeExponent = errors.New("field: negative exponent")
)

// maxShift bounds shift amounts; larger values are rejected rather than
// silently truncated.
const maxShift = 1 << 32

// Field is the constant-folding arithmetic domain.
type Field struct {
	modulus *big.Int
}

// BN254 returns the field of the bn254 scalar prime, the default compilation
// target.
func BN254() *Field {
	return &Field{modulus: ecc.BN254.ScalarField()}
}

// New returns a field over the given prime. A nil modulus yields unbounded
// integer arithmetic.
func New(p *big.Int) *Field {
	if p == nil {
		return Integers()
	}
	return &Field{modulus: new(big.Int).Set(p)}
}

// Integers returns the modulus-free arithmetic domain.
func Integers() *Field {
	return &Field{}
}

// Modulus returns the prime, or nil for unbounded arithmetic.
func (f *Field) Modulus() *big.Int {
	return f.modulus
}

// Reduce returns the canonical non-negative representative of x.
func (f *Field) Reduce(x *big.Int) *big.Int {
	r := new(big.Int).Set(x)
	if f.modulus != nil {
		r.Mod(r, f.modulus)
	}
	return r
}

// bitLen is the width used by bitwise complement.
func (f *Field) bitLen() int {
	if f.modulus != nil {
		return f.modulus.BitLen()
	}
	return 256
}

// Add returns x + y.
func (f *Field) Add(x, y *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Add(x, y))
}

// Sub returns x - y.
func (f *Field) Sub(x, y *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Sub(x, y))
}

// Mul returns x * y.
func (f *Field) Mul(x, y *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Mul(x, y))
}

// Neg returns -x.
func (f *Field) Neg(x *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Neg(x))
}

// Div returns x * y⁻¹ in the field. It requires a modulus.
func (f *Field) Div(x, y *big.Int) (*big.Int, error) {
	if f.modulus == nil {
		return nil, ErrNoModulus
	}
	yr := f.Reduce(y)
	if yr.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	inv := new(big.Int).ModInverse(yr, f.modulus)
	return f.Mul(x, inv), nil
}

// IntDiv returns the truncated quotient x \ y.
func (f *Field) IntDiv(x, y *big.Int) (*big.Int, error) {
	xr, yr := f.Reduce(x), f.Reduce(y)
	if yr.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	return f.Reduce(new(big.Int).Quo(xr, yr)), nil
}

// Mod returns the non-negative remainder x % y.
func (f *Field) Mod(x, y *big.Int) (*big.Int, error) {
	xr, yr := f.Reduce(x), f.Reduce(y)
	if yr.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	return f.Reduce(new(big.Int).Mod(xr, yr)), nil
}

// Pow returns x ** e.
func (f *Field) Pow(x, e *big.Int) (*big.Int, error) {
	if e.Sign() < 0 {
		return nil, ErrNegativeExponent
	}
	if f.modulus != nil {
		return new(big.Int).Exp(f.Reduce(x), e, f.modulus), nil
	}
	return new(big.Int).Exp(x, e, nil), nil
}

func shiftAmount(y *big.Int) (uint, error) {
	if y.Sign() < 0 || !y.IsUint64() || y.Uint64() >= maxShift {
		return 0, ErrBadShift
	}
	return uint(y.Uint64()), nil
}

// Shl returns x << y.
func (f *Field) Shl(x, y *big.Int) (*big.Int, error) {
	n, err := shiftAmount(y)
	if err != nil {
		return nil, err
	}
	return f.Reduce(new(big.Int).Lsh(f.Reduce(x), n)), nil
}

// Shr returns x >> y.
func (f *Field) Shr(x, y *big.Int) (*big.Int, error) {
	n, err := shiftAmount(y)
	if err != nil {
		return nil, err
	}
	return f.Reduce(new(big.Int).Rsh(f.Reduce(x), n)), nil
}

// BitAnd returns x & y on the canonical representatives.
func (f *Field) BitAnd(x, y *big.Int) *big.Int {
	return f.Reduce(new(big.Int).And(f.Reduce(x), f.Reduce(y)))
}

// BitOr returns x | y on the canonical representatives.
func (f *Field) BitOr(x, y *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Or(f.Reduce(x), f.Reduce(y)))
}

// BitXor returns x ^ y on the canonical representatives.
func (f *Field) BitXor(x, y *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Xor(f.Reduce(x), f.Reduce(y)))
}

// BitNot returns the complement of x over the field's bit width.
func (f *Field) BitNot(x *big.Int) *big.Int {
	mask := new(big.Int).Lsh(big.NewInt(1), uint(f.bitLen()))
	mask.Sub(mask, big.NewInt(1))
	return f.Reduce(new(big.Int).Xor(f.Reduce(x), mask))
}

// Cmp compares the canonical representatives of x and y.
func (f *Field) Cmp(x, y *big.Int) int {
	return f.Reduce(x).Cmp(f.Reduce(y))
}

// IsZero reports whether x reduces to zero.
func (f *Field) IsZero(x *big.Int) bool {
	return f.Reduce(x).Sign() == 0
}
