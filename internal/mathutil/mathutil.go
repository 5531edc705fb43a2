package mathutil

import (
	"math"
	"math/big"
)

var (
	five = big.NewInt(5)
)

// SignExtend interprets the lowest n bits of v as a two's complement number.
func SignExtend(v uint64, n uint) int64 {
	shift := 64 - n
	return int64(v<<shift) >> shift
}

// IsFinite returns true, if f is neither an infinity nor a not-a-number.
func IsFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// CeilLog2 returns the smallest e, so that abs(f) <= 2^e.
// f must be finite and non-zero.
func CeilLog2(f float64) int {
	frac, exp := math.Frexp(math.Abs(f))
	// frac is in [0.5, 1), so f is a power of two iff frac == 0.5.
	if frac == 0.5 {
		return exp - 1
	}
	return exp
}

// ScaleRound returns f*(2^shift) rounded half away from zero.
func ScaleRound(f float64, shift int) int64 {
	return int64(math.Round(math.Ldexp(f, shift)))
}

// Normalize calculates such (mant, exp), that mant*2^(exp-fracBits) ~= f,
// and abs(mant) <= 2^fracBits. Negative values produce negative mantissas.
// A mantissa rounded up to 2^fracBits is halved with the exponent incremented,
// so that the result always fits a (fracBits+1)-bit two's complement field.
// Returns (0, 0) for zeroes.
func Normalize(f float64, fracBits uint) (mant int64, exp int) {
	return NormalizeAt(f, fracBits, 1<<fracBits)
}

// NormalizeAt is like Normalize, but renormalizes only a mantissa equal to boundary.
func NormalizeAt(f float64, fracBits uint, boundary int64) (mant int64, exp int) {
	if f == 0 {
		return 0, 0
	}
	exp = CeilLog2(f)
	mant = ScaleRound(f, int(fracBits)-exp)
	if mant == boundary {
		mant /= 2
		exp++
	}
	return mant, exp
}

// ExactDecimal returns a decimal representation of mant*2^exp
// as an unscaled big integer and a decimal exponent.
// Every binary fraction has a finite decimal representation:
//	m*2^-k = m*5^k*10^-k
func ExactDecimal(mant int64, exp int) (unscaled *big.Int, decExp int32) {
	m := big.NewInt(mant)
	if exp >= 0 {
		return m.Lsh(m, uint(exp)), 0
	}
	p := new(big.Int).Exp(five, big.NewInt(int64(-exp)), nil)
	return m.Mul(m, p), int32(exp)
}
