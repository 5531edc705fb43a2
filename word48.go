// Copyright 2020 Aleksandr Demakin. All rights reserved.

package mil1750a

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	mu "github.com/avdva/mil1750a/internal/mathutil"
)

const (
	expBits48    = 8
	mantHiBits48 = 24
	mantLoBits48 = 16
	mantBits48   = mantHiBits48 + mantLoBits48
	fracBits48   = mantBits48 - 1

	expShift48    = mantLoBits48
	mantHiShift48 = expShift48 + expBits48

	expMask48    = 1<<expBits48 - 1
	mantHiMask48 = 1<<mantHiBits48 - 1
	mantLoMask48 = 1<<mantLoBits48 - 1
	wordMask48   = 1<<48 - 1
	signBit48    = 1 << 47
)

// Word48 is a 48-bit MIL-STD-1750A floating-point word:
//   MMMMMMMMMMMMMMMMMMMMMMMMeeeeeeeemmmmmmmmmmmmmmmm
// with a 40-bit mantissa (39 fractional bits) and an 8-bit exponent.
// M are the upper 24 bits of the mantissa, m are the lower 16 bits.
// Word48 is kept in the lower 48 bits of a uint64, the upper 16 bits are ignored.
type Word48 uint64

func fromMantAndExp48(mant int64, exp int) Word48 {
	m := uint64(mant)
	return Word48((m>>mantLoBits48&mantHiMask48)<<mantHiShift48 |
		(uint64(exp)&expMask48)<<expShift48 |
		m&mantLoMask48)
}

// FromFloat64 returns a word for given float64.
// Only 40 significant bits of f are kept.
// Returns an error for infinities and not-a-numbers.
func FromFloat64(f float64) (Word48, error) {
	if !mu.IsFinite(f) {
		return 0, ErrNotFinite
	}
	if f == 0 {
		return 0, nil
	}
	w := fromMantAndExp48(mu.Normalize(f, fracBits48))
	if math.Signbit(f) {
		w |= signBit48
	}
	return w, nil
}

// Encode48 returns a word for given float64.
// It panics for infinities and not-a-numbers.
func Encode48(f float64) Word48 {
	w, err := FromFloat64(f)
	if err != nil {
		panic(fmt.Sprintf("mil1750a: encoding %v: %v", f, err))
	}
	return w
}

// Decode48 returns a float64 value of a word.
func Decode48(w Word48) float64 {
	return w.Float64()
}

// FromMantAndExp48 returns a word for given mantissa and exponent.
// Returns an error, if mant does not fit 40 bits or exp does not fit 8 bits.
func FromMantAndExp48(mant int64, exp int) (Word48, error) {
	if !fitsField(mant, mantBits48) || !fitsField(int64(exp), expBits48) {
		return 0, errRange
	}
	return fromMantAndExp48(mant, exp), nil
}

// ParseWord48 parses a hex string like "0x69A3B50754AB".
// See ParseWord16 for the accepted syntax.
func ParseWord48(s string) (Word48, error) {
	v, err := parseHex(s, 48)
	if err != nil {
		return 0, err
	}
	return Word48(v), nil
}

// Width returns Width48.
func (w Word48) Width() Width {
	return Width48
}

// Uint64 returns the raw bits of the word.
func (w Word48) Uint64() uint64 {
	return uint64(w) & wordMask48
}

// Mantissa returns the sign-extended 40-bit mantissa.
func (w Word48) Mantissa() int64 {
	hi := uint64(w) >> mantHiShift48 & mantHiMask48
	lo := uint64(w) & mantLoMask48
	return mu.SignExtend(hi<<mantLoBits48|lo, mantBits48)
}

// Exponent returns sign-extended exponent field.
func (w Word48) Exponent() int {
	return int(int8(w >> expShift48))
}

// Split returns sign-extended mantissa and exponent fields.
func (w Word48) Split() (mant int64, exp int) {
	return w.Mantissa(), w.Exponent()
}

// Float64 returns a float64 value of the word.
// The result is exact, as float64 has more significant bits than the mantissa.
func (w Word48) Float64() float64 {
	m, e := w.Split()
	return math.Ldexp(float64(m), e-fracBits48)
}

// Decimal returns the exact value of the word.
func (w Word48) Decimal() decimal.Decimal {
	m, e := w.Split()
	return decimal.NewFromBigInt(mu.ExactDecimal(m, e-fracBits48))
}

// String returns the word as a hex string, like "0x69A3B50754AB".
func (w Word48) String() string {
	return formatHex(w.Uint64(), Width48)
}

// GoString returns debug string representation.
func (w Word48) GoString() string {
	return goString(w)
}

// MarshalJSON marshals the word according to current JSONMode.
// See JSONMode and JSONMode* constants.
func (w Word48) MarshalJSON() ([]byte, error) {
	return toJSON(w, JSONMode, 64), nil
}

// UnmarshalJSON unmarshals a hex string, a float, or an object into a word.
func (w *Word48) UnmarshalJSON(data []byte) error {
	word, err := fromJSON(data, Width48)
	if err != nil {
		return err
	}
	*w = word.(Word48)
	return nil
}

// AppendBinary appends 3 big-endian 16-bit words of w to b, the most significant first.
func (w Word48) AppendBinary(b []byte) ([]byte, error) {
	v := w.Uint64()
	return append(b, byte(v>>40), byte(v>>32), byte(v>>24), byte(v>>16), byte(v>>8), byte(v)), nil
}

// MarshalBinary returns 6 big-endian bytes of the word.
func (w Word48) MarshalBinary() ([]byte, error) {
	return w.AppendBinary(make([]byte, 0, 6))
}

// UnmarshalBinary reads a word from 6 big-endian bytes.
func (w *Word48) UnmarshalBinary(data []byte) error {
	if len(data) != 6 {
		return fmt.Errorf("%w: want 6 bytes, got %d", ErrBadLength, len(data))
	}
	var v uint64
	for _, b := range data {
		v = v<<8 | uint64(b)
	}
	*w = Word48(v)
	return nil
}
