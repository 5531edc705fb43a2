// Copyright 2020 Aleksandr Demakin. All rights reserved.

package mil1750a

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/x448/float16"

	mu "github.com/avdva/mil1750a/internal/mathutil"
)

const (
	expBits16  = 6
	mantBits16 = 10
	fracBits16 = mantBits16 - 1

	expMask16  = 1<<expBits16 - 1
	mantMask16 = 1<<mantBits16 - 1

	// the encoder renormalizes only this mantissa, which a 9-bit fraction never reaches.
	boundary16 = 1 << 15
)

// Word16 is a 16-bit MIL-STD-1750A floating-point word:
//   mmmmmmmmmmeeeeee
// with a 10-bit mantissa (9 fractional bits) and a 6-bit exponent.
// Encoding stores negative mantissas in two's complement,
// but decoding reads the mantissa field as an unsigned number,
// so negative values do not survive a round trip.
type Word16 uint16

func fromMantAndExp16(mant int64, exp int) Word16 {
	return Word16((uint16(mant)&mantMask16)<<expBits16 | uint16(exp)&expMask16)
}

// FromFloat16 returns a word for given float16.
// Returns an error for infinities and not-a-numbers.
func FromFloat16(f float16.Float16) (Word16, error) {
	v := float64(f.Float32())
	if !mu.IsFinite(v) {
		return 0, ErrNotFinite
	}
	return fromMantAndExp16(mu.NormalizeAt(v, fracBits16, boundary16)), nil
}

// Encode16 returns a word for given float16.
// It panics for infinities and not-a-numbers.
func Encode16(f float16.Float16) Word16 {
	w, err := FromFloat16(f)
	if err != nil {
		panic(fmt.Sprintf("mil1750a: encoding %v: %v", f, err))
	}
	return w
}

// Decode16 returns a float16 value of a word.
// Values outside of float16 range become infinities.
func Decode16(w Word16) float16.Float16 {
	return w.Float16()
}

// FromMantAndExp16 returns a word for given mantissa and exponent.
// mant may be either a signed or an unsigned 10-bit number.
// Returns an error, if mant does not fit 10 bits or exp does not fit 6 bits.
func FromMantAndExp16(mant int64, exp int) (Word16, error) {
	if mant < -(1<<fracBits16) || mant > mantMask16 || !fitsField(int64(exp), expBits16) {
		return 0, errRange
	}
	return fromMantAndExp16(mant, exp), nil
}

// ParseWord16 parses a hex string like "0x6344", "6344", or `"0x6344"`.
func ParseWord16(s string) (Word16, error) {
	v, err := parseHex(s, mantBits16+expBits16)
	if err != nil {
		return 0, err
	}
	return Word16(v), nil
}

// Width returns Width16.
func (w Word16) Width() Width {
	return Width16
}

// Uint64 returns the raw bits of the word.
func (w Word16) Uint64() uint64 {
	return uint64(w)
}

// Mantissa returns unsigned mantissa field.
func (w Word16) Mantissa() int64 {
	return int64(uint64(w>>expBits16) & mantMask16)
}

// Exponent returns sign-extended exponent field.
func (w Word16) Exponent() int {
	return int(mu.SignExtend(uint64(w&expMask16), expBits16))
}

// Split returns unsigned mantissa and sign-extended exponent fields.
func (w Word16) Split() (mant int64, exp int) {
	return w.Mantissa(), w.Exponent()
}

// Float16 returns a float16 value of the word.
func (w Word16) Float16() float16.Float16 {
	return float16.Fromfloat32(float32(w.exact()))
}

// Float64 returns the word's value rounded to float16 precision.
func (w Word16) Float64() float64 {
	return float64(w.Float16().Float32())
}

// exact returns mant*2^(exp-9). It is exact, as it never exceeds 10 significant bits
// and the exponent stays within [-41, 22].
func (w Word16) exact() float64 {
	m, e := w.Split()
	return math.Ldexp(float64(m), e-fracBits16)
}

// Decimal returns the exact value of the word.
func (w Word16) Decimal() decimal.Decimal {
	m, e := w.Split()
	return decimal.NewFromBigInt(mu.ExactDecimal(m, e-fracBits16))
}

// String returns the word as a hex string, like "0x6344".
func (w Word16) String() string {
	return formatHex(uint64(w), Width16)
}

// GoString returns debug string representation.
func (w Word16) GoString() string {
	return goString(w)
}

// MarshalJSON marshals the word according to current JSONMode.
// See JSONMode and JSONMode* constants.
func (w Word16) MarshalJSON() ([]byte, error) {
	return toJSON(w, JSONMode, 32), nil
}

// UnmarshalJSON unmarshals a hex string, a float, or an object into a word.
func (w *Word16) UnmarshalJSON(data []byte) error {
	word, err := fromJSON(data, Width16)
	if err != nil {
		return err
	}
	*w = word.(Word16)
	return nil
}

// AppendBinary appends the big-endian representation of the word to b.
func (w Word16) AppendBinary(b []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint16(b, uint16(w)), nil
}

// MarshalBinary returns 2 big-endian bytes of the word.
func (w Word16) MarshalBinary() ([]byte, error) {
	return w.AppendBinary(make([]byte, 0, 2))
}

// UnmarshalBinary reads a word from 2 big-endian bytes.
func (w *Word16) UnmarshalBinary(data []byte) error {
	if len(data) != 2 {
		return fmt.Errorf("%w: want 2 bytes, got %d", ErrBadLength, len(data))
	}
	*w = Word16(binary.BigEndian.Uint16(data))
	return nil
}
