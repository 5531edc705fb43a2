// Copyright 2020 Aleksandr Demakin. All rights reserved.

package mil1750a

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	mu "github.com/avdva/mil1750a/internal/mathutil"
)

const (
	expBits32  = 8
	mantBits32 = 24
	fracBits32 = mantBits32 - 1

	expMask32  = 1<<expBits32 - 1
	mantMask32 = 1<<mantBits32 - 1
	signBit32  = 1 << 31
)

// Word32 is a 32-bit MIL-STD-1750A floating-point word:
//   mmmmmmmmmmmmmmmmmmmmmmmmeeeeeeee
// with a 24-bit mantissa (23 fractional bits) and an 8-bit exponent.
type Word32 uint32

func fromMantAndExp32(mant int64, exp int) Word32 {
	return Word32((uint32(mant)&mantMask32)<<expBits32 | uint32(exp)&expMask32)
}

// FromFloat32 returns a word for given float32.
// Returns an error for infinities and not-a-numbers.
func FromFloat32(f float32) (Word32, error) {
	v := float64(f)
	if !mu.IsFinite(v) {
		return 0, ErrNotFinite
	}
	if v == 0 {
		return 0, nil
	}
	w := fromMantAndExp32(mu.Normalize(v, fracBits32))
	if math.Signbit(v) {
		w |= signBit32
	}
	return w, nil
}

// Encode32 returns a word for given float32.
// It panics for infinities and not-a-numbers.
func Encode32(f float32) Word32 {
	w, err := FromFloat32(f)
	if err != nil {
		panic(fmt.Sprintf("mil1750a: encoding %v: %v", f, err))
	}
	return w
}

// Decode32 returns a float32 value of a word.
func Decode32(w Word32) float32 {
	return w.Float32()
}

// FromMantAndExp32 returns a word for given mantissa and exponent.
// Returns an error, if mant does not fit 24 bits or exp does not fit 8 bits.
func FromMantAndExp32(mant int64, exp int) (Word32, error) {
	if !fitsField(mant, mantBits32) || !fitsField(int64(exp), expBits32) {
		return 0, errRange
	}
	return fromMantAndExp32(mant, exp), nil
}

// ParseWord32 parses a hex string like "0x53BE7703".
// See ParseWord16 for the accepted syntax.
func ParseWord32(s string) (Word32, error) {
	v, err := parseHex(s, mantBits32+expBits32)
	if err != nil {
		return 0, err
	}
	return Word32(v), nil
}

// Width returns Width32.
func (w Word32) Width() Width {
	return Width32
}

// Uint64 returns the raw bits of the word.
func (w Word32) Uint64() uint64 {
	return uint64(w)
}

// Mantissa returns sign-extended mantissa field.
func (w Word32) Mantissa() int64 {
	return mu.SignExtend(uint64(w>>expBits32), mantBits32)
}

// Exponent returns sign-extended exponent field.
func (w Word32) Exponent() int {
	return int(int8(w))
}

// Split returns sign-extended mantissa and exponent fields.
func (w Word32) Split() (mant int64, exp int) {
	return w.Mantissa(), w.Exponent()
}

// Float32 returns a float32 value of the word.
func (w Word32) Float32() float32 {
	m, e := w.Split()
	// the product is exact in float64, so it is rounded only once.
	return float32(math.Ldexp(float64(m), e-fracBits32))
}

// Float64 returns the word's value rounded to float32 precision.
func (w Word32) Float64() float64 {
	return float64(w.Float32())
}

// Decimal returns the exact value of the word.
func (w Word32) Decimal() decimal.Decimal {
	m, e := w.Split()
	return decimal.NewFromBigInt(mu.ExactDecimal(m, e-fracBits32))
}

// String returns the word as a hex string, like "0x53BE7703".
func (w Word32) String() string {
	return formatHex(uint64(w), Width32)
}

// GoString returns debug string representation.
func (w Word32) GoString() string {
	return goString(w)
}

// MarshalJSON marshals the word according to current JSONMode.
// See JSONMode and JSONMode* constants.
func (w Word32) MarshalJSON() ([]byte, error) {
	return toJSON(w, JSONMode, 32), nil
}

// UnmarshalJSON unmarshals a hex string, a float, or an object into a word.
func (w *Word32) UnmarshalJSON(data []byte) error {
	word, err := fromJSON(data, Width32)
	if err != nil {
		return err
	}
	*w = word.(Word32)
	return nil
}

// AppendBinary appends the big-endian representation of the word to b.
func (w Word32) AppendBinary(b []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint32(b, uint32(w)), nil
}

// MarshalBinary returns 4 big-endian bytes of the word.
func (w Word32) MarshalBinary() ([]byte, error) {
	return w.AppendBinary(make([]byte, 0, 4))
}

// UnmarshalBinary reads a word from 4 big-endian bytes.
func (w *Word32) UnmarshalBinary(data []byte) error {
	if len(data) != 4 {
		return fmt.Errorf("%w: want 4 bytes, got %d", ErrBadLength, len(data))
	}
	*w = Word32(binary.BigEndian.Uint32(data))
	return nil
}
