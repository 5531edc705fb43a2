// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package mil1750a converts numbers between native floating-point types
// and MIL-STD-1750A floating-point words.
// Three formats are supported, where mantissas and exponents are two's complement numbers:
//	Word16: mantissa[15:6], exponent[5:0], 9 fractional bits
//	Word32: mantissa[31:8], exponent[7:0], 23 fractional bits
//	Word48: mantissa[47:24] ++ mantissa[15:0], exponent[23:16], 39 fractional bits
//
// A word represents mantissa * 2^(exponent - fractional bits).
// The extended format keeps the upper 24 bits of its 40-bit mantissa in the highest
// bits of the word, and the lower 16 bits in the lowest ones.
//
// Exponents, which do not fit the exponent field, are silently truncated,
// as the hardware does.
package mil1750a

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/x448/float16"
)

var (
	// JSONMode defines the way all words are marshaled into json, see JSONMode* constants.
	// This variable is not thread-safe, so this should be changed on program start.
	JSONMode = JSONModeHex
)

const (
	// JSONModeHex produces words as hex strings, like `"0x6344"`.
	JSONModeHex = iota
	// JSONModeFloat marshals words as their decoded values, like `12.40625`.
	JSONModeFloat
	// JSONModeME marshals words with mantissa and exponent, like `{"m":397,"e":4}`.
	JSONModeME
)

var (
	// ErrNotFinite is returned for infinities and not-a-numbers, which have no MIL-STD-1750A representation.
	ErrNotFinite = errors.New("non-finite float number")
	// ErrBadLength is returned, if binary data does not match the size of a word.
	ErrBadLength = errors.New("bad data length")

	errRange = fmt.Errorf("value out of range")

	jsonParts = []string{`{"m":`, `,"e":`, `}`}
)

// Width is the size of a word in bits.
type Width int

const (
	// Width16 is the short floating-point format.
	Width16 Width = 16
	// Width32 is the standard floating-point format.
	Width32 Width = 32
	// Width48 is the extended floating-point format.
	Width48 Width = 48
)

// ParseWidth parses a width, like "32" or "32-bit".
func ParseWidth(s string) (Width, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "-bit"))
	if err != nil {
		return 0, fmt.Errorf("bad width %q", s)
	}
	w := Width(n)
	if !w.Valid() {
		return 0, fmt.Errorf("unsupported width %d", n)
	}
	return w, nil
}

// Bytes returns the number of bytes in a word of this width.
func (w Width) Bytes() int {
	return int(w) / 8
}

// String returns a string like "32-bit".
func (w Width) String() string {
	return strconv.Itoa(int(w)) + "-bit"
}

// Valid returns true for Width16, Width32, and Width48.
func (w Width) Valid() bool {
	return w == Width16 || w == Width32 || w == Width48
}

// Word is a MIL-STD-1750A floating-point word of any width.
// It is implemented by Word16, Word32, and Word48.
type Word interface {
	fmt.Stringer
	// Width returns the size of the word.
	Width() Width
	// Uint64 returns the raw bits of the word.
	Uint64() uint64
	// Split returns mantissa and exponent fields as they are decoded.
	Split() (mant int64, exp int)
	// Float64 returns the decoded value.
	Float64() float64
	// Decimal returns the exact decoded value.
	Decimal() decimal.Decimal
}

// Encode encodes f into a word of given width.
// Words of Width16 are produced from f rounded to float32 and then to float16,
// which may differ from a single rounding to float16 in the last bit.
func Encode(width Width, f float64) (Word, error) {
	switch width {
	case Width16:
		return FromFloat16(float16.Fromfloat32(float32(f)))
	case Width32:
		return FromFloat32(float32(f))
	case Width48:
		return FromFloat64(f)
	default:
		return nil, fmt.Errorf("unsupported width %d", int(width))
	}
}

// FromUint64 returns a word of given width for raw bits v.
// Returns an error, if v does not fit the width.
func FromUint64(width Width, v uint64) (Word, error) {
	if !width.Valid() {
		return nil, fmt.Errorf("unsupported width %d", int(width))
	}
	if v>>uint(width) != 0 {
		return nil, errRange
	}
	switch width {
	case Width16:
		return Word16(v), nil
	case Width32:
		return Word32(v), nil
	default:
		return Word48(v), nil
	}
}

// Parse parses a hex string into a word of given width.
// See ParseWord16 for the accepted syntax.
func Parse(width Width, s string) (Word, error) {
	if !width.Valid() {
		return nil, fmt.Errorf("unsupported width %d", int(width))
	}
	v, err := parseHex(s, uint(width))
	if err != nil {
		return nil, err
	}
	return FromUint64(width, v)
}

type posError struct {
	pos int
	err string
}

func newPosError(err string, pos int) *posError {
	return &posError{err: err, pos: pos}
}

func (pe posError) Error() string {
	return pe.err + fmt.Sprintf(" at pos %d", pe.pos)
}

func prepareString(s string) (prepared string, offset int, err error) {
	if len(s) == 0 {
		return "", 0, fmt.Errorf("empty input")
	}
	if s[0] == '"' {
		s = s[1:]
		offset++
	}
	if len(s) == 0 {
		return "", 0, fmt.Errorf("empty input")
	}
	if s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}
	if trimmed := strings.TrimLeftFunc(s, unicode.IsSpace); len(trimmed) != len(s) {
		offset += len(s) - len(trimmed)
		s = trimmed
	}
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
		offset += 2
	}
	if len(s) == 0 {
		return "", 0, fmt.Errorf("empty input")
	}
	return s, offset, nil
}

// parseHex parses a hex number, which must fit 'bits' bits.
func parseHex(s string, bits uint) (uint64, error) {
	s, offset, err := prepareString(s)
	if err != nil {
		return 0, err
	}
	var result uint64
	for i, r := range s {
		d, ok := hexDigit(r)
		if !ok {
			// +1 to start indices from 1.
			return 0, fmt.Errorf("parsing failed: %w", newPosError(fmt.Sprintf("unexpected symbol %q", r), offset+i+1))
		}
		if result>>(bits-4) != 0 {
			return 0, errRange
		}
		result = result<<4 | d
	}
	return result, nil
}

func hexDigit(r rune) (uint64, bool) {
	switch {
	case '0' <= r && r <= '9':
		return uint64(r - '0'), true
	case 'a' <= r && r <= 'f':
		return uint64(r-'a') + 10, true
	case 'A' <= r && r <= 'F':
		return uint64(r-'A') + 10, true
	default:
		return 0, false
	}
}

func formatHex(v uint64, width Width) string {
	s := strings.ToUpper(strconv.FormatUint(v, 16))
	digits := int(width) / 4
	if len(s) < digits {
		s = strings.Repeat("0", digits-len(s)) + s
	}
	return "0x" + s
}

func goString(w Word) string {
	m, e := w.Split()
	return w.String() + fmt.Sprintf(" {%v, %v}", m, e)
}

func toJSON(w Word, mode int, floatBits int) []byte {
	switch mode {
	case JSONModeFloat:
		return []byte(strconv.FormatFloat(w.Float64(), 'f', -1, floatBits))
	case JSONModeME:
		var builder strings.Builder
		m, e := w.Split()
		builder.WriteString(jsonParts[0])
		builder.WriteString(strconv.FormatInt(m, 10))
		builder.WriteString(jsonParts[1])
		builder.WriteString(strconv.Itoa(e))
		builder.WriteString(jsonParts[2])
		return []byte(builder.String())
	default: // marshal as a hex string
		return []byte(`"` + w.String() + `"`)
	}
}

// fromJSON unmarshals a hex string, a number, or a {"m", "e"} object into a word of given width.
func fromJSON(data []byte, width Width) (Word, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty json")
	}
	switch data[0] {
	case '{':
		d := struct {
			M int64
			E int
		}{}
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return FromMantAndExp(width, d.M, d.E)
	case '"':
		return Parse(width, string(data))
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing failed: %w", err)
		}
		return Encode(width, f)
	}
}

// FromMantAndExp returns a word of given width for a mantissa and an exponent.
// Returns an error, if any of them do not fit their fields.
func FromMantAndExp(width Width, mant int64, exp int) (Word, error) {
	switch width {
	case Width16:
		return FromMantAndExp16(mant, exp)
	case Width32:
		return FromMantAndExp32(mant, exp)
	case Width48:
		return FromMantAndExp48(mant, exp)
	default:
		return nil, fmt.Errorf("unsupported width %d", int(width))
	}
}

func fitsField(v int64, bits uint) bool {
	limit := int64(1) << (bits - 1)
	return -limit <= v && v < limit
}
