package wordio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/avdva/mil1750a"
)

func TestWriter(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		width mil1750a.Width
		fs    []float64
		data  []byte
	}{
		{mil1750a.Width16, []float64{12.4, -12.4}, []byte{0x63, 0x44, 0x9C, 0xC4}},
		{mil1750a.Width32, []float64{5.234, 0, -1}, []byte{
			0x53, 0xBE, 0x77, 0x03,
			0, 0, 0, 0,
			0x80, 0, 0, 0,
		}},
		{mil1750a.Width48, []float64{105.639485637361, math.Pi}, []byte{
			0x69, 0xA3, 0xB5, 0x07, 0x54, 0xAB,
			0x64, 0x87, 0xED, 0x02, 0x51, 0x11,
		}},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, test.width)
			for _, f := range test.fs {
				a.NoError(w.WriteFloat(f))
			}
			a.NoError(w.Flush())
			a.Equal(test.data, buf.Bytes())
			a.Equal(int64(len(test.fs)), w.Count())
		})
	}
}

func TestWriterErrors(t *testing.T) {
	a := assert.New(t)
	var buf bytes.Buffer
	w := NewWriter(&buf, mil1750a.Width32)
	err := w.WriteFloat(math.NaN())
	a.True(errors.Is(err, mil1750a.ErrNotFinite))
	a.EqualError(err, "encoding NaN into a 32-bit word: non-finite float number")
	err = w.WriteWord(0x100000000)
	a.EqualError(err, "bad 32-bit word 0x100000000: value out of range")
	a.NoError(w.WriteWord(0x40000001))
	a.NoError(w.Flush())
	a.Equal([]byte{0x40, 0, 0, 1}, buf.Bytes())
	a.Equal(int64(1), w.Count())

	w = NewWriter(&buf, 64)
	a.EqualError(w.WriteFloat(1), "encoding 1 into a 64-bit word: unsupported width 64")
}

func TestReader(t *testing.T) {
	a := assert.New(t)
	data := []byte{
		0x69, 0xA3, 0xB5, 0x07, 0x54, 0xAB,
		0x9B, 0x78, 0x12, 0x02, 0xAE, 0xEF,
	}
	r := NewReader(bytes.NewReader(data), mil1750a.Width48)
	w, err := r.ReadWord()
	if a.NoError(err) {
		a.Equal(mil1750a.Word48(0x69A3B50754AB), w)
	}
	f, err := r.ReadFloat()
	if a.NoError(err) {
		a.Equal(-3.1415926535919425, f)
	}
	a.Equal(int64(12), r.Offset())
	_, err = r.ReadWord()
	a.Equal(io.EOF, err)

	r = NewReader(bytes.NewReader(data[:8]), mil1750a.Width32)
	_, err = r.ReadWord()
	a.NoError(err)
	_, err = r.ReadWord()
	a.NoError(err)
	_, err = r.ReadWord()
	a.Equal(io.EOF, err)

	r = NewReader(bytes.NewReader(data[:7]), mil1750a.Width48)
	_, err = r.ReadWord()
	a.NoError(err)
	_, err = r.ReadWord()
	a.True(errors.Is(err, io.ErrUnexpectedEOF))
	a.EqualError(err, "reading 48-bit word at byte offset 6, got 1 bytes: unexpected EOF")

	r = NewReader(bytes.NewReader(data), 8)
	_, err = r.ReadWord()
	a.EqualError(err, "unsupported width 8")
}

func TestRoundTrip(t *testing.T) {
	a := assert.New(t)
	fs := []float64{0, 1, -1, 0.5, 5.234, -25.63, 105.639485637361, 1e-4, -3097.3857421875}
	for _, width := range []mil1750a.Width{mil1750a.Width16, mil1750a.Width32, mil1750a.Width48} {
		var buf bytes.Buffer
		w := NewWriter(&buf, width)
		for _, f := range fs {
			a.NoError(w.WriteFloat(f))
		}
		a.NoError(w.Flush())
		a.Equal(len(fs)*width.Bytes(), buf.Len())

		res, err := ReadAll(&buf, width)
		if !a.NoError(err) || !a.Len(res, len(fs)) {
			continue
		}
		eps := map[mil1750a.Width]float64{
			mil1750a.Width16: 1.0 / (1 << 8),
			mil1750a.Width32: 1.0 / (1 << 22),
			mil1750a.Width48: 1.0 / (1 << 38),
		}[width]
		for i, f := range fs {
			if f == 0 {
				a.Zero(res[i])
				continue
			}
			// negative short words decode as unsigned.
			if f < 0 && width == mil1750a.Width16 {
				continue
			}
			a.InEpsilon(f, res[i], eps, "%v: %v", width, f)
		}
	}
}
