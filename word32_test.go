// Copyright 2020 Aleksandr Demakin. All rights reserved.

package mil1750a

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncode32(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		f float32
		w Word32
	}{
		{0, 0},
		{float32(math.Copysign(0, -1)), 0},
		{5.234, 0x53BE7703},
		{1, 0x40000001},
		{-1, 0x80000000},
		{0.5, 0x40000000},
		{25.63, 0x66851F05},
		{-25.63, 0x997AE105},
		{-3097.3857421875, 0x9F34EA0C},
		// the mantissa is rounded up to 2^23, so it is halved and the exponent grows.
		{math.Nextafter32(1, 0), 0x40000001},
		{-math.Nextafter32(1, 0), 0x80000000},
		// the exponent of 129 does not fit 8 bits and becomes -127.
		{math.MaxFloat32, 0x40000081},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			w, err := FromFloat32(test.f)
			if a.NoError(err) {
				a.Equal(test.w, w, "%v: %#v", test.f, w)
			}
			a.Equal(test.w, Encode32(test.f))
		})
	}
}

func TestEncode32NotFinite(t *testing.T) {
	a := assert.New(t)
	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		w, err := FromFloat32(float32(f))
		a.Equal(ErrNotFinite, err)
		a.Equal(Word32(0), w)
		a.Panics(func() { Encode32(float32(f)) })
	}
}

func TestEncode32Sign(t *testing.T) {
	a := assert.New(t)
	for _, f := range []float32{5.234, 25.63, 3097.3857421875, 0.1, 1e-5, 12345.678, 7e20} {
		pos, neg := Encode32(f), Encode32(-f)
		a.Zero(pos&signBit32, "%v", f)
		a.NotZero(neg&signBit32, "%v", f)
		a.Equal(-pos.Mantissa(), neg.Mantissa(), "%v", f)
		a.Equal(pos.Exponent(), neg.Exponent(), "%v", f)
		a.Equal(-Decode32(pos), Decode32(neg))
	}
}

func TestDecode32(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		w Word32
		f float32
	}{
		{0, 0},
		{0x40000001, 1},
		{0x80000000, -1},
		{0x40000000, 0.5},
		{0x997AE105, -25.6300010681152},
		{0x9F34EA0C, -3097.3857421875},
		{0x53BE7703, 5.234},
		// mantissa 2^22, exponent -128.
		{0x40000080, float32(math.Ldexp(1, -129))},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			a.Equal(test.f, Decode32(test.w))
			a.Equal(float64(test.f), test.w.Float64())
		})
	}
}

func TestWord32Fields(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		mant int64
		exp  int
		w    Word32
		err  string
	}{
		{0, 0, 0, ""},
		{5488247, 3, 0x53BE7703, ""},
		{-6718751, 5, 0x997AE105, ""},
		{-(1 << 23), 0, 0x80000000, ""},
		{1<<23 - 1, 127, 0x7FFFFF7F, ""},
		{0, -128, 0x80, ""},
		{1 << 23, 0, 0, "value out of range"},
		{0, 128, 0, "value out of range"},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			w, err := FromMantAndExp32(test.mant, test.exp)
			if len(test.err) > 0 {
				a.EqualError(err, test.err)
				return
			}
			if a.NoError(err) {
				a.Equal(test.w, w)
				m, e := w.Split()
				a.Equal(test.mant, m)
				a.Equal(test.exp, e)
			}
		})
	}
}

func TestWord32RoundTrip(t *testing.T) {
	a := assert.New(t)
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < 10000; i++ {
		f := float32((rnd.Float64()*2 - 1) * math.Pow10(rnd.Intn(30)-15))
		if f == 0 {
			continue
		}
		a.InEpsilon(f, Decode32(Encode32(f)), 1.0/(1<<22), "%v", f)
	}
}

func TestWord32Decimal(t *testing.T) {
	a := assert.New(t)
	a.Equal("-25.630001068115234375", Word32(0x997AE105).Decimal().String())
	a.Equal("5.23400020599365234375", Word32(0x53BE7703).Decimal().String())
	a.Equal("1", Word32(0x40000001).Decimal().String())
	a.Equal("0", Word32(0).Decimal().String())
}
