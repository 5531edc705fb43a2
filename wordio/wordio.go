// Package wordio reads and writes streams of MIL-STD-1750A floating-point words.
//
// The 1750A addresses memory in 16-bit words, so a stream is a sequence of
// big-endian 16-bit words, where each 32-bit or 48-bit value takes two or three
// consecutive words, the most significant first.
package wordio

import (
	"bufio"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/avdva/mil1750a"
)

// Writer encodes floats into a stream of words of a fixed width.
// It is not safe for concurrent use.
type Writer struct {
	w     *bufio.Writer
	width mil1750a.Width
	buf   []byte
	count int64
}

// NewWriter returns a writer of words of given width.
func NewWriter(w io.Writer, width mil1750a.Width) *Writer {
	return &Writer{
		w:     bufio.NewWriter(w),
		width: width,
		buf:   make([]byte, 0, 6),
	}
}

// WriteFloat encodes f and writes the resulting word.
// For 16-bit words f is rounded to float32 first, see mil1750a.Encode.
func (w *Writer) WriteFloat(f float64) error {
	word, err := mil1750a.Encode(w.width, f)
	if err != nil {
		return errors.Wrapf(err, "encoding %v into a %s word", f, w.width)
	}
	return w.writeWord(word)
}

// WriteWord writes raw bits of a word.
func (w *Writer) WriteWord(v uint64) error {
	word, err := mil1750a.FromUint64(w.width, v)
	if err != nil {
		return errors.Wrapf(err, "bad %s word %#x", w.width, v)
	}
	return w.writeWord(word)
}

func (w *Writer) writeWord(word mil1750a.Word) error {
	w.buf = appendWord(w.buf[:0], word)
	if _, err := w.w.Write(w.buf); err != nil {
		return errors.Wrapf(err, "writing word #%d", w.count)
	}
	w.count++
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	glog.V(2).Infof("flushing %d %s words", w.count, w.width)
	return w.w.Flush()
}

// Count returns the number of words written.
func (w *Writer) Count() int64 {
	return w.count
}

func appendWord(b []byte, word mil1750a.Word) []byte {
	v := word.Uint64()
	for shift := int(word.Width()) - 8; shift >= 0; shift -= 8 {
		b = append(b, byte(v>>uint(shift)))
	}
	return b
}

// Reader decodes a stream of words of a fixed width.
// It is not safe for concurrent use.
type Reader struct {
	r      *bufio.Reader
	width  mil1750a.Width
	buf    [6]byte
	offset int64
}

// NewReader returns a reader of words of given width.
func NewReader(r io.Reader, width mil1750a.Width) *Reader {
	return &Reader{
		r:     bufio.NewReader(r),
		width: width,
	}
}

// ReadWord reads the next word.
// It returns io.EOF, if the stream ends at a word boundary,
// and io.ErrUnexpectedEOF, if it ends in the middle of a word.
func (r *Reader) ReadWord() (mil1750a.Word, error) {
	if !r.width.Valid() {
		return nil, errors.Errorf("unsupported width %d", int(r.width))
	}
	n := r.width.Bytes()
	read, err := io.ReadFull(r.r, r.buf[:n])
	if err != nil {
		if err == io.EOF {
			glog.V(2).Infof("end of stream at byte offset %d", r.offset)
			return nil, io.EOF
		}
		return nil, errors.Wrapf(err, "reading %s word at byte offset %d, got %d bytes", r.width, r.offset, read)
	}
	r.offset += int64(n)
	var v uint64
	for _, b := range r.buf[:n] {
		v = v<<8 | uint64(b)
	}
	return mil1750a.FromUint64(r.width, v)
}

// ReadFloat reads the next word and decodes it.
func (r *Reader) ReadFloat() (float64, error) {
	word, err := r.ReadWord()
	if err != nil {
		return 0, err
	}
	return word.Float64(), nil
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// ReadAll decodes all the words from r.
func ReadAll(r io.Reader, width mil1750a.Width) ([]float64, error) {
	rr := NewReader(r, width)
	var result []float64
	for {
		f, err := rr.ReadFloat()
		if err != nil {
			if err == io.EOF {
				return result, nil
			}
			return result, err
		}
		result = append(result, f)
	}
}
