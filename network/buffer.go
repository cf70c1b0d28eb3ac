package network

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Fixed wire sizes of the packed primitives
const (
	Uint8Size   = 1
	Uint16Size  = 2
	Int16Size   = 2
	Uint32Size  = 4
	Float32Size = 4
)

// ErrShortBuffer is reported when a read runs past the end of the input
var ErrShortBuffer = errors.New("short buffer")

// PackUint8 appends v to buf
func PackUint8(buf []byte, v uint8) []byte {
	return append(buf, v)
}

// PackUint16 appends v in network byte order
func PackUint16(buf []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(buf, v)
}

// PackInt16 appends v in network byte order
func PackInt16(buf []byte, v int16) []byte {
	return binary.BigEndian.AppendUint16(buf, uint16(v))
}

// PackUint32 appends v in network byte order
func PackUint32(buf []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(buf, v)
}

// PackFloat32 appends the IEEE-754 bits of v in network byte order
func PackFloat32(buf []byte, v float32) []byte {
	return binary.BigEndian.AppendUint32(buf, math.Float32bits(v))
}

// PackString appends a uint32 length prefix followed by the raw bytes
func PackString(buf []byte, s string) []byte {
	buf = PackUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// StringPackSize returns the encoded size of s
func StringPackSize(s string) int {
	return Uint32Size + len(s)
}

// Reader decodes primitives from a byte slice
// The first failure is sticky: later reads return zero values and Err reports the cause
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader creates a reader over b
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Err returns the first decode error, if any
func (r *Reader) Err() error {
	return r.err
}

// Len returns the number of unread bytes
func (r *Reader) Len() int {
	return len(r.buf) - r.off
}

// Offset returns the number of bytes consumed
func (r *Reader) Offset() int {
	return r.off
}

// Rest returns the unread bytes without consuming them
func (r *Reader) Rest() []byte {
	return r.buf[r.off:]
}

// Require fails the reader unless n more bytes are available
func (r *Reader) Require(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || n > r.Len() {
		r.err = errors.Wrapf(ErrShortBuffer, "need %d bytes at offset %d, have %d", n, r.off, r.Len())
		return false
	}
	return true
}

// RequireCount fails the reader unless count entries of size bytes remain
// Guards allocations sized by untrusted counts
func (r *Reader) RequireCount(count uint32, size int) bool {
	if r.err != nil {
		return false
	}
	need := uint64(count) * uint64(size)
	if need > uint64(r.Len()) {
		r.err = errors.Wrapf(ErrShortBuffer, "%d entries of %d bytes exceed remaining %d", count, size, r.Len())
		return false
	}
	return true
}

func (r *Reader) take(n int) []byte {
	if !r.Require(n) {
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// Uint8 reads one byte
func (r *Reader) Uint8() uint8 {
	b := r.take(Uint8Size)
	if b == nil {
		return 0
	}
	return b[0]
}

// Uint16 reads a big-endian uint16
func (r *Reader) Uint16() uint16 {
	b := r.take(Uint16Size)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// Int16 reads a big-endian int16
func (r *Reader) Int16() int16 {
	return int16(r.Uint16())
}

// Uint32 reads a big-endian uint32
func (r *Reader) Uint32() uint32 {
	b := r.take(Uint32Size)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Float32 reads a big-endian IEEE-754 float
func (r *Reader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

// String reads a length-prefixed string
func (r *Reader) String() string {
	n := r.Uint32()
	if r.err != nil {
		return ""
	}
	if uint64(n) > uint64(r.Len()) {
		r.err = errors.Wrapf(ErrShortBuffer, "string length %d exceeds remaining %d bytes", n, r.Len())
		return ""
	}
	return string(r.take(int(n)))
}

// Bytes reads n raw bytes; the result aliases the input
func (r *Reader) Bytes(n int) []byte {
	return r.take(n)
}
