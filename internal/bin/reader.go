// Package bin provides the concrete byte-slice cursor used to decode ARC
// payloads. The reader satisfies arc.Cursor.
package bin

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Reader is a positioned reader over an in-memory byte slice with a
// switchable byte order. It is not safe for concurrent use; each container
// decode owns its own Reader.
type Reader struct {
	data  []byte
	off   int64
	order binary.ByteOrder
}

// NewReader returns a Reader over data using the given byte order.
func NewReader(data []byte, order binary.ByteOrder) *Reader {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Reader{data: data, order: order}
}

// SetOrder switches the byte order for subsequent multi-byte reads.
func (r *Reader) SetOrder(order binary.ByteOrder) {
	if order != nil {
		r.order = order
	}
}

func (r *Reader) Pos() int64 { return r.off }

func (r *Reader) Len() int64 { return int64(len(r.data)) }

func (r *Reader) Seek(off int64) error {
	if off < 0 || off > int64(len(r.data)) {
		return fmt.Errorf("bin: seek to %d out of range [0,%d]", off, len(r.data))
	}
	r.off = off
	return nil
}

// ReadBytes reads exactly n bytes. The returned slice aliases the backing
// data and must not be mutated.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("bin: invalid read length %d", n)
	}
	if r.off+int64(n) > int64(len(r.data)) {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.data[r.off : r.off+int64(n)]
	r.off += int64(n)
	return b, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadI8() (int8, error) {
	v, err := r.ReadU8()
	return int8(v), err
}

func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

func (r *Reader) ReadF32() (float32, error) {
	u, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

func (r *Reader) ReadF64() (float64, error) {
	u, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// ReadString reads a u32 length-prefixed byte string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	if int64(n) > int64(len(r.data))-r.off {
		return "", fmt.Errorf("bin: string length too large: %d", n)
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
