package arc

// Cursor is the positioned, endian-aware primitive reader that object decode
// runs against. The byte order behind the multi-byte reads is fixed by the
// loader before any payload byte is interpreted (see ResolveByteOrder).
//
// Decode order is not file order, so absolute repositioning is required.
type Cursor interface {
	ReadU8() (uint8, error)
	ReadI8() (int8, error)
	ReadU16() (uint16, error)
	ReadI16() (int16, error)
	ReadU32() (uint32, error)
	ReadI32() (int32, error)
	ReadU64() (uint64, error)
	ReadI64() (int64, error)
	ReadF32() (float32, error)
	ReadF64() (float64, error)

	// ReadBytes reads exactly n bytes.
	ReadBytes(n int) ([]byte, error)

	// ReadString reads a u32 length-prefixed byte string.
	ReadString() (string, error)

	// Pos is the current absolute offset; Len the total length.
	Pos() int64
	Len() int64

	// Seek repositions the cursor to an absolute offset.
	Seek(off int64) error
}
