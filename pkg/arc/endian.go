package arc

import "encoding/binary"

// ResolveByteOrder determines the payload byte order for a container.
//
// If the header version carries an explicit endian flag, that flag is
// authoritative and the metadata swap flag is ignored. Otherwise the
// metadata swap flag decides. No other source is consulted; the result must
// be fixed before any payload byte is interpreted.
func ResolveByteOrder(h *Header, m *Metadata) binary.ByteOrder {
	if h.HasEndianFlag() {
		if h.BigEndian {
			return binary.BigEndian
		}
		return binary.LittleEndian
	}
	if m.SwapBytes {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
