package arc

import "encoding/binary"

// headerSize is the fixed on-disk size of the container header.
const headerSize = 20

// Header is the fixed leading structure of an ARC file. It is always encoded
// little-endian regardless of the payload byte order.
type Header struct {
	Version    uint32
	DataOffset uint64

	// BigEndian is meaningful only when the version carries a header endian
	// flag (HasEndianFlag). Older writers emit zero here.
	BigEndian bool
}

// Valid reports whether the header passes basic structural checks.
func (h *Header) Valid() bool {
	if h.Version == 0 || h.Version > CurrentVersion {
		return false
	}
	return h.DataOffset >= headerSize
}

// HasEngineString reports whether metadata at this version embeds the
// engine-version string.
func (h *Header) HasEngineString() bool { return h.Version >= VersionEngineString }

// HasPlatform reports whether metadata at this version carries a
// target-platform field.
func (h *Header) HasPlatform() bool { return h.Version >= VersionPlatform }

// HasEndianFlag reports whether the header endian flag is authoritative.
func (h *Header) HasEndianFlag() bool { return h.Version >= VersionHeaderEndian }

// HasScriptRefs reports whether metadata at this version carries the
// script-reference section.
func (h *Header) HasScriptRefs() bool { return h.Version >= VersionScriptRefs }

func decodeHeader(b []byte) (Header, bool) {
	if len(b) < headerSize {
		return Header{}, false
	}
	if string(b[0:4]) != MagicARC {
		return Header{}, false
	}
	return Header{
		Version:    binary.LittleEndian.Uint32(b[4:8]),
		DataOffset: binary.LittleEndian.Uint64(b[8:16]),
		BigEndian:  b[16] != 0,
		// b[17:20] reserved
	}, true
}

func encodeHeader(b []byte, h Header) bool {
	if len(b) < headerSize {
		return false
	}
	copy(b[0:4], MagicARC)
	binary.LittleEndian.PutUint32(b[4:8], h.Version)
	binary.LittleEndian.PutUint64(b[8:16], h.DataOffset)
	var e byte
	if h.BigEndian {
		e = 1
	}
	b[16] = e
	b[17], b[18], b[19] = 0, 0, 0
	return true
}
