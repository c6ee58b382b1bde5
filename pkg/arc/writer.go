package arc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// arcAlign pads the data segment start so payload slices stay cleanly
// aligned for consumers that cast views over them.
const arcAlign = 8

// Builder assembles a well-formed container image in memory. It exists for
// packing tools and tests; production files come from engine exports.
type Builder struct {
	// Version defaults to CurrentVersion when zero.
	Version       uint32
	EngineVersion string
	Platform      uint32
	Flags         uint32

	// BigEndian sets the header endian flag (authoritative at
	// VersionHeaderEndian and later). SwapBytes sets the metadata flag used
	// by older versions.
	BigEndian bool
	SwapBytes bool

	objects    []builderObject
	scriptRefs []ScriptRef
	externals  []External
}

type builderObject struct {
	pathID  int64
	tag     TypeTag
	payload []byte
}

// AddObject appends an object with the given payload bytes. Offsets are
// assigned in insertion order.
func (b *Builder) AddObject(pathID int64, tag TypeTag, payload []byte) {
	b.objects = append(b.objects, builderObject{pathID: pathID, tag: tag, payload: payload})
}

// AddScriptRef appends a script-reference entry (written at
// VersionScriptRefs and later).
func (b *Builder) AddScriptRef(fileIndex int32, pathID int64) {
	b.scriptRefs = append(b.scriptRefs, ScriptRef{FileIndex: fileIndex, PathID: pathID})
}

// AddExternal appends an external dependency entry and returns its 1-based
// pointer file index.
func (b *Builder) AddExternal(ext External) int32 {
	b.externals = append(b.externals, ext)
	return int32(len(b.externals))
}

// Bytes encodes the container image.
func (b *Builder) Bytes() ([]byte, error) {
	version := b.Version
	if version == 0 {
		version = CurrentVersion
	}
	if version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	seen := make(map[int64]struct{}, len(b.objects))
	for _, o := range b.objects {
		if _, dup := seen[o.pathID]; dup {
			return nil, fmt.Errorf("%w: path id %d", ErrDuplicateObject, o.pathID)
		}
		seen[o.pathID] = struct{}{}
	}

	h := Header{Version: version, BigEndian: b.BigEndian}

	var meta bytes.Buffer
	if h.HasEngineString() {
		putString(&meta, b.EngineVersion)
	}
	if h.HasPlatform() {
		putU32(&meta, b.Platform)
		putU32(&meta, b.Flags)
	}
	if b.SwapBytes {
		meta.WriteByte(1)
	} else {
		meta.WriteByte(0)
	}

	putU32(&meta, uint32(len(b.objects)))
	var off uint64
	for _, o := range b.objects {
		if len(o.payload) > int(^uint32(0)) {
			return nil, errors.New("arc: object payload too large")
		}
		putI64(&meta, o.pathID)
		putU32(&meta, uint32(o.tag))
		putU64(&meta, off)
		putU32(&meta, uint32(len(o.payload)))
		off += uint64(len(o.payload))
	}

	if h.HasScriptRefs() {
		putU32(&meta, uint32(len(b.scriptRefs)))
		for _, ref := range b.scriptRefs {
			putU32(&meta, uint32(ref.FileIndex))
			putI64(&meta, ref.PathID)
		}
	}

	putU32(&meta, uint32(len(b.externals)))
	for _, ext := range b.externals {
		meta.Write(ext.GUID[:])
		putU32(&meta, ext.RefType)
		putString(&meta, ext.Path)
	}

	dataOffset := alignUp(uint64(headerSize+meta.Len()), arcAlign)
	h.DataOffset = dataOffset

	total := dataOffset
	for _, o := range b.objects {
		total += uint64(len(o.payload))
	}

	out := make([]byte, total)
	if !encodeHeader(out, h) {
		return nil, ErrCorrupt
	}
	copy(out[headerSize:], meta.Bytes())
	p := dataOffset
	for _, o := range b.objects {
		copy(out[p:], o.payload)
		p += uint64(len(o.payload))
	}
	return out, nil
}

// WriteFile encodes the container and writes it to path.
func (b *Builder) WriteFile(path string) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func alignUp(v, align uint64) uint64 {
	rem := v % align
	if rem == 0 {
		return v
	}
	return v + (align - rem)
}

// Metadata scalars are always little-endian; only object payloads use the
// resolved byte order.

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func putI64(buf *bytes.Buffer, v int64) {
	putU64(buf, uint64(v))
}

func putString(buf *bytes.Buffer, s string) {
	putU32(buf, uint32(len(s)))
	buf.WriteString(s)
}
