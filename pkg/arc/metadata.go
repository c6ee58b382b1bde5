package arc

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/samcharles93/reliquary/internal/bin"
)

// ScriptRef names an object, possibly in another container, whose script
// definition must be materialized before the general decode pass.
type ScriptRef struct {
	FileIndex int32
	PathID    int64
}

// External identifies another container that this container's objects may
// point into. Pointers reference externals by 1-based index; index 0 is the
// holding container itself.
type External struct {
	GUID    uuid.UUID
	RefType uint32

	// Path is the path-equivalent key resolved through the collection.
	Path string
}

// Metadata is the parsed metadata region of a container.
type Metadata struct {
	// EngineVersion is empty for files older than VersionEngineString until
	// the post-load back-fill finds a settings object carrying one.
	EngineVersion string

	Platform uint32

	// Flags carries format-level layout flags (Flag*). Present alongside the
	// platform field from VersionPlatform on.
	Flags uint32

	// SwapBytes is the metadata-level endian flag, consulted only when the
	// header version carries no endian flag of its own.
	SwapBytes bool

	Table      *ObjectTable
	ScriptRefs []ScriptRef
	Externals  []External
}

// parseMetadata reads the metadata region that follows the header. The
// region itself is always little-endian; only the data segment uses the
// resolved byte order.
func parseMetadata(r *bin.Reader, h *Header) (*Metadata, error) {
	m := &Metadata{}

	if h.HasEngineString() {
		s, err := r.ReadString()
		if err != nil {
			return nil, fmt.Errorf("%w: engine version: %v", ErrCorrupt, err)
		}
		m.EngineVersion = s
	}
	if h.HasPlatform() {
		p, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("%w: platform: %v", ErrCorrupt, err)
		}
		m.Platform = p
		if m.Flags, err = r.ReadU32(); err != nil {
			return nil, fmt.Errorf("%w: flags: %v", ErrCorrupt, err)
		}
	}
	swap, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("%w: swap flag: %v", ErrCorrupt, err)
	}
	m.SwapBytes = swap != 0

	count, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: object count: %v", ErrCorrupt, err)
	}
	entries := make([]ObjectEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		var e ObjectEntry
		if e.PathID, err = r.ReadI64(); err != nil {
			return nil, fmt.Errorf("%w: entry %d path id: %v", ErrCorrupt, i, err)
		}
		tag, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d tag: %v", ErrCorrupt, i, err)
		}
		e.Tag = TypeTag(tag)
		if e.Offset, err = r.ReadU64(); err != nil {
			return nil, fmt.Errorf("%w: entry %d offset: %v", ErrCorrupt, i, err)
		}
		if e.Size, err = r.ReadU32(); err != nil {
			return nil, fmt.Errorf("%w: entry %d size: %v", ErrCorrupt, i, err)
		}
		entries = append(entries, e)
	}
	if m.Table, err = NewObjectTable(entries); err != nil {
		return nil, err
	}

	if h.HasScriptRefs() {
		n, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("%w: script ref count: %v", ErrCorrupt, err)
		}
		m.ScriptRefs = make([]ScriptRef, 0, n)
		for i := uint32(0); i < n; i++ {
			var sr ScriptRef
			if sr.FileIndex, err = r.ReadI32(); err != nil {
				return nil, fmt.Errorf("%w: script ref %d: %v", ErrCorrupt, i, err)
			}
			if sr.PathID, err = r.ReadI64(); err != nil {
				return nil, fmt.Errorf("%w: script ref %d: %v", ErrCorrupt, i, err)
			}
			m.ScriptRefs = append(m.ScriptRefs, sr)
		}
	}

	n, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: external count: %v", ErrCorrupt, err)
	}
	m.Externals = make([]External, 0, n)
	for i := uint32(0); i < n; i++ {
		var ext External
		g, err := r.ReadBytes(16)
		if err != nil {
			return nil, fmt.Errorf("%w: external %d guid: %v", ErrCorrupt, i, err)
		}
		copy(ext.GUID[:], g)
		if ext.RefType, err = r.ReadU32(); err != nil {
			return nil, fmt.Errorf("%w: external %d ref type: %v", ErrCorrupt, i, err)
		}
		if ext.Path, err = r.ReadString(); err != nil {
			return nil, fmt.Errorf("%w: external %d path: %v", ErrCorrupt, i, err)
		}
		m.Externals = append(m.Externals, ext)
	}

	return m, nil
}
