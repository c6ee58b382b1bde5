package arc

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/samcharles93/reliquary/internal/bin"
)

// LoadConfig carries the collaborators and identity for loading one
// container.
type LoadConfig struct {
	// Name is the container's logical name; OriginName the name it was
	// authored under, when different. Path is diagnostic only.
	Name       string
	OriginName string
	Path       string

	// Factory produces decodable instances per type tag. Required.
	Factory Factory

	// Collection resolves external dependency paths. May be nil for
	// containers without cross-file pointers.
	Collection Resolver

	// Selector and DefaultLayout drive layout selection. A nil Selector gets
	// a private one; a nil DefaultLayout falls back to the zero layout.
	Selector      *Selector
	DefaultLayout *Layout
}

// Container is one loaded ARC file: parsed header and metadata, the selected
// layout, and the identity→object map populated by the decode pass. After
// Load the container is read-mostly; the only later mutation is the
// best-effort engine-version back-fill on pre-version-string files.
type Container struct {
	Name       string
	OriginName string
	Path       string

	Header *Header
	Meta   *Metadata
	Layout *Layout

	collection Resolver

	objects map[int64]Asset
	// order records path ids in decode order. FindByType scans use it so
	// results are deterministic.
	order []int64

	data    []byte
	mmapped bool
}

// Open maps an ARC file read-only and loads it. If mmap is unavailable it
// falls back to ReadAt-based loading. The returned container must be closed
// to release any mapping.
func Open(path string, cfg LoadConfig) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < headerSize {
		return nil, ErrCorrupt
	}
	if size64 > int64(int(^uint(0)>>1)) {
		// cannot index this file safely as []byte on this architecture.
		return nil, ErrCorrupt
	}
	size := int(size64)

	if cfg.Path == "" {
		cfg.Path = path
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		c, loadErr := Load(data, cfg)
		if loadErr != nil {
			_ = unix.Munmap(data)
			return nil, loadErr
		}
		c.mmapped = true
		return c, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return Load(data, cfg)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

// Load parses and decodes a container from an in-memory image. Decoding is
// strictly sequential within one container; separate containers may be
// loaded concurrently as long as each call gets its own data slice.
func Load(data []byte, cfg LoadConfig) (*Container, error) {
	if cfg.Factory == nil {
		return nil, fmt.Errorf("arc: load %s: nil factory", cfg.Name)
	}
	if len(data) < headerSize {
		return nil, ErrCorrupt
	}
	if string(data[0:4]) != MagicARC {
		return nil, ErrInvalidMagic
	}
	hdr, ok := decodeHeader(data)
	if !ok {
		return nil, ErrCorrupt
	}
	if hdr.Version == 0 || hdr.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr.Version)
	}
	if !hdr.Valid() || hdr.DataOffset > uint64(len(data)) {
		return nil, ErrCorrupt
	}

	metaReader := bin.NewReader(data, nil)
	if err := metaReader.Seek(headerSize); err != nil {
		return nil, ErrCorrupt
	}
	meta, err := parseMetadata(metaReader, &hdr)
	if err != nil {
		return nil, err
	}
	if metaReader.Pos() > int64(hdr.DataOffset) {
		return nil, fmt.Errorf("%w: metadata overlaps data segment", ErrCorrupt)
	}

	// Every object's byte range must fall inside the data segment.
	segLen := uint64(len(data)) - hdr.DataOffset
	for _, e := range meta.Table.Entries() {
		end := e.Offset + uint64(e.Size)
		if end < e.Offset || end > segLen {
			return nil, fmt.Errorf("%w: object %d range [%d,%d) outside data segment",
				ErrCorrupt, e.PathID, e.Offset, end)
		}
	}

	sel := cfg.Selector
	if sel == nil {
		sel = NewSelector()
	}
	def := cfg.DefaultLayout
	if def == nil {
		def = &Layout{}
	}

	c := &Container{
		Name:       cfg.Name,
		OriginName: cfg.OriginName,
		Path:       cfg.Path,
		Header:     &hdr,
		Meta:       meta,
		Layout:     sel.Select(def, &hdr, meta, cfg.Name),
		collection: cfg.Collection,
		objects:    make(map[int64]Asset, meta.Table.Len()),
		data:       data,
	}

	cur := bin.NewReader(data, ResolveByteOrder(&hdr, meta))
	if err := c.decodeAll(cur, cfg.Factory); err != nil {
		return nil, err
	}
	c.backfillVersion()
	return c, nil
}

// decodeAll runs the ordered decode passes. Script references come first so
// self-referential script objects exist before anything that needs them,
// then every script-definition row in declaration order, then the rest of
// the table in declaration order.
func (c *Container) decodeAll(cur *bin.Reader, factory Factory) error {
	if c.Header.HasScriptRefs() {
		for _, ref := range c.Meta.ScriptRefs {
			if ref.FileIndex != 0 {
				continue
			}
			entry, err := c.Meta.Table.Lookup(ref.PathID)
			if err != nil {
				return fmt.Errorf("script ref %d: %w", ref.PathID, err)
			}
			if err := c.decodeOne(cur, factory, entry); err != nil {
				return err
			}
		}
	}

	for _, entry := range c.Meta.Table.Entries() {
		if !entry.Tag.IsScriptDefinition() {
			continue
		}
		if err := c.decodeOne(cur, factory, entry); err != nil {
			return err
		}
	}

	for _, entry := range c.Meta.Table.Entries() {
		if err := c.decodeOne(cur, factory, entry); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) decodeOne(cur *bin.Reader, factory Factory, entry ObjectEntry) error {
	if _, done := c.objects[entry.PathID]; done {
		return nil
	}

	obj := &Object{PathID: entry.PathID, Tag: entry.Tag, Owner: c, Size: entry.Size}
	asset := factory.Create(entry.Tag, obj)
	if asset == nil {
		// Declined tags contribute no object; not an error.
		return nil
	}

	start := int64(c.Header.DataOffset + entry.Offset)
	if err := cur.Seek(start); err != nil {
		return fmt.Errorf("%w: object %d: %v", ErrCorrupt, entry.PathID, err)
	}
	if err := asset.Decode(cur); err != nil {
		return &DecodeError{
			Tag:       entry.Tag,
			Container: c.Name,
			Path:      c.Path,
			Version:   c.Meta.EngineVersion,
			Platform:  c.Meta.Platform,
			Err:       err,
		}
	}
	consumed := cur.Pos() - start
	if consumed != int64(entry.Size) {
		return &SizeMismatchError{
			Tag:       entry.Tag,
			Container: c.Name,
			Path:      c.Path,
			Want:      int64(entry.Size),
			Got:       consumed,
		}
	}

	if _, dup := c.objects[entry.PathID]; dup {
		return fmt.Errorf("%w: path id %d", ErrDuplicateObject, entry.PathID)
	}
	c.objects[entry.PathID] = asset
	c.order = append(c.order, entry.PathID)
	return nil
}

// backfillVersion adopts the engine version from a decoded settings object
// on files that predate the embedded version string. First match in decode
// order wins; absence of a match is fine. This is the single allowed
// post-load metadata mutation.
func (c *Container) backfillVersion() {
	if c.Header.HasEngineString() || c.Meta.EngineVersion != "" {
		return
	}
	for _, id := range c.order {
		if v, ok := c.objects[id].(Versioned); ok {
			if ev := v.EngineVersion(); ev != "" {
				c.Meta.EngineVersion = ev
				return
			}
		}
	}
}

// Close releases the container's backing data and any mmap.
func (c *Container) Close() error {
	if c == nil || c.data == nil {
		return nil
	}
	var err error
	if c.mmapped {
		err = unix.Munmap(c.data)
	}
	c.data = nil
	c.mmapped = false
	return err
}

// Len returns the number of decoded objects.
func (c *Container) Len() int { return len(c.objects) }

// Objects returns the identity→object map. It is shared and must be treated
// as read-only.
func (c *Container) Objects() map[int64]Asset { return c.objects }
