package arc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fixedAsset consumes a fixed number of bytes on decode.
type fixedAsset struct {
	obj *Object
	n   int
}

func (a *fixedAsset) Object() *Object { return a.obj }

func (a *fixedAsset) Decode(cur Cursor) error {
	_, err := cur.ReadBytes(a.n)
	return err
}

// consumeFactory produces fixedAssets consuming consume[tag] bytes, and
// declines tags absent from the map.
func consumeFactory(consume map[TypeTag]int) Factory {
	return FactoryFunc(func(tag TypeTag, obj *Object) Asset {
		n, ok := consume[tag]
		if !ok {
			return nil
		}
		return &fixedAsset{obj: obj, n: n}
	})
}

// declaredFactory consumes exactly the declared size for every tag.
func declaredFactory() Factory {
	return FactoryFunc(func(tag TypeTag, obj *Object) Asset {
		return &fixedAsset{obj: obj, n: int(obj.Size)}
	})
}

func buildContainer(t *testing.T, b *Builder, cfg LoadConfig) *Container {
	t.Helper()
	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("build container: %v", err)
	}
	c, err := Load(data, cfg)
	if err != nil {
		t.Fatalf("load container: %v", err)
	}
	return c
}

func TestLoadPopulatesObjectMap(t *testing.T) {
	t.Parallel()

	b := &Builder{}
	b.AddObject(1, TagText, make([]byte, 4))
	b.AddObject(2, TagBlob, make([]byte, 8))

	c := buildContainer(t, b, LoadConfig{
		Name:    "main.arc",
		Factory: consumeFactory(map[TypeTag]int{TagText: 4, TagBlob: 8}),
	})

	if c.Len() != 2 {
		t.Fatalf("object count: got %d want 2", c.Len())
	}
	a1, err := c.Get(1)
	if err != nil {
		t.Fatalf("get 1: %v", err)
	}
	if a1.Object().Tag != TagText {
		t.Fatalf("object 1 tag: got %d want %d", a1.Object().Tag, TagText)
	}
	a2, err := c.Get(2)
	if err != nil {
		t.Fatalf("get 2: %v", err)
	}
	if a2.Object().Tag != TagBlob {
		t.Fatalf("object 2 tag: got %d want %d", a2.Object().Tag, TagBlob)
	}
}

func TestLoadSizeMismatch(t *testing.T) {
	t.Parallel()

	b := &Builder{}
	b.AddObject(1, TagText, make([]byte, 4))
	b.AddObject(2, TagBlob, make([]byte, 8))

	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// Blob decode consumes 7 of its declared 8 bytes.
	_, err = Load(data, LoadConfig{
		Name:    "main.arc",
		Factory: consumeFactory(map[TypeTag]int{TagText: 4, TagBlob: 7}),
	})
	var sm *SizeMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("expected SizeMismatchError, got %v", err)
	}
	if sm.Tag != TagBlob || sm.Want != 8 || sm.Got != 7 {
		t.Fatalf("mismatch detail: %+v", sm)
	}
	if sm.Container != "main.arc" {
		t.Fatalf("mismatch container: %q", sm.Container)
	}
}

func TestLoadDeclinedTagsAreSkipped(t *testing.T) {
	t.Parallel()

	b := &Builder{}
	b.AddObject(1, TagText, make([]byte, 4))
	b.AddObject(2, TagMaterial, make([]byte, 16))

	c := buildContainer(t, b, LoadConfig{
		Name:    "main.arc",
		Factory: consumeFactory(map[TypeTag]int{TagText: 4}),
	})

	if c.Len() != 1 {
		t.Fatalf("object count: got %d want 1", c.Len())
	}
	if _, err := c.Get(2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("declined entry should be absent, got %v", err)
	}
}

func TestDecodeOrderScriptsFirst(t *testing.T) {
	t.Parallel()

	b := &Builder{}
	b.AddObject(10, TagBlob, make([]byte, 4))
	b.AddObject(11, TagScript, make([]byte, 4))
	b.AddObject(12, TagBlob, make([]byte, 4))
	b.AddObject(13, TagScript, make([]byte, 4))
	b.AddScriptRef(0, 13)
	// References into other files are not decodable here and must be ignored.
	b.AddScriptRef(2, 99)

	c := buildContainer(t, b, LoadConfig{
		Name:    "main.arc",
		Factory: declaredFactory(),
	})

	if len(c.order) != 4 {
		t.Fatalf("decode trace length: got %d want 4", len(c.order))
	}
	// The script-ref target decodes first, then remaining scripts in table
	// order, then the rest in table order.
	want := []int64{13, 11, 10, 12}
	for i, id := range want {
		if c.order[i] != id {
			t.Fatalf("decode order: got %v want %v", c.order, want)
		}
	}
}

func TestScriptRefUnknownIDFails(t *testing.T) {
	t.Parallel()

	b := &Builder{}
	b.AddObject(1, TagBlob, make([]byte, 4))
	b.AddScriptRef(0, 42)

	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := Load(data, LoadConfig{Name: "main.arc", Factory: declaredFactory()}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for dangling script ref, got %v", err)
	}
}

func TestLoadRejectsDuplicatePathID(t *testing.T) {
	t.Parallel()

	b := &Builder{}
	b.AddObject(7, TagBlob, make([]byte, 2))
	b.AddObject(7, TagText, make([]byte, 2))

	if _, err := b.Bytes(); !errors.Is(err, ErrDuplicateObject) {
		t.Fatalf("builder should reject duplicate ids, got %v", err)
	}
}

func TestLoadRejectsBadMagicAndVersion(t *testing.T) {
	t.Parallel()

	b := &Builder{}
	b.AddObject(1, TagBlob, make([]byte, 2))
	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	bad := append([]byte(nil), data...)
	copy(bad[0:4], "NOPE")
	if _, err := Load(bad, LoadConfig{Name: "x", Factory: declaredFactory()}); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}

	future := append([]byte(nil), data...)
	future[4] = byte(CurrentVersion + 1)
	if _, err := Load(future, LoadConfig{Name: "x", Factory: declaredFactory()}); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestLoadRejectsOutOfRangeObject(t *testing.T) {
	t.Parallel()

	b := &Builder{}
	b.AddObject(1, TagBlob, make([]byte, 4))
	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// Truncate the data segment so the declared range hangs over the end.
	truncated := data[:len(data)-2]
	if _, err := Load(truncated, LoadConfig{Name: "x", Factory: declaredFactory()}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

// versionedAsset decodes a u32-length string and reports it as the engine
// version, standing in for a build-settings object.
type versionedAsset struct {
	obj     *Object
	version string
}

func (a *versionedAsset) Object() *Object       { return a.obj }
func (a *versionedAsset) EngineVersion() string { return a.version }

func (a *versionedAsset) Decode(cur Cursor) error {
	s, err := cur.ReadString()
	if err != nil {
		return err
	}
	a.version = s
	return nil
}

func TestVersionBackfillOnOldContainers(t *testing.T) {
	t.Parallel()

	payload := []byte{9, 0, 0, 0, '2', '0', '1', '7', '.', '4', '.', '4', '0'}
	b := &Builder{Version: 1}
	b.AddObject(1, TagSettings, payload)

	factory := FactoryFunc(func(tag TypeTag, obj *Object) Asset {
		if tag == TagSettings {
			return &versionedAsset{obj: obj}
		}
		return nil
	})

	c := buildContainer(t, b, LoadConfig{Name: "old.arc", Factory: factory})
	if c.Meta.EngineVersion != "2017.4.40" {
		t.Fatalf("backfilled version: got %q", c.Meta.EngineVersion)
	}
}

func TestNoBackfillWhenVersionPresent(t *testing.T) {
	t.Parallel()

	payload := []byte{3, 0, 0, 0, 'o', 'l', 'd'}
	b := &Builder{EngineVersion: "2022.3.1"}
	b.AddObject(1, TagSettings, payload)

	factory := FactoryFunc(func(tag TypeTag, obj *Object) Asset {
		return &versionedAsset{obj: obj}
	})

	c := buildContainer(t, b, LoadConfig{Name: "new.arc", Factory: factory})
	if c.Meta.EngineVersion != "2022.3.1" {
		t.Fatalf("embedded version must win: got %q", c.Meta.EngineVersion)
	}
}

func TestOpenLoadsFromFile(t *testing.T) {
	t.Parallel()

	b := &Builder{EngineVersion: "2022.3.1", Platform: 19}
	b.AddObject(1, TagBlob, []byte{1, 2, 3, 4})

	path := filepath.Join(t.TempDir(), "main.arc")
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("write file: %v", err)
	}

	c, err := Open(path, LoadConfig{Name: "main.arc", Factory: declaredFactory()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			t.Fatalf("close: %v", cerr)
		}
	}()

	if c.Len() != 1 {
		t.Fatalf("object count: got %d want 1", c.Len())
	}
	if c.Path != path {
		t.Fatalf("path: got %q want %q", c.Path, path)
	}
	if c.Meta.Platform != 19 {
		t.Fatalf("platform: got %d", c.Meta.Platform)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestBigEndianPayloadDecode(t *testing.T) {
	t.Parallel()

	// 0x01020304 encoded big-endian.
	b := &Builder{BigEndian: true}
	b.AddObject(1, TagBlob, []byte{1, 2, 3, 4})

	var got uint32
	factory := FactoryFunc(func(tag TypeTag, obj *Object) Asset {
		return &u32Asset{obj: obj, out: &got}
	})
	buildContainer(t, b, LoadConfig{Name: "be.arc", Factory: factory})
	if got != 0x01020304 {
		t.Fatalf("big-endian read: got %#x", got)
	}
}

type u32Asset struct {
	obj *Object
	out *uint32
}

func (a *u32Asset) Object() *Object { return a.obj }

func (a *u32Asset) Decode(cur Cursor) error {
	v, err := cur.ReadU32()
	if err != nil {
		return err
	}
	*a.out = v
	return nil
}

func TestDecodeErrorCarriesContext(t *testing.T) {
	t.Parallel()

	b := &Builder{EngineVersion: "2022.3.1", Platform: 5}
	b.AddObject(1, TagText, []byte{1, 2})

	boom := errors.New("boom")
	factory := FactoryFunc(func(tag TypeTag, obj *Object) Asset {
		return &failingAsset{obj: obj, err: boom}
	})
	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	_, err = Load(data, LoadConfig{Name: "main.arc", Path: "/tmp/main.arc", Factory: factory})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("cause not preserved: %v", err)
	}
	if de.Container != "main.arc" || de.Version != "2022.3.1" || de.Platform != 5 {
		t.Fatalf("context missing: %+v", de)
	}
}

type failingAsset struct {
	obj *Object
	err error
}

func (a *failingAsset) Object() *Object     { return a.obj }
func (a *failingAsset) Decode(Cursor) error { return a.err }
