// Package assets provides the built-in object kinds for ARC containers and
// the factory that produces them. Engine-specific kinds can wrap or replace
// this factory; unknown tags are declined and skipped by the loader.
package assets

import (
	"strings"

	"github.com/samcharles93/reliquary/pkg/arc"
)

// Base carries the identity context common to every built-in kind.
type Base struct {
	obj *arc.Object
}

func (b *Base) Object() *arc.Object { return b.obj }

// Script is the script-definition kind. Scripts carry the type information
// other kinds depend on and are decoded ahead of the general pass.
type Script struct {
	Base

	ClassName string
	Namespace string
	Assembly  string
}

func (s *Script) Decode(cur arc.Cursor) error {
	var err error
	if s.ClassName, err = cur.ReadString(); err != nil {
		return err
	}
	if s.Namespace, err = cur.ReadString(); err != nil {
		return err
	}
	s.Assembly, err = cur.ReadString()
	return err
}

// Settings is the build-settings kind. It exposes the engine version used to
// back-fill containers that predate the embedded version string.
type Settings struct {
	Base

	Version string
	Flags   uint32
}

func (s *Settings) Decode(cur arc.Cursor) error {
	var err error
	if s.Version, err = cur.ReadString(); err != nil {
		return err
	}
	s.Flags, err = cur.ReadU32()
	return err
}

func (s *Settings) EngineVersion() string { return s.Version }

// Text is a named text payload.
type Text struct {
	Base

	name    string
	Content []byte
}

func (t *Text) Decode(cur arc.Cursor) error {
	var err error
	if t.name, err = cur.ReadString(); err != nil {
		return err
	}
	n, err := cur.ReadU32()
	if err != nil {
		return err
	}
	b, err := cur.ReadBytes(int(n))
	if err != nil {
		return err
	}
	t.Content = append([]byte(nil), b...)
	return nil
}

// RawName is the name exactly as decoded.
func (t *Text) RawName() string { return t.name }

// Name is the validated name: NUL padding and surrounding whitespace
// stripped.
func (t *Text) Name() string { return ValidateName(t.name) }

// Blob is an opaque payload; it consumes exactly the declared size.
type Blob struct {
	Base

	Data []byte
}

func (b *Blob) Decode(cur arc.Cursor) error {
	raw, err := cur.ReadBytes(int(b.obj.Size))
	if err != nil {
		return err
	}
	b.Data = append([]byte(nil), raw...)
	return nil
}

// ValidateName normalizes a decoded object name.
func ValidateName(name string) string {
	return strings.TrimSpace(strings.TrimRight(name, "\x00"))
}

// Factory produces the built-in kinds. Material and texture tags are
// declined until their decoders land.
type Factory struct{}

func (Factory) Create(tag arc.TypeTag, obj *arc.Object) arc.Asset {
	switch tag {
	case arc.TagScript:
		return &Script{Base: Base{obj: obj}}
	case arc.TagSettings:
		return &Settings{Base: Base{obj: obj}}
	case arc.TagText:
		return &Text{Base: Base{obj: obj}}
	case arc.TagBlob:
		return &Blob{Base: Base{obj: obj}}
	default:
		return nil
	}
}
