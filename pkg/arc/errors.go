package arc

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMagic       = errors.New("arc: invalid magic")
	ErrUnsupportedVersion = errors.New("arc: unsupported format version")
	ErrCorrupt            = errors.New("arc: corrupt container")

	// ErrNotFound covers an object id absent from a container and a
	// dependency index out of range in unsafe lookups.
	ErrNotFound = errors.New("arc: object not found")

	// ErrUnresolvedDependency means an external identifier is not present in
	// the collection. Safe lookups treat it as "no match" instead.
	ErrUnresolvedDependency = errors.New("arc: unresolved dependency")

	// ErrDuplicateObject signals two table rows decoding to the same path id.
	ErrDuplicateObject = errors.New("arc: duplicate object id")

	// ErrOwnership means a pointer target is not reachable from the container
	// it was requested from, neither self nor any dependency.
	ErrOwnership = errors.New("arc: pointer target not reachable")
)

// SizeMismatchError reports an object whose decode consumed a different
// number of bytes than its table entry declares. It is fatal for the load.
type SizeMismatchError struct {
	Tag       TypeTag
	Container string
	Path      string
	Want      int64
	Got       int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("arc: size mismatch decoding tag %d in %s (%s): declared %d bytes, consumed %d",
		e.Tag, e.Container, e.Path, e.Want, e.Got)
}

// DecodeError wraps a failure raised by an object's own decode, with the
// container context attached. The original cause is preserved.
type DecodeError struct {
	Tag       TypeTag
	Container string
	Path      string
	Version   string
	Platform  uint32
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("arc: decode tag %d in %s (%s, engine %q, platform %d): %v",
		e.Tag, e.Container, e.Path, e.Version, e.Platform, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
