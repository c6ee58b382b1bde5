// Package arc implements the Asset Resource Container format.
//
// An ARC file packs many type-tagged objects into one data segment, described
// by an object table in the metadata region, together with a list of external
// containers that objects may point into. The package covers container
// loading, ordered decoding, byte-exact validation and cross-file pointer
// resolution. Per-kind payload decoding is supplied by the caller through a
// Factory.
package arc

// ARC global constants must never change.
const (
	// MagicARC is the file magic for all ARC containers.
	// It is encoded as "ARC\0".
	MagicARC = "ARC\x00"

	// CurrentVersion is the format version written by this package.
	CurrentVersion uint32 = 5
)

// Format version gates. Each constant names the first version that carries
// the feature.
const (
	// VersionEngineString: metadata carries an embedded engine-version string.
	// Older files back-fill it from a decoded settings object, best effort.
	VersionEngineString uint32 = 2

	// VersionPlatform: metadata carries a target-platform field.
	VersionPlatform uint32 = 3

	// VersionHeaderEndian: the header carries an explicit endian flag which
	// takes precedence over the metadata swap flag.
	VersionHeaderEndian uint32 = 4

	// VersionScriptRefs: metadata carries a script-reference section that is
	// decoded ahead of the main table scan.
	VersionScriptRefs uint32 = 5
)

// TypeTag identifies an object kind inside a container.
// Keep these stable forever; add new values only.
type TypeTag uint32

const (
	TagUnknown  TypeTag = 0
	TagScript   TypeTag = 1 // script definition, decoded before dependent kinds
	TagSettings TypeTag = 2 // build settings, carries the engine version
	TagText     TypeTag = 3
	TagBlob     TypeTag = 4
	TagMaterial TypeTag = 5
	TagTexture  TypeTag = 6
)

// IsScriptDefinition reports whether objects of this tag carry type
// information that other kinds depend on. Such objects are decoded in their
// own pass before the general table scan.
func (t TypeTag) IsScriptDefinition() bool {
	return t == TagScript
}

// DefaultResourcePrefix marks synthetic placeholder containers that carry no
// meaningful per-file layout information and always use the collection
// default layout.
const DefaultResourcePrefix = "default-resources"
