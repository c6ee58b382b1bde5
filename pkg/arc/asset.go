package arc

// Object is the identity context for one decoded object: its local path id,
// its type tag, and the container that owns it.
type Object struct {
	PathID int64
	Tag    TypeTag
	Owner  *Container

	// Size is the declared payload length from the object table. Opaque
	// kinds use it to know how much to consume.
	Size uint32
}

// Asset is the decodable instance produced by a Factory. Decode reads the
// object's payload from the cursor, which the orchestrator has positioned at
// the start of the object's byte range. Decode must consume exactly the
// declared byte length.
type Asset interface {
	Decode(cur Cursor) error

	// Object returns the identity context the asset was created with.
	Object() *Object
}

// Factory produces a decodable instance for a type tag. Returning nil
// declines the tag; the orchestrator skips the entry without error.
type Factory interface {
	Create(tag TypeTag, obj *Object) Asset
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(tag TypeTag, obj *Object) Asset

func (f FactoryFunc) Create(tag TypeTag, obj *Object) Asset { return f(tag, obj) }

// Versioned is implemented by assets that carry an explicit engine-version
// string, such as build settings. The loader uses it to back-fill the
// container version on files that predate the embedded version string.
type Versioned interface {
	EngineVersion() string
}

// Named is implemented by assets that carry a name. RawName is the name as
// decoded; Name is the validated form. Self-scoped name searches compare the
// raw name while cross-file searches compare the validated name.
type Named interface {
	Name() string
	RawName() string
}

// Resolver resolves a dependency identifier to a loaded container. A
// container returned from Resolve must have completed its decode pass;
// implementations publish containers only after Load returns.
type Resolver interface {
	Resolve(path string) *Container
}
