package arc

import "fmt"

// Pointer addresses an object, possibly in another container. FileIndex 0 is
// the holding container itself; FileIndex N (N>=1) is the (N-1)-th entry of
// the holding container's external list. The same numeric pair means
// different things in different containers: a pointer is only meaningful
// relative to the container that holds it.
type Pointer struct {
	FileIndex int32
	PathID    int64
}

// Get returns the object with the given path id from this container only.
// There is no cross-file fallback.
func (c *Container) Get(pathID int64) (Asset, error) {
	a, ok := c.objects[pathID]
	if !ok {
		return nil, fmt.Errorf("%w: path id %d in %s", ErrNotFound, pathID, c.Name)
	}
	return a, nil
}

// Deref resolves a pointer held by this container. In safe mode a missing
// dependency, an out-of-range file index or an absent target yields
// (nil, nil); otherwise each is an error.
func (c *Container) Deref(p Pointer, safe bool) (Asset, error) {
	if p.FileIndex == 0 {
		a, ok := c.objects[p.PathID]
		if !ok {
			if safe {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: path id %d in %s", ErrNotFound, p.PathID, c.Name)
		}
		return a, nil
	}

	dep, err := c.dependency(p.FileIndex, safe)
	if dep == nil || err != nil {
		return nil, err
	}
	a, ok := dep.objects[p.PathID]
	if !ok {
		if safe {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: path id %d in dependency %s", ErrNotFound, p.PathID, dep.Name)
	}
	return a, nil
}

// dependency resolves external index i (1-based) to a loaded container.
// In safe mode failures yield (nil, nil).
func (c *Container) dependency(i int32, safe bool) (*Container, error) {
	idx := int(i) - 1
	if idx < 0 || idx >= len(c.Meta.Externals) {
		if safe {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: dependency index %d out of range in %s", ErrNotFound, i, c.Name)
	}
	ext := c.Meta.Externals[idx]
	if c.collection == nil {
		if safe {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s (no collection)", ErrUnresolvedDependency, ext.Path)
	}
	dep := c.collection.Resolve(ext.Path)
	if dep == nil {
		if safe {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedDependency, ext.Path)
	}
	return dep, nil
}

// FindByType returns the first decoded object with the given tag, scanning
// this container first and then each resolvable dependency one level deep.
// Unresolvable dependencies are skipped silently.
func (c *Container) FindByType(tag TypeTag) Asset {
	for _, id := range c.order {
		if a := c.objects[id]; a.Object().Tag == tag {
			return a
		}
	}
	for i := range c.Meta.Externals {
		dep, _ := c.dependency(int32(i+1), true)
		if dep == nil {
			continue
		}
		for _, id := range dep.order {
			if a := dep.objects[id]; a.Object().Tag == tag {
				return a
			}
		}
	}
	return nil
}

// FindByTypeAndName returns the first decoded object with the given tag
// whose name matches, using the same search order as FindByType. The self
// scan compares the raw name while the dependency scan compares the
// validated name; the asymmetry is long-standing observable behaviour and is
// kept as is.
func (c *Container) FindByTypeAndName(tag TypeTag, name string) Asset {
	for _, id := range c.order {
		a := c.objects[id]
		if a.Object().Tag != tag {
			continue
		}
		if n, ok := a.(Named); ok && n.RawName() == name {
			return a
		}
	}
	for i := range c.Meta.Externals {
		dep, _ := c.dependency(int32(i+1), true)
		if dep == nil {
			continue
		}
		for _, id := range dep.order {
			a := dep.objects[id]
			if a.Object().Tag != tag {
				continue
			}
			if n, ok := a.(Named); ok && n.Name() == name {
				return a
			}
		}
	}
	return nil
}

// MakePointer builds the pointer encoding of target as held by this
// container: (0, id) when this container owns the target, otherwise
// (position+1, id) for the first external whose resolved container is the
// target's owner. Identity is container identity, not content equality. A
// target outside the reachable set is an ownership violation.
func (c *Container) MakePointer(target Asset) (Pointer, error) {
	obj := target.Object()
	if obj == nil || obj.Owner == nil {
		return Pointer{}, fmt.Errorf("%w: target has no owner", ErrOwnership)
	}
	if obj.Owner == c {
		return Pointer{FileIndex: 0, PathID: obj.PathID}, nil
	}
	for i, ext := range c.Meta.Externals {
		if c.collection == nil {
			break
		}
		dep := c.collection.Resolve(ext.Path)
		if dep == obj.Owner {
			return Pointer{FileIndex: int32(i + 1), PathID: obj.PathID}, nil
		}
	}
	return Pointer{}, fmt.Errorf("%w: %s does not reach %s", ErrOwnership, c.Name, obj.Owner.Name)
}
