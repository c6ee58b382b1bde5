package arc

import "fmt"

// ObjectEntry is one row of the object table: where an object's bytes live
// inside the data segment and what kind it is.
type ObjectEntry struct {
	// PathID is the object's local identity, unique within a container.
	PathID int64

	Tag TypeTag

	// Offset is relative to the header's DataOffset.
	Offset uint64

	// Size is the declared byte length. Decode must consume exactly this
	// many bytes or the load fails.
	Size uint32
}

// ObjectTable is the ordered list of object descriptors parsed from metadata.
// Declaration order is significant for the decode passes and is preserved
// verbatim; the table is never re-sorted.
type ObjectTable struct {
	entries []ObjectEntry
	byID    map[int64]int
}

// NewObjectTable builds a table from entries in declaration order.
// Duplicate path ids are rejected.
func NewObjectTable(entries []ObjectEntry) (*ObjectTable, error) {
	byID := make(map[int64]int, len(entries))
	for i, e := range entries {
		if _, dup := byID[e.PathID]; dup {
			return nil, fmt.Errorf("%w: path id %d", ErrDuplicateObject, e.PathID)
		}
		byID[e.PathID] = i
	}
	return &ObjectTable{entries: entries, byID: byID}, nil
}

// Len returns the number of table rows.
func (t *ObjectTable) Len() int { return len(t.entries) }

// Entry returns the i-th row in declaration order.
func (t *ObjectTable) Entry(i int) ObjectEntry { return t.entries[i] }

// Index returns the declaration-order index for a path id.
func (t *ObjectTable) Index(pathID int64) (int, error) {
	i, ok := t.byID[pathID]
	if !ok {
		return 0, fmt.Errorf("%w: path id %d", ErrNotFound, pathID)
	}
	return i, nil
}

// Lookup returns the entry for a path id.
func (t *ObjectTable) Lookup(pathID int64) (ObjectEntry, error) {
	i, err := t.Index(pathID)
	if err != nil {
		return ObjectEntry{}, err
	}
	return t.entries[i], nil
}

// Entries returns the rows in declaration order. The slice is shared; do not
// mutate it.
func (t *ObjectTable) Entries() []ObjectEntry { return t.entries }
