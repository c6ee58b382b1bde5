package arc

import (
	"strings"
	"sync"
)

// Layout flags.
const (
	// FlagAlignedFields means payload fields inside each object are aligned
	// to 4-byte boundaries.
	FlagAlignedFields uint32 = 1 << 0

	// FlagWideStrings means name fields use u32 length prefixes even in
	// containers whose engine otherwise wrote u16 prefixes.
	FlagWideStrings uint32 = 1 << 1
)

// LayoutKey identifies a layout variant. Containers with equal keys share
// one Layout instance.
type LayoutKey struct {
	EngineVersion string
	Platform      uint32
	Flags         uint32
}

// Layout is an immutable description of the field widths and optional-field
// presence used to interpret a container's payload. It is selected once at
// load time and never mutated afterwards.
type Layout struct {
	EngineVersion string
	Platform      uint32
	Flags         uint32
}

// Key returns the cache key for this layout.
func (l *Layout) Key() LayoutKey {
	return LayoutKey{EngineVersion: l.EngineVersion, Platform: l.Platform, Flags: l.Flags}
}

// AlignedFields reports whether payload fields are 4-byte aligned.
func (l *Layout) AlignedFields() bool { return l.Flags&FlagAlignedFields != 0 }

// IsDefaultResource reports whether a container name follows the reserved
// default-resource convention. Such files carry no meaningful per-file
// layout information.
func IsDefaultResource(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), DefaultResourcePrefix)
}

// Selector hands out shared Layout instances keyed by
// (engine-version, platform, flags).
type Selector struct {
	mu    sync.Mutex
	cache map[LayoutKey]*Layout
}

func NewSelector() *Selector {
	return &Selector{cache: make(map[LayoutKey]*Layout)}
}

// Select decides which layout applies to a container. Files that predate the
// platform field, and default-resource placeholder files, fall back to the
// collection default unchanged; everything else gets the shared instance for
// its (engine-version, platform, flags) key.
func (s *Selector) Select(def *Layout, h *Header, m *Metadata, name string) *Layout {
	if !h.HasPlatform() || IsDefaultResource(name) {
		return def
	}
	key := LayoutKey{EngineVersion: m.EngineVersion, Platform: m.Platform, Flags: m.Flags}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.cache[key]; ok {
		return l
	}
	l := &Layout{EngineVersion: key.EngineVersion, Platform: key.Platform, Flags: key.Flags}
	s.cache[key] = l
	return l
}
