// Package store owns a set of loaded ARC containers and resolves dependency
// identifiers between them. Containers are registered only after their
// decode pass has completed, so cross-file pointer resolution never observes
// a half-populated object map.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samcharles93/reliquary/internal/logger"
	"github.com/samcharles93/reliquary/pkg/arc"
)

// Store implements arc.Resolver over a set of loaded containers keyed by
// their normalized path.
type Store struct {
	factory  arc.Factory
	selector *arc.Selector
	def      *arc.Layout
	log      logger.Logger

	mu         sync.RWMutex
	containers map[string]*arc.Container
}

func New(factory arc.Factory, log logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	return &Store{
		factory:    factory,
		selector:   arc.NewSelector(),
		def:        &arc.Layout{},
		log:        log,
		containers: make(map[string]*arc.Container),
	}
}

// normKey reduces a dependency identifier or file path to its lookup key.
// Externals reference files by path-equivalent names, so the key is the
// lowercased base name.
func normKey(path string) string {
	return strings.ToLower(filepath.Base(filepath.ToSlash(path)))
}

// Resolve returns the loaded container for a dependency identifier, or nil.
func (s *Store) Resolve(path string) *arc.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.containers[normKey(path)]
}

// Load opens one container file and registers it once fully decoded.
func (s *Store) Load(path string) (*arc.Container, error) {
	name := filepath.Base(path)
	c, err := arc.Open(path, arc.LoadConfig{
		Name:          name,
		Path:          path,
		Factory:       s.factory,
		Collection:    s,
		Selector:      s.selector,
		DefaultLayout: s.def,
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	key := normKey(path)
	s.mu.Lock()
	if prev, dup := s.containers[key]; dup {
		s.mu.Unlock()
		_ = c.Close()
		return prev, fmt.Errorf("load %s: already loaded", path)
	}
	s.containers[key] = c
	s.mu.Unlock()

	s.log.Debug("container loaded", "name", name, "objects", c.Len(),
		"engine", c.Meta.EngineVersion)
	return c, nil
}

// LoadDir loads every .arc file under dir. Containers decode concurrently;
// each load owns its cursor and object map, and registration happens only
// after a container's decode pass completes. The first error aborts the
// batch result but does not unload containers that finished cleanly.
func (s *Store) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".arc") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Load(path); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// Get returns a loaded container by name or path key, or nil.
func (s *Store) Get(name string) *arc.Container {
	return s.Resolve(name)
}

// Containers returns the loaded containers sorted by name.
func (s *Store) Containers() []*arc.Container {
	s.mu.RLock()
	out := make([]*arc.Container, 0, len(s.containers))
	for _, c := range s.containers {
		out = append(out, c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close releases every loaded container.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for key, c := range s.containers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.containers, key)
	}
	return firstErr
}
