package host

import (
	"fmt"
	"strings"
	"sync"
)

// ObjectLoader loads an object by path from backing storage. It is the
// load-from-storage fallback used when a referenced object is not yet
// resident in the registry. May be nil.
type ObjectLoader func(path string) (*Object, error)

// Registry is the host's reflective catalog: every class, enum, struct
// shape, and object instance the editing session knows about, indexed
// for fast lookup by name and by fully qualified path.
//
// Operation handles minted from the registry carry the catalog
// generation current at mint time. RefreshCatalog invalidates all
// outstanding handles by bumping the generation, which is how cached
// handle references go stale.
type Registry struct {
	mu sync.RWMutex

	classesByName map[string]*Class
	classesByPath map[string]*Class
	enumsByName   map[string]*Enum
	structsByName map[string]*StructShape
	objectsByPath map[string]*Object

	handles      map[uint64]*OperationHandle
	nextHandleID uint64
	generation   uint64

	// handleSets memoizes the enumerated handle set per document own
	// class, so repeated discovery passes within one catalog generation
	// reuse their handles instead of minting a fresh full set each time.
	handleSets map[*Class][]*OperationHandle

	loader ObjectLoader
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classesByName: make(map[string]*Class),
		classesByPath: make(map[string]*Class),
		enumsByName:   make(map[string]*Enum),
		structsByName: make(map[string]*StructShape),
		objectsByPath: make(map[string]*Object),
		handles:       make(map[uint64]*OperationHandle),
		handleSets:    make(map[*Class][]*OperationHandle),
		generation:    1,
	}
}

// SetLoader installs the load-by-path fallback for object resolution.
func (r *Registry) SetLoader(loader ObjectLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loader = loader
}

// RegisterClass adds a class and wires ownership back-references on its
// functions and variables. Registering a class with the name or path of
// an existing one replaces it.
func (r *Registry) RegisterClass(c *Class) {
	for _, fn := range c.Functions {
		fn.Owner = c
		if fn.Module == "" {
			fn.Module = c.Module
		}
	}
	for _, v := range c.Variables {
		v.Owner = c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.classesByName[c.Name] = c
	if c.Path != "" {
		r.classesByPath[c.Path] = c
	}
	// The catalog changed shape; memoized enumerations are out of date.
	r.handleSets = make(map[*Class][]*OperationHandle)
}

// RegisterEnum adds an enumeration to the catalog.
func (r *Registry) RegisterEnum(e *Enum) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enumsByName[e.Name] = e
}

// RegisterStruct adds a generic struct shape to the catalog.
func (r *Registry) RegisterStruct(s *StructShape) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.structsByName[s.Name] = s
}

// RegisterObject adds an object instance addressable by path.
func (r *Registry) RegisterObject(o *Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objectsByPath[o.Path] = o
}

// ClassByName returns the class with the given short name, or nil.
func (r *Registry) ClassByName(name string) *Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classesByName[name]
}

// ClassByPath returns the class with the given fully qualified path,
// or nil.
func (r *Registry) ClassByPath(path string) *Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classesByPath[path]
}

// EnumByName returns the named enumeration, or nil.
func (r *Registry) EnumByName(name string) *Enum {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enumsByName[name]
}

// StructByName returns the named struct shape, or nil.
func (r *Registry) StructByName(name string) *StructShape {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.structsByName[name]
}

// Classes returns all registered classes in unspecified order.
func (r *Registry) Classes() []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	classes := make([]*Class, 0, len(r.classesByName))
	for _, c := range r.classesByName {
		classes = append(classes, c)
	}
	return classes
}

// FindObject resolves an object path, trying resident objects first and
// the loader fallback second. Loaded objects are cached in the
// registry.
func (r *Registry) FindObject(path string) (*Object, error) {
	r.mu.RLock()
	obj := r.objectsByPath[path]
	loader := r.loader
	r.mu.RUnlock()

	if obj != nil {
		return obj, nil
	}
	if loader == nil {
		return nil, fmt.Errorf("object not found: %s", path)
	}

	obj, err := loader(path)
	if err != nil || obj == nil {
		return nil, fmt.Errorf("object not found: %s", path)
	}
	r.RegisterObject(obj)
	return obj, nil
}

// ResolveType resolves a type descriptor string to a class. Three
// descriptor forms are accepted:
//
//   - a bare name: "Actor"
//   - a fully qualified path: "/Script/Engine.Actor"
//   - quoted reference syntax: "Class'/Script/Engine.Actor'"
//
// Returns an error naming the descriptor when nothing resolves.
func (r *Registry) ResolveType(descriptor string) (*Class, error) {
	desc := strings.TrimSpace(descriptor)
	if desc == "" {
		return nil, fmt.Errorf("empty type descriptor")
	}

	// Unwrap quoted reference syntax: Kind'/Path/To.Thing'
	if i := strings.IndexByte(desc, '\''); i >= 0 && strings.HasSuffix(desc, "'") {
		desc = desc[i+1 : len(desc)-1]
	}

	if strings.HasPrefix(desc, "/") {
		if c := r.ClassByPath(desc); c != nil {
			return c, nil
		}
		// The trailing segment of a path is a usable short name.
		if i := strings.LastIndexByte(desc, '.'); i >= 0 {
			if c := r.ClassByName(desc[i+1:]); c != nil {
				return c, nil
			}
		}
		return nil, fmt.Errorf("unresolved type path: %s", descriptor)
	}

	if c := r.ClassByName(desc); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("unresolved type: %s", descriptor)
}

// Generation returns the current catalog generation.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// RefreshCatalog invalidates every outstanding operation handle. The
// host calls this whenever the underlying catalog changes shape
// (module load/unload, class recompile).
func (r *Registry) RefreshCatalog() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.handles = make(map[uint64]*OperationHandle)
	r.handleSets = make(map[*Class][]*OperationHandle)
}

// handleSet returns the memoized enumeration for an own class, or nil.
func (r *Registry) handleSet(own *Class) []*OperationHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handleSets[own]
}

// storeHandleSet memoizes an enumeration for an own class. The set is
// dropped whenever the catalog changes shape or refreshes.
func (r *Registry) storeHandleSet(own *Class, handles []*OperationHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handleSets[own] = handles
}

// mintHandle registers a new live handle at the current generation.
func (r *Registry) mintHandle(h *OperationHandle) *OperationHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextHandleID++
	h.id = r.nextHandleID
	h.gen = r.generation
	h.registry = r
	r.handles[h.id] = h
	return h
}

// ResolveHandle resolves a weak handle reference. Returns nil when the
// reference is stale: the handle was minted under an older catalog
// generation or never existed.
func (r *Registry) ResolveHandle(ref HandleRef) *OperationHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h := r.handles[ref.ID]
	if h == nil || h.gen != ref.Generation {
		return nil
	}
	return h
}
