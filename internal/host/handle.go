package host

// HandleKind identifies what an operation handle points at.
type HandleKind int

const (
	HandleFunction HandleKind = iota
	HandleVariableGet
	HandleVariableSet
	HandleCast
	HandleEvent
)

// OperationHandle is a live, host-owned reference to one operation's
// backing metadata. Handles are minted by the registry during context
// enumeration and become stale when the catalog is refreshed; hold a
// HandleRef (not the handle itself) across host calls.
type OperationHandle struct {
	id       uint64
	gen      uint64
	registry *Registry

	Kind HandleKind

	// Function backs HandleFunction and HandleEvent.
	Function *Function

	// Variable and VarOwner back the variable accessor kinds.
	Variable *Variable
	VarOwner *Class

	// CastTarget backs HandleCast.
	CastTarget *Class
}

// HandleRef is a weak reference to an operation handle: the handle's
// numeric id plus the catalog generation it was minted under. A
// generation mismatch on resolution means the handle is dead.
type HandleRef struct {
	ID         uint64
	Generation uint64
}

// Ref returns the weak reference for this handle.
func (h *OperationHandle) Ref() HandleRef {
	return HandleRef{ID: h.id, Generation: h.gen}
}

// Alive reports whether the handle still resolves against its
// registry.
func (h *OperationHandle) Alive() bool {
	return h.registry != nil && h.registry.ResolveHandle(h.Ref()) == h
}
