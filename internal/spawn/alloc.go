// Package spawn implements deterministic node instantiation: resolving
// a stable key to a live operation, materializing a node in a target
// graph with the correct pin-allocation ordering, and running the
// kind-specific configuration pass.
package spawn

import "github.com/nodeforge-editor/nodeforge/internal/host"

// AllocationOrder is the two-phase pin-allocation classification. Some
// node classes cannot compute their final pin signature until they
// know their bound operation, so configuration must run before the
// first allocation for those.
type AllocationOrder int

const (
	// DefaultsFirst allocates default pins immediately on placement,
	// then configures, then reconciles.
	DefaultsFirst AllocationOrder = iota

	// ConfigureFirst binds the operation before any pins exist; the
	// pin set is allocated afterwards, then reconciled.
	ConfigureFirst
)

// OrderFor returns the allocation order for a node class. The
// classification is a fixed property of the class identity: callable-
// binding nodes and spawn-from-type nodes derive their entire
// signature from the binding, everything else has a usable default
// shape.
func OrderFor(class host.NodeClass) AllocationOrder {
	switch class {
	case host.NodeCallFunction, host.NodeSpawnFromClass:
		return ConfigureFirst
	default:
		return DefaultsFirst
	}
}
