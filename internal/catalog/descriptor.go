// Package catalog implements operation discovery over the host's
// reflective catalog: descriptor extraction, ranked search, and the
// stable-key handle cache that later exact-key node creation resolves
// against.
package catalog

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nodeforge-editor/nodeforge/internal/host"
	"github.com/nodeforge-editor/nodeforge/internal/marshal"
)

// OperationKind is the closed set of categories a discoverable
// operation falls into.
type OperationKind string

const (
	KindFunctionCall OperationKind = "FunctionCall"
	KindVariableGet  OperationKind = "VariableGet"
	KindVariableSet  OperationKind = "VariableSet"
	KindCast         OperationKind = "Cast"
	KindEvent        OperationKind = "Event"
	KindSynthetic    OperationKind = "Synthetic"
)

// FunctionInfo is the kind-specific metadata block for callables.
type FunctionInfo struct {
	OwnerName string `json:"owner_name"`
	OwnerPath string `json:"owner_path,omitempty"`
	Module    string `json:"module,omitempty"`
	Static    bool   `json:"static"`
	Const     bool   `json:"const"`
	Pure      bool   `json:"pure"`
}

// VariableInfo is the kind-specific metadata block for variable
// accessors. External is set when the variable is defined outside the
// target document's own type.
type VariableInfo struct {
	Name      string `json:"name"`
	OwnerName string `json:"owner_name"`
	OwnerPath string `json:"owner_path,omitempty"`
	External  bool   `json:"external"`
}

// CastInfo is the kind-specific metadata block for casts.
type CastInfo struct {
	TargetName string `json:"target_name"`
	TargetPath string `json:"target_path,omitempty"`
}

// PinDescriptor describes one parameter/return slot of an operation.
// Descriptors are immutable once produced; the instantiation engine
// re-extracts fresh ones from a live node when it needs the realized
// pin set.
type PinDescriptor struct {
	Name         string `json:"name"`
	DeclaredType string `json:"declared_type"`
	TypePath     string `json:"type_path,omitempty"`
	Direction    string `json:"direction"`
	IsArray      bool   `json:"is_array"`
	IsReference  bool   `json:"is_reference"`
	IsHidden     bool   `json:"is_hidden"`
	IsAdvanced   bool   `json:"is_advanced"`
	DefaultValue string `json:"default_value,omitempty"`
	Tooltip      string `json:"tooltip,omitempty"`
}

// OperationDescriptor is the serializable summary of one discoverable
// operation: stable key, display metadata, kind-specific block, and
// full pin signature.
type OperationDescriptor struct {
	StableKey   string        `json:"stable_key"`
	DisplayName string        `json:"display_name"`
	Category    string        `json:"category,omitempty"`
	Description string        `json:"description,omitempty"`
	Tooltip     string        `json:"tooltip,omitempty"`
	Keywords    []string      `json:"keywords,omitempty"`
	Kind        OperationKind `json:"operation_kind"`

	Function *FunctionInfo `json:"function,omitempty"`
	Variable *VariableInfo `json:"variable,omitempty"`
	Cast     *CastInfo     `json:"cast,omitempty"`

	Pins             []PinDescriptor `json:"pins"`
	ExpectedPinCount int             `json:"expected_pin_count"`

	// Relevance is assigned only during ranked search; it is not a
	// persistent property of the operation.
	Relevance uint32 `json:"relevance_score,omitempty"`

	// NodeClass is the node class the instantiation engine
	// materializes for this operation.
	NodeClass host.NodeClass `json:"-"`

	handleRef host.HandleRef
}

// HandleRef returns the weak reference to the backing operation
// handle. The zero ref means the descriptor is synthetic or degraded.
func (d *OperationDescriptor) HandleRef() host.HandleRef {
	return d.handleRef
}

// Extractor produces operation descriptors from live handles. It
// never fails: malformed handles degrade to a Synthetic descriptor
// with best-effort display fields, logged at Warn, so that one bad
// catalog entry cannot abort discovery of the rest.
type Extractor struct {
	marshaller *marshal.Marshaller
	log        *zap.Logger
}

// NewExtractor creates an extractor using the given marshaller for pin
// default serialization.
func NewExtractor(marshaller *marshal.Marshaller, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{marshaller: marshaller, log: log}
}

// Extract produces the canonical descriptor for one operation handle.
// ctx is used to resolve self/external variable scope; it may be nil,
// in which case every variable is treated as external.
func (e *Extractor) Extract(h *host.OperationHandle, ctx *host.Context) OperationDescriptor {
	if h == nil {
		return e.degraded("nil operation handle")
	}

	switch h.Kind {
	case host.HandleFunction:
		if h.Function == nil || h.Function.Owner == nil {
			return e.degraded("function handle with no resolvable callable")
		}
		return e.extractFunction(h, false)
	case host.HandleEvent:
		if h.Function == nil || h.Function.Owner == nil {
			return e.degraded("event handle with no resolvable callable")
		}
		return e.extractFunction(h, true)
	case host.HandleVariableGet, host.HandleVariableSet:
		if h.Variable == nil || h.VarOwner == nil {
			return e.degraded("variable handle with no resolvable variable")
		}
		return e.extractVariable(h, ctx)
	case host.HandleCast:
		if h.CastTarget == nil {
			return e.degraded("cast handle with no target type")
		}
		return e.extractCast(h)
	default:
		return e.degraded(fmt.Sprintf("unrecognized handle kind %d", h.Kind))
	}
}

func (e *Extractor) degraded(reason string) OperationDescriptor {
	e.log.Warn("degraded operation descriptor", zap.String("reason", reason))
	return OperationDescriptor{
		DisplayName: "<unknown operation>",
		Description: reason,
		Kind:        KindSynthetic,
		NodeClass:   host.NodeReroute,
		Pins:        []PinDescriptor{},
	}
}

func (e *Extractor) extractFunction(h *host.OperationHandle, event bool) OperationDescriptor {
	fn := h.Function
	desc := OperationDescriptor{
		StableKey:   FunctionKey(fn.Owner.Name, fn.Name),
		DisplayName: fn.Name,
		Category:    fn.Category,
		Description: fn.Description,
		Tooltip:     fn.Tooltip,
		Keywords:    fn.Keywords,
		Kind:        KindFunctionCall,
		NodeClass:   host.NodeCallFunction,
		Function: &FunctionInfo{
			OwnerName: fn.Owner.Name,
			OwnerPath: fn.Owner.Path,
			Module:    fn.Module,
			Static:    fn.Static,
			Const:     fn.Const,
			Pure:      fn.Pure,
		},
		handleRef: h.Ref(),
	}
	if event {
		desc.Kind = KindEvent
		desc.NodeClass = host.NodeEvent
	}
	e.attachPins(&desc, &host.Node{Class: desc.NodeClass, BoundFunction: fn})
	return desc
}

func (e *Extractor) extractVariable(h *host.OperationHandle, ctx *host.Context) OperationDescriptor {
	v := h.Variable
	get := h.Kind == host.HandleVariableGet

	// Only variables defined by exactly the document's own type get the
	// unprefixed self key. Ancestor-owned accessors keep the owner
	// prefix, so a name shadowed along the class chain still yields one
	// key per owning type.
	external := true
	if ctx != nil {
		if own := ctx.OwnClass(); own != nil && own == h.VarOwner {
			external = false
		}
	}

	kind, nodeClass := KindVariableGet, host.NodeVariableGet
	if !get {
		kind, nodeClass = KindVariableSet, host.NodeVariableSet
	}
	desc := OperationDescriptor{
		StableKey:   VariableKey(h.VarOwner.Name, v.Name, get, external),
		DisplayName: accessorVerb(get) + " " + v.Name,
		Category:    v.Category,
		Tooltip:     v.Tooltip,
		Kind:        kind,
		NodeClass:   nodeClass,
		Variable: &VariableInfo{
			Name:      v.Name,
			OwnerName: h.VarOwner.Name,
			OwnerPath: h.VarOwner.Path,
			External:  external,
		},
		handleRef: h.Ref(),
	}
	e.attachPins(&desc, &host.Node{
		Class:         nodeClass,
		BoundVariable: v,
		VarOwner:      h.VarOwner,
	})
	return desc
}

func (e *Extractor) extractCast(h *host.OperationHandle) OperationDescriptor {
	target := h.CastTarget
	desc := OperationDescriptor{
		StableKey:   CastKey(target.Name),
		DisplayName: "Cast To " + target.Name,
		Category:    "Utilities|Casting",
		Tooltip:     "Tries to access the object as the type " + target.Name,
		Kind:        KindCast,
		NodeClass:   host.NodeDynamicCast,
		Cast: &CastInfo{
			TargetName: target.Name,
			TargetPath: target.Path,
		},
		handleRef: h.Ref(),
	}
	e.attachPins(&desc, &host.Node{Class: host.NodeDynamicCast, CastTarget: target})
	return desc
}

// attachPins realizes the operation's pin signature on a detached node
// and records its descriptors. The same conversion serves post-creation
// re-extraction from live nodes.
func (e *Extractor) attachPins(desc *OperationDescriptor, n *host.Node) {
	n.AllocateDefaultPins()
	desc.Pins = e.PinsFromNode(n)
	desc.ExpectedPinCount = len(desc.Pins)
}

// PinsFromNode converts a node's realized pins into pin descriptors.
func (e *Extractor) PinsFromNode(n *host.Node) []PinDescriptor {
	pins := make([]PinDescriptor, 0, len(n.Pins))
	for _, p := range n.Pins {
		pins = append(pins, PinDescriptor{
			Name:         p.Name,
			DeclaredType: displayType(p.Type),
			TypePath:     p.Type.TypePath,
			Direction:    p.Direction.String(),
			IsArray:      p.Type.Kind == host.KindArray,
			IsReference:  p.Reference,
			IsHidden:     p.Hidden,
			IsAdvanced:   p.Advanced,
			DefaultValue: e.defaultString(p.Type, p.Default),
			Tooltip:      p.Tooltip,
		})
	}
	return pins
}

// defaultString serializes a pin default through the marshaller. Bare
// scalars render unquoted; structured defaults render as JSON.
func (e *Extractor) defaultString(t host.PropType, v any) string {
	if v == nil {
		return ""
	}
	switch t.Kind {
	case host.KindString, host.KindName, host.KindText:
		s, _ := v.(string)
		return s
	}
	data, err := marshal.DynamicToJSON(e.marshaller.ToDynamic(t, v))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func displayType(t host.PropType) string {
	if t.Kind == host.KindArray && t.Elem != nil {
		return displayType(*t.Elem) + "[]"
	}
	if t.TypeName != "" {
		return t.TypeName
	}
	return t.Kind.String()
}

func accessorVerb(get bool) string {
	if get {
		return "Get"
	}
	return "Set"
}
