package host

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeClass is the closed set of node classes the placement host can
// materialize. Each creatable operation maps onto exactly one class.
type NodeClass int

const (
	NodeCallFunction NodeClass = iota
	NodeVariableGet
	NodeVariableSet
	NodeDynamicCast
	NodeEvent
	NodeSpawnFromClass
	NodeReroute
	NodeComment
)

// String returns the display name of the node class.
func (c NodeClass) String() string {
	switch c {
	case NodeCallFunction:
		return "CallFunction"
	case NodeVariableGet:
		return "VariableGet"
	case NodeVariableSet:
		return "VariableSet"
	case NodeDynamicCast:
		return "DynamicCast"
	case NodeEvent:
		return "Event"
	case NodeSpawnFromClass:
		return "SpawnFromClass"
	case NodeReroute:
		return "Reroute"
	case NodeComment:
		return "Comment"
	default:
		return fmt.Sprintf("NodeClass(%d)", int(c))
	}
}

// GraphKind distinguishes the graph regions of a document.
type GraphKind int

const (
	EventGraph GraphKind = iota
	FunctionGraph
)

// Position is a 2D placement coordinate on the graph canvas.
type Position struct {
	X, Y float64
}

// Pin is one named input or output slot on a node. Default holds the
// literal value used when the pin is unconnected; it is nil for exec
// pins and freshly allocated wildcard pins.
type Pin struct {
	Name      string
	Direction Direction
	Type      PropType
	Default   any
	Tooltip   string
	Connected bool
	Reference bool
	Hidden    bool
	Advanced  bool
}

// Node is a live node owned by its graph. Binding fields are populated
// by the configuration pass; pin layout is derived from them by
// AllocateDefaultPins and ReconstructNode.
type Node struct {
	ID       string
	Class    NodeClass
	Title    string
	Position Position
	Pins     []*Pin

	BoundFunction *Function
	BoundVariable *Variable
	VarOwner      *Class
	SelfScoped    bool
	CastTarget    *Class
	SpawnClass    *Class

	graph *Graph
}

// Graph is one node-graph region of a document.
type Graph struct {
	Name     string
	Kind     GraphKind
	Document *GraphDocument
	Nodes    []*Node
}

// GraphDocument owns a set of graphs and carries the document's own
// type identity, which scope resolution compares owners against.
type GraphDocument struct {
	Name     string
	OwnClass *Class
	Graphs   []*Graph
	Modified bool
}

// NewGraphDocument creates a document with a single event graph.
func NewGraphDocument(name string, ownClass *Class) *GraphDocument {
	doc := &GraphDocument{Name: name, OwnClass: ownClass}
	doc.Graphs = append(doc.Graphs, &Graph{
		Name:     "EventGraph",
		Kind:     EventGraph,
		Document: doc,
	})
	return doc
}

// MainGraph returns the document's first graph.
func (d *GraphDocument) MainGraph() *Graph {
	return d.Graphs[0]
}

// MarkModified flags the document as structurally changed.
func (d *GraphDocument) MarkModified() {
	d.Modified = true
}

// PlaceNode materializes a node of the given class at a position and
// assigns it a unique identifier. Pins are not allocated here; the
// caller drives allocation order.
func (g *Graph) PlaceNode(class NodeClass, pos Position) *Node {
	n := &Node{
		ID:       uuid.NewString(),
		Class:    class,
		Title:    class.String(),
		Position: pos,
		graph:    g,
	}
	g.Nodes = append(g.Nodes, n)
	return n
}

// FindNode returns the node with the given id, or nil.
func (g *Graph) FindNode(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// FindPin returns the named pin, or nil.
func (n *Node) FindPin(name string) *Pin {
	for _, p := range n.Pins {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// SetPosition moves the node on the canvas.
func (n *Node) SetPosition(pos Position) {
	n.Position = pos
}

// Graph returns the owning graph.
func (n *Node) Graph() *Graph {
	return n.graph
}

// AllocateDefaultPins builds the node's initial pin set. For nodes not
// yet bound to an operation the value pins come out as wildcards;
// ReconstructNode recomputes them once a binding is present.
func (n *Node) AllocateDefaultPins() {
	n.Pins = n.buildPins()
}

// ReconstructNode recomputes the pin set against the node's current
// bindings, preserving default values of pins that survive by name.
// This is the reconciliation step run after configuration.
func (n *Node) ReconstructNode() {
	old := n.Pins
	n.Pins = n.buildPins()
	for _, p := range n.Pins {
		for _, prev := range old {
			if prev.Name == p.Name && prev.Direction == p.Direction {
				if prev.Default != nil {
					p.Default = prev.Default
				}
				p.Connected = prev.Connected
				break
			}
		}
	}
}

func execPin(name string, dir Direction) *Pin {
	return &Pin{Name: name, Direction: dir, Type: PropType{Kind: KindExec}}
}

func wildcardPin(name string, dir Direction) *Pin {
	return &Pin{Name: name, Direction: dir, Type: PropType{Kind: KindUnknown, TypeName: "Wildcard"}}
}

// buildPins derives the pin layout from the node class and bindings.
func (n *Node) buildPins() []*Pin {
	switch n.Class {
	case NodeCallFunction:
		return n.buildCallFunctionPins()
	case NodeVariableGet:
		if n.BoundVariable == nil {
			return []*Pin{wildcardPin("Value", Output)}
		}
		return []*Pin{{
			Name:      n.BoundVariable.Name,
			Direction: Output,
			Type:      n.BoundVariable.Type,
			Tooltip:   n.BoundVariable.Tooltip,
		}}
	case NodeVariableSet:
		pins := []*Pin{execPin("execute", Input), execPin("then", Output)}
		if n.BoundVariable == nil {
			return append(pins, wildcardPin("Value", Input), wildcardPin("Output", Output))
		}
		pins = append(pins, &Pin{
			Name:      n.BoundVariable.Name,
			Direction: Input,
			Type:      n.BoundVariable.Type,
			Default:   n.BoundVariable.Default,
		})
		// Pass-through of the freshly assigned value.
		pins = append(pins, &Pin{
			Name:      "Output",
			Direction: Output,
			Type:      n.BoundVariable.Type,
		})
		return pins
	case NodeDynamicCast:
		pins := []*Pin{
			execPin("execute", Input),
			execPin("then", Output),
			execPin("CastFailed", Output),
		}
		if n.CastTarget == nil {
			return append(pins, wildcardPin("Object", Input), wildcardPin("AsObject", Output))
		}
		pins = append(pins, &Pin{
			Name:      "Object",
			Direction: Input,
			Type:      PropType{Kind: KindObject, TypeName: "Object"},
		})
		pins = append(pins, &Pin{
			Name:      "As" + n.CastTarget.Name,
			Direction: Output,
			Type: PropType{
				Kind:     KindObject,
				TypeName: n.CastTarget.Name,
				TypePath: n.CastTarget.Path,
				Class:    n.CastTarget,
			},
		})
		return pins
	case NodeEvent:
		pins := []*Pin{execPin("then", Output)}
		if n.BoundFunction != nil {
			for _, param := range n.BoundFunction.Params {
				if param.Direction != Input {
					continue
				}
				// Event parameters surface as data outputs feeding
				// the graph.
				pins = append(pins, &Pin{
					Name:      param.Name,
					Direction: Output,
					Type:      param.Type,
					Tooltip:   param.Tooltip,
					Hidden:    param.Hidden,
				})
			}
		}
		return pins
	case NodeSpawnFromClass:
		pins := []*Pin{
			execPin("execute", Input),
			execPin("then", Output),
			{
				Name:      "SpawnTransform",
				Direction: Input,
				Type:      PropType{Kind: KindStruct, TypeName: "Transform"},
			},
		}
		if n.SpawnClass == nil {
			pins = append(pins, wildcardPin("Class", Input), wildcardPin("ReturnValue", Output))
			return pins
		}
		pins = append(pins, &Pin{
			Name:      "Class",
			Direction: Input,
			Type: PropType{
				Kind:     KindObject,
				TypeName: n.SpawnClass.Name,
				TypePath: n.SpawnClass.Path,
				Class:    n.SpawnClass,
			},
		})
		pins = append(pins, &Pin{
			Name:      "ReturnValue",
			Direction: Output,
			Type: PropType{
				Kind:     KindObject,
				TypeName: n.SpawnClass.Name,
				TypePath: n.SpawnClass.Path,
				Class:    n.SpawnClass,
			},
		})
		return pins
	case NodeReroute:
		return []*Pin{wildcardPin("InputPin", Input), wildcardPin("OutputPin", Output)}
	case NodeComment:
		return nil
	default:
		return nil
	}
}

func (n *Node) buildCallFunctionPins() []*Pin {
	var pins []*Pin
	fn := n.BoundFunction
	if fn == nil {
		// A call node with no binding yet has only its control pins;
		// data pins appear once the callable is bound.
		return []*Pin{execPin("execute", Input), execPin("then", Output)}
	}
	if !fn.Pure {
		pins = append(pins, execPin("execute", Input), execPin("then", Output))
	}
	if !fn.Static {
		pins = append(pins, &Pin{
			Name:      "self",
			Direction: Input,
			Type: PropType{
				Kind:     KindObject,
				TypeName: fn.Owner.Name,
				TypePath: fn.Owner.Path,
				Class:    fn.Owner,
			},
			Hidden: n.SelfScoped,
		})
	}
	for i := range fn.Params {
		param := &fn.Params[i]
		pins = append(pins, &Pin{
			Name:      param.Name,
			Direction: param.Direction,
			Type:      param.Type,
			Default:   param.Default,
			Tooltip:   param.Tooltip,
			Reference: param.IsReference,
			Hidden:    param.Hidden,
			Advanced:  param.Advanced,
		})
	}
	return pins
}
