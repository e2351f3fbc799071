package host

import "sort"

// Context is the graph context provider: given a document and one of
// its graph regions, it enumerates the operation handles structurally
// valid there and exposes the document's own type identity for
// self/external scope resolution.
type Context struct {
	Registry *Registry
	Document *GraphDocument
	Graph    *Graph
}

// NewContext builds a context for a graph region of a document.
func NewContext(registry *Registry, doc *GraphDocument, graph *Graph) *Context {
	return &Context{Registry: registry, Document: doc, Graph: graph}
}

// OwnClass returns the document's own type, or nil for a typeless
// document.
func (c *Context) OwnClass() *Class {
	if c.Document == nil {
		return nil
	}
	return c.Document.OwnClass
}

// Visible reports whether a callable passes the ambient visibility
// filter for this context. Internal functions are never offered;
// events only appear on the document's own class chain.
func (c *Context) Visible(fn *Function) bool {
	if fn == nil || fn.Internal {
		return false
	}
	if fn.IsEvent {
		own := c.OwnClass()
		return own != nil && own.IsChildOf(fn.Owner)
	}
	return true
}

// Handles enumerates every operation handle valid in this context, in
// deterministic class-name order: callables and events, variable
// accessors for every registered class, and one cast per class. The
// set is minted once per catalog generation and own class, then reused
// until the catalog changes shape.
func (c *Context) Handles() []*OperationHandle {
	own := c.OwnClass()
	if cached := c.Registry.handleSet(own); cached != nil {
		return cached
	}

	classes := c.Registry.Classes()
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })

	var handles []*OperationHandle
	for _, class := range classes {
		for _, fn := range class.Functions {
			if !c.Visible(fn) {
				continue
			}
			kind := HandleFunction
			if fn.IsEvent {
				kind = HandleEvent
			}
			handles = append(handles, c.Registry.mintHandle(&OperationHandle{
				Kind:     kind,
				Function: fn,
			}))
		}
		for _, v := range class.Variables {
			handles = append(handles, c.Registry.mintHandle(&OperationHandle{
				Kind:     HandleVariableGet,
				Variable: v,
				VarOwner: class,
			}))
			handles = append(handles, c.Registry.mintHandle(&OperationHandle{
				Kind:     HandleVariableSet,
				Variable: v,
				VarOwner: class,
			}))
		}
		handles = append(handles, c.Registry.mintHandle(&OperationHandle{
			Kind:       HandleCast,
			CastTarget: class,
		}))
	}
	c.Registry.storeHandleSet(own, handles)
	return handles
}
