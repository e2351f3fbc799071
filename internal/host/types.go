// Package host implements the in-memory object model that backs the
// node catalog: a registry of classes, functions, variables, enums, and
// struct shapes, plus the graph documents whose nodes the instantiation
// engine creates. It plays the role of the reflective catalog that a
// game-engine-style host would provide at runtime; here it is populated
// explicitly by the embedding application (or by tests).
package host

// PropKind identifies the category of a property type. The set is
// closed: the marshaller and the pin allocator switch over it
// exhaustively.
type PropKind int

const (
	KindUnknown PropKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindName // symbolic name, interned identifier semantics
	KindText // localized display text
	KindEnum
	KindObject
	KindSoftObject // lazy reference, stored as path until resolved
	KindWeakObject
	KindStruct
	KindArray
	KindExec // control-flow pin, carries no value
)

// String returns a stable lower-case name for the kind.
func (k PropKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindName:
		return "name"
	case KindText:
		return "text"
	case KindEnum:
		return "enum"
	case KindObject:
		return "object"
	case KindSoftObject:
		return "softobject"
	case KindWeakObject:
		return "weakobject"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	case KindExec:
		return "exec"
	default:
		return "unknown"
	}
}

// PropType describes the declared type of a variable, parameter, or
// pin. TypeName is the short display name ("Vector", "Actor"); TypePath
// is the fully qualified path used for exact matching.
type PropType struct {
	Kind     PropKind
	TypeName string
	TypePath string

	// Elem is the element type for KindArray.
	Elem *PropType

	// Enum is the resolved enumeration for KindEnum.
	Enum *Enum

	// Struct is the field layout for KindStruct. Nil for the
	// well-known aggregates, which are matched by TypeName.
	Struct *StructShape

	// Class is the declared class for object reference kinds.
	Class *Class
}

// IsObjectRef reports whether the type is one of the object reference
// variants (strong, soft, or weak).
func (t PropType) IsObjectRef() bool {
	return t.Kind == KindObject || t.Kind == KindSoftObject || t.Kind == KindWeakObject
}

// StructShape describes a generic struct type field by field. The
// well-known aggregates (Vector, Rotator, LinearColor, Color,
// Transform) bypass shapes and are handled by dedicated codecs.
type StructShape struct {
	Name   string
	Path   string
	Fields []StructField
}

// StructField is one named field of a generic struct shape.
type StructField struct {
	Name string
	Type PropType
}

// Enum is an enumeration with a symbolic name table. Names are indexed
// by their numeric value.
type Enum struct {
	Name  string
	Path  string
	Names []string
}

// ValueOf resolves a symbolic name to its numeric value.
func (e *Enum) ValueOf(name string) (int, bool) {
	for i, n := range e.Names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// NameOf resolves a numeric value to its symbolic name. Returns false
// when the value has no entry in the name table.
func (e *Enum) NameOf(value int) (string, bool) {
	if value < 0 || value >= len(e.Names) {
		return "", false
	}
	return e.Names[value], true
}

// Direction distinguishes input and output parameter/pin slots.
type Direction int

const (
	Input Direction = iota
	Output
)

// String returns "input" or "output".
func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Param is one parameter or return slot of a function signature.
type Param struct {
	Name        string
	Type        PropType
	Direction   Direction
	Default     any
	Tooltip     string
	IsReference bool
	Hidden      bool
	Advanced    bool
}

// Function is a callable registered on a class. Owner is assigned when
// the function is attached to its class.
type Function struct {
	Name        string
	Owner       *Class
	Module      string
	Category    string
	Description string
	Tooltip     string
	Keywords    []string
	Params      []Param

	Static  bool
	Const   bool
	Pure    bool
	IsEvent bool

	// Internal functions are excluded by the ambient visibility
	// filter used during discovery and callable binding.
	Internal bool
}

// Variable is a typed member registered on a class.
type Variable struct {
	Name     string
	Owner    *Class
	Type     PropType
	Category string
	Tooltip  string
	Default  any
}

// Class is a registered type: a named node in the host's type
// hierarchy carrying functions and variables.
type Class struct {
	Name      string
	Path      string
	Module    string
	Parent    *Class
	Functions []*Function
	Variables []*Variable
}

// IsChildOf reports whether c equals other or descends from it.
func (c *Class) IsChildOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur == other {
			return true
		}
	}
	return false
}

// FindFunction returns the named function, searching the ancestor
// chain. Returns nil when no class in the chain defines it.
func (c *Class) FindFunction(name string) *Function {
	for cur := c; cur != nil; cur = cur.Parent {
		for _, fn := range cur.Functions {
			if fn.Name == name {
				return fn
			}
		}
	}
	return nil
}

// FindVariable returns the named variable, searching the ancestor
// chain.
func (c *Class) FindVariable(name string) *Variable {
	for cur := c; cur != nil; cur = cur.Parent {
		for _, v := range cur.Variables {
			if v.Name == name {
				return v
			}
		}
	}
	return nil
}

// Object is a host-owned object instance addressable by path. Object
// reference properties resolve to these.
type Object struct {
	Name  string
	Path  string
	Class *Class
}

// Vector is the well-known 3-component spatial vector aggregate.
type Vector struct {
	X, Y, Z float64
}

// Rotator is the well-known 3-component orientation aggregate.
type Rotator struct {
	Pitch, Yaw, Roll float64
}

// LinearColor is the well-known 4-component floating-point color.
type LinearColor struct {
	R, G, B, A float64
}

// Color is the well-known 4-component byte color.
type Color struct {
	R, G, B, A uint8
}

// Transform composes location, orientation, and scale.
type Transform struct {
	Location Vector
	Rotation Rotator
	Scale    Vector
}
