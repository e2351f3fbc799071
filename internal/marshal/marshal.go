// Package marshal implements the bidirectional codec between dynamic
// tagged values (cty.Value trees: null, bool, number, string, object,
// array) and the host's strongly typed property slots. It has no
// knowledge of graphs or nodes; pin-default application and the RPC
// layer both drive it.
package marshal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"

	"github.com/nodeforge-editor/nodeforge/internal/host"
)

// ErrTypeMismatch reports a dynamic value incompatible with the
// declared property type.
var ErrTypeMismatch = errors.New("type mismatch")

// ErrUnsupported reports a property kind the codec cannot populate.
var ErrUnsupported = errors.New("unsupported property kind")

// Marshaller converts between dynamic values and native property
// slots. Registry backs object reference and enum resolution.
type Marshaller struct {
	registry *host.Registry
	log      *zap.Logger
}

// New creates a marshaller over the given registry.
func New(registry *host.Registry, log *zap.Logger) *Marshaller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Marshaller{registry: registry, log: log}
}

// ToDynamic serializes a native slot value into a dynamic value. It is
// total: property kinds with no dedicated encoding fall back to the
// generic text-export representation (a string), never an error.
func (m *Marshaller) ToDynamic(t host.PropType, v any) cty.Value {
	switch t.Kind {
	case host.KindBool:
		b, _ := v.(bool)
		return cty.BoolVal(b)
	case host.KindInt:
		f, ok := toFloat(v)
		if !ok {
			return cty.Zero
		}
		return cty.NumberIntVal(int64(f))
	case host.KindFloat:
		f, _ := toFloat(v)
		return cty.NumberFloatVal(f)
	case host.KindString, host.KindName, host.KindText:
		s, _ := v.(string)
		return cty.StringVal(s)
	case host.KindEnum:
		return m.enumToDynamic(t, v)
	case host.KindObject, host.KindSoftObject, host.KindWeakObject:
		if obj, ok := v.(*host.Object); ok && obj != nil {
			return cty.StringVal(obj.Path)
		}
		return cty.StringVal("")
	case host.KindStruct:
		return m.structToDynamic(t, v)
	case host.KindArray:
		return m.arrayToDynamic(t, v)
	default:
		return cty.StringVal(textExport(v))
	}
}

// FromDynamic deserializes a dynamic value into a native slot.
// Failures leave the slot untouched.
func (m *Marshaller) FromDynamic(t host.PropType, slot *any, dv cty.Value) error {
	if dv.IsNull() {
		switch {
		case t.IsObjectRef():
			*slot = (*host.Object)(nil)
			return nil
		case t.Kind == host.KindArray:
			*slot = []any{}
			return nil
		}
		return fmt.Errorf("%w: null is not a valid %s value", ErrTypeMismatch, t.Kind)
	}

	switch t.Kind {
	case host.KindBool:
		if dv.Type() != cty.Bool {
			return mismatch(t, dv)
		}
		*slot = dv.True()
		return nil
	case host.KindInt:
		f, err := dynamicNumber(dv)
		if err != nil {
			return mismatch(t, dv)
		}
		*slot = int(f)
		return nil
	case host.KindFloat:
		f, err := dynamicNumber(dv)
		if err != nil {
			return mismatch(t, dv)
		}
		*slot = f
		return nil
	case host.KindString, host.KindName, host.KindText:
		if dv.Type() != cty.String {
			return mismatch(t, dv)
		}
		*slot = dv.AsString()
		return nil
	case host.KindEnum:
		return m.enumFromDynamic(t, slot, dv)
	case host.KindObject, host.KindSoftObject, host.KindWeakObject:
		return m.objectFromDynamic(t, slot, dv)
	case host.KindStruct:
		return m.structFromDynamic(t, slot, dv)
	case host.KindArray:
		return m.arrayFromDynamic(t, slot, dv)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, t.Kind)
	}
}

// enumToDynamic prefers the symbolic name; values outside the name
// table serialize as their raw number.
func (m *Marshaller) enumToDynamic(t host.PropType, v any) cty.Value {
	f, ok := toFloat(v)
	if !ok {
		if s, isStr := v.(string); isStr {
			return cty.StringVal(s)
		}
		return cty.NumberIntVal(0)
	}
	if t.Enum != nil {
		if name, found := t.Enum.NameOf(int(f)); found {
			return cty.StringVal(name)
		}
	}
	return cty.NumberIntVal(int64(f))
}

func (m *Marshaller) enumFromDynamic(t host.PropType, slot *any, dv cty.Value) error {
	if dv.Type() == cty.String {
		name := dv.AsString()
		if t.Enum != nil {
			if value, ok := t.Enum.ValueOf(name); ok {
				*slot = value
				return nil
			}
		}
		// Fall back to a numeric value carried as text.
		if value, err := strconv.Atoi(strings.TrimSpace(name)); err == nil {
			*slot = value
			return nil
		}
		return fmt.Errorf("%w: %q is not a member of enum %s", ErrTypeMismatch, name, t.TypeName)
	}
	f, err := dynamicNumber(dv)
	if err != nil {
		return mismatch(t, dv)
	}
	*slot = int(f)
	return nil
}

// objectFromDynamic resolves a path string to an object reference:
// direct lookup, then the registry's load-by-path fallback (inside
// FindObject), then a retry with the bare path rewritten into its
// object-qualified form. The resolved object's class must be
// assignable to the declared type.
func (m *Marshaller) objectFromDynamic(t host.PropType, slot *any, dv cty.Value) error {
	if dv.Type() != cty.String {
		return mismatch(t, dv)
	}
	path := strings.TrimSpace(dv.AsString())
	if path == "" || path == "None" || path == "null" {
		*slot = (*host.Object)(nil)
		return nil
	}

	obj, err := m.registry.FindObject(path)
	if err != nil {
		if qualified := qualifyBarePath(path); qualified != path {
			obj, err = m.registry.FindObject(qualified)
		}
	}
	if err != nil {
		return fmt.Errorf("unresolved object reference %q: %w", path, err)
	}

	if t.Class != nil && (obj.Class == nil || !obj.Class.IsChildOf(t.Class)) {
		return fmt.Errorf("%w: object %q has type %s, field expects %s",
			ErrTypeMismatch, path, objClassName(obj), t.Class.Name)
	}
	*slot = obj
	return nil
}

func (m *Marshaller) arrayToDynamic(t host.PropType, v any) cty.Value {
	items, _ := v.([]any)
	if len(items) == 0 {
		return cty.EmptyTupleVal
	}
	elem := host.PropType{Kind: host.KindUnknown}
	if t.Elem != nil {
		elem = *t.Elem
	}
	vals := make([]cty.Value, len(items))
	for i, item := range items {
		vals[i] = m.ToDynamic(elem, item)
	}
	return cty.TupleVal(vals)
}

// arrayFromDynamic clears the destination and repopulates it
// positionally. An element failure aborts the whole collection and is
// reported with the failing index.
func (m *Marshaller) arrayFromDynamic(t host.PropType, slot *any, dv cty.Value) error {
	if !dv.Type().IsTupleType() && !dv.Type().IsListType() && !dv.Type().IsSetType() {
		return mismatch(t, dv)
	}
	if t.Elem == nil {
		return fmt.Errorf("%w: array with no element type", ErrUnsupported)
	}

	items := make([]any, 0, dv.LengthInt())
	index := 0
	for it := dv.ElementIterator(); it.Next(); index++ {
		_, ev := it.Element()
		var item any
		if err := m.FromDynamic(*t.Elem, &item, ev); err != nil {
			return fmt.Errorf("element %d: %w", index, err)
		}
		items = append(items, item)
	}
	*slot = items
	return nil
}

func textExport(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func mismatch(t host.PropType, dv cty.Value) error {
	return fmt.Errorf("%w: cannot assign %s to %s field",
		ErrTypeMismatch, dv.Type().FriendlyName(), t.Kind)
}

func dynamicNumber(dv cty.Value) (float64, error) {
	if dv.Type() != cty.Number {
		return 0, fmt.Errorf("not a number: %s", dv.Type().FriendlyName())
	}
	f, _ := dv.AsBigFloat().Float64()
	return f, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// qualifyBarePath rewrites a package path with no object qualifier
// ("/Game/Heroes/Knight") into the object-qualified form
// ("/Game/Heroes/Knight.Knight") used by direct lookup.
func qualifyBarePath(path string) string {
	if strings.Contains(path, ".") {
		return path
	}
	if i := strings.LastIndexByte(path, '/'); i >= 0 && i+1 < len(path) {
		return path + "." + path[i+1:]
	}
	return path
}

func objClassName(obj *host.Object) string {
	if obj.Class == nil {
		return "<unclassed>"
	}
	return obj.Class.Name
}
