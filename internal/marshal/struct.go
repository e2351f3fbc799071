package marshal

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/nodeforge-editor/nodeforge/internal/host"
)

// Well-known aggregate type names with dedicated compact encodings.
const (
	structVector      = "Vector"
	structRotator     = "Rotator"
	structLinearColor = "LinearColor"
	structColor       = "Color"
	structTransform   = "Transform"
)

func (m *Marshaller) structToDynamic(t host.PropType, v any) cty.Value {
	switch t.TypeName {
	case structVector:
		vec, _ := v.(host.Vector)
		return numberTuple(vec.X, vec.Y, vec.Z)
	case structRotator:
		rot, _ := v.(host.Rotator)
		return numberTuple(rot.Pitch, rot.Yaw, rot.Roll)
	case structLinearColor:
		c, _ := v.(host.LinearColor)
		return numberTuple(c.R, c.G, c.B, c.A)
	case structColor:
		c, _ := v.(host.Color)
		return numberTuple(float64(c.R), float64(c.G), float64(c.B), float64(c.A))
	case structTransform:
		tr, _ := v.(host.Transform)
		return cty.ObjectVal(map[string]cty.Value{
			"location": numberTuple(tr.Location.X, tr.Location.Y, tr.Location.Z),
			"rotation": numberTuple(tr.Rotation.Pitch, tr.Rotation.Yaw, tr.Rotation.Roll),
			"scale":    numberTuple(tr.Scale.X, tr.Scale.Y, tr.Scale.Z),
		})
	}

	if t.Struct == nil {
		return cty.StringVal(textExport(v))
	}

	// Generic struct: field-by-field recursion over the shape.
	fields, _ := v.(map[string]any)
	attrs := make(map[string]cty.Value, len(t.Struct.Fields))
	for _, field := range t.Struct.Fields {
		attrs[field.Name] = m.ToDynamic(field.Type, fields[field.Name])
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

func (m *Marshaller) structFromDynamic(t host.PropType, slot *any, dv cty.Value) error {
	switch t.TypeName {
	case structVector:
		nums, err := numberSlice(dv, 3)
		if err != nil {
			return fmt.Errorf("%s: %w", t.TypeName, err)
		}
		*slot = host.Vector{X: nums[0], Y: nums[1], Z: nums[2]}
		return nil
	case structRotator:
		nums, err := numberSlice(dv, 3)
		if err != nil {
			return fmt.Errorf("%s: %w", t.TypeName, err)
		}
		*slot = host.Rotator{Pitch: nums[0], Yaw: nums[1], Roll: nums[2]}
		return nil
	case structLinearColor:
		nums, err := numberSlice(dv, 4)
		if err != nil {
			return fmt.Errorf("%s: %w", t.TypeName, err)
		}
		*slot = host.LinearColor{R: nums[0], G: nums[1], B: nums[2], A: nums[3]}
		return nil
	case structColor:
		nums, err := numberSlice(dv, 4)
		if err != nil {
			return fmt.Errorf("%s: %w", t.TypeName, err)
		}
		*slot = host.Color{R: uint8(nums[0]), G: uint8(nums[1]), B: uint8(nums[2]), A: uint8(nums[3])}
		return nil
	case structTransform:
		return m.transformFromDynamic(slot, dv)
	}

	if t.Struct == nil {
		return fmt.Errorf("%w: struct %s has no registered shape", ErrUnsupported, t.TypeName)
	}
	if !dv.Type().IsObjectType() && !dv.Type().IsMapType() {
		return mismatch(t, dv)
	}

	fields, _ := (*slot).(map[string]any)
	if fields == nil {
		fields = make(map[string]any, len(t.Struct.Fields))
	}
	for _, field := range t.Struct.Fields {
		fv, ok := attrValue(dv, field.Name)
		if !ok {
			continue
		}
		tmp := fields[field.Name]
		if err := m.FromDynamic(field.Type, &tmp, fv); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		fields[field.Name] = tmp
	}
	*slot = fields
	return nil
}

func (m *Marshaller) transformFromDynamic(slot *any, dv cty.Value) error {
	if !dv.Type().IsObjectType() && !dv.Type().IsMapType() {
		return fmt.Errorf("%w: Transform expects an object value", ErrTypeMismatch)
	}
	tr, _ := (*slot).(host.Transform)
	if lv, ok := attrValue(dv, "location"); ok {
		nums, err := numberSlice(lv, 3)
		if err != nil {
			return fmt.Errorf("location: %w", err)
		}
		tr.Location = host.Vector{X: nums[0], Y: nums[1], Z: nums[2]}
	}
	if rv, ok := attrValue(dv, "rotation"); ok {
		nums, err := numberSlice(rv, 3)
		if err != nil {
			return fmt.Errorf("rotation: %w", err)
		}
		tr.Rotation = host.Rotator{Pitch: nums[0], Yaw: nums[1], Roll: nums[2]}
	}
	if sv, ok := attrValue(dv, "scale"); ok {
		nums, err := numberSlice(sv, 3)
		if err != nil {
			return fmt.Errorf("scale: %w", err)
		}
		tr.Scale = host.Vector{X: nums[0], Y: nums[1], Z: nums[2]}
	}
	*slot = tr
	return nil
}

func numberTuple(nums ...float64) cty.Value {
	vals := make([]cty.Value, len(nums))
	for i, n := range nums {
		vals[i] = cty.NumberFloatVal(n)
	}
	return cty.TupleVal(vals)
}

// numberSlice reads a flat array of exactly want numbers.
func numberSlice(dv cty.Value, want int) ([]float64, error) {
	if !dv.Type().IsTupleType() && !dv.Type().IsListType() {
		return nil, fmt.Errorf("%w: expected an array of %d numbers, got %s",
			ErrTypeMismatch, want, dv.Type().FriendlyName())
	}
	if dv.LengthInt() != want {
		return nil, fmt.Errorf("%w: expected %d numbers, got %d",
			ErrTypeMismatch, want, dv.LengthInt())
	}
	nums := make([]float64, 0, want)
	for it := dv.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		f, err := dynamicNumber(ev)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrTypeMismatch, err)
		}
		nums = append(nums, f)
	}
	return nums, nil
}

// attrValue reads a named member from an object or map value.
func attrValue(dv cty.Value, name string) (cty.Value, bool) {
	ty := dv.Type()
	switch {
	case ty.IsObjectType():
		if ty.HasAttribute(name) {
			return dv.GetAttr(name), true
		}
	case ty.IsMapType():
		key := cty.StringVal(name)
		if dv.HasIndex(key).True() {
			return dv.Index(key), true
		}
	}
	return cty.NilVal, false
}
