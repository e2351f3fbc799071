package marshal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"

	"github.com/nodeforge-editor/nodeforge/internal/host"
)

func newTestMarshaller(t *testing.T) (*Marshaller, *host.Registry) {
	t.Helper()
	r := host.NewRegistry()
	base := &host.Class{Name: "Object", Path: "/Core/Object"}
	r.RegisterClass(base)
	r.RegisterClass(&host.Class{Name: "Actor", Path: "/Core/Actor", Parent: base})
	r.RegisterClass(&host.Class{Name: "Widget", Path: "/Core/Widget", Parent: base})
	return New(r, zap.NewNop()), r
}

func roundTrip(t *testing.T, m *Marshaller, typ host.PropType, v any) any {
	t.Helper()
	var slot any
	require.NoError(t, m.FromDynamic(typ, &slot, m.ToDynamic(typ, v)))
	return slot
}

func TestScalarRoundTrips(t *testing.T) {
	m, _ := newTestMarshaller(t)

	assert.Equal(t, true, roundTrip(t, m, host.PropType{Kind: host.KindBool}, true))
	assert.Equal(t, 42, roundTrip(t, m, host.PropType{Kind: host.KindInt}, 42))
	assert.Equal(t, 2.5, roundTrip(t, m, host.PropType{Kind: host.KindFloat}, 2.5))
	assert.Equal(t, "hello", roundTrip(t, m, host.PropType{Kind: host.KindString}, "hello"))
	assert.Equal(t, "RowName", roundTrip(t, m, host.PropType{Kind: host.KindName}, "RowName"))
	assert.Equal(t, "Localized", roundTrip(t, m, host.PropType{Kind: host.KindText}, "Localized"))
}

func TestScalarTypeMismatch(t *testing.T) {
	m, _ := newTestMarshaller(t)

	var slot any
	err := m.FromDynamic(host.PropType{Kind: host.KindBool}, &slot, cty.StringVal("yes"))
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.Nil(t, slot, "failed deserialization must leave the slot untouched")
}

func TestEnum(t *testing.T) {
	m, _ := newTestMarshaller(t)
	mode := &host.Enum{Name: "Mode", Names: []string{"Off", "On", "Auto"}}
	typ := host.PropType{Kind: host.KindEnum, TypeName: "Mode", Enum: mode}

	// Serialization prefers the symbolic name.
	assert.Equal(t, cty.StringVal("Auto"), m.ToDynamic(typ, 2))
	// Values outside the name table serialize numerically.
	assert.Equal(t, cty.NumberIntVal(9), m.ToDynamic(typ, 9))

	var slot any
	require.NoError(t, m.FromDynamic(typ, &slot, cty.StringVal("On")))
	assert.Equal(t, 1, slot)

	require.NoError(t, m.FromDynamic(typ, &slot, cty.NumberIntVal(2)))
	assert.Equal(t, 2, slot)

	// Numeric text is accepted when the name does not resolve.
	require.NoError(t, m.FromDynamic(typ, &slot, cty.StringVal("2")))
	assert.Equal(t, 2, slot)

	err := m.FromDynamic(typ, &slot, cty.StringVal("Blink"))
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), "Blink")
}

func TestObjectReference(t *testing.T) {
	m, r := newTestMarshaller(t)
	actor := r.ClassByName("Actor")
	hero := &host.Object{Name: "Hero", Path: "/Game/Hero.Hero", Class: actor}
	r.RegisterObject(hero)
	typ := host.PropType{Kind: host.KindObject, TypeName: "Actor", Class: actor}

	assert.Equal(t, cty.StringVal("/Game/Hero.Hero"), m.ToDynamic(typ, hero))
	assert.Equal(t, cty.StringVal(""), m.ToDynamic(typ, nil))

	var slot any
	require.NoError(t, m.FromDynamic(typ, &slot, cty.StringVal("/Game/Hero.Hero")))
	assert.Same(t, hero, slot)

	for _, absent := range []string{"", "None", "null"} {
		slot = hero
		require.NoError(t, m.FromDynamic(typ, &slot, cty.StringVal(absent)))
		assert.Equal(t, (*host.Object)(nil), slot, "absence marker %q", absent)
	}
}

func TestObjectReference_BarePathRetry(t *testing.T) {
	m, r := newTestMarshaller(t)
	actor := r.ClassByName("Actor")
	r.RegisterObject(&host.Object{Name: "Hero", Path: "/Game/Hero.Hero", Class: actor})
	typ := host.PropType{Kind: host.KindObject, Class: actor}

	// The bare package path resolves through the qualified rewrite.
	var slot any
	require.NoError(t, m.FromDynamic(typ, &slot, cty.StringVal("/Game/Hero")))
	obj := slot.(*host.Object)
	assert.Equal(t, "/Game/Hero.Hero", obj.Path)
}

func TestObjectReference_AssignabilityCheck(t *testing.T) {
	m, r := newTestMarshaller(t)
	widget := r.ClassByName("Widget")
	actor := r.ClassByName("Actor")
	r.RegisterObject(&host.Object{Name: "HUD", Path: "/Game/HUD.HUD", Class: widget})

	var slot any
	err := m.FromDynamic(host.PropType{Kind: host.KindObject, Class: actor}, &slot, cty.StringVal("/Game/HUD.HUD"))
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), "Widget")
}

func TestObjectReference_UnresolvedPath(t *testing.T) {
	m, _ := newTestMarshaller(t)

	var slot any
	err := m.FromDynamic(host.PropType{Kind: host.KindObject}, &slot, cty.StringVal("/Game/Missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/Game/Missing")
}

func TestVectorFromThreeNumbers(t *testing.T) {
	m, _ := newTestMarshaller(t)
	typ := host.PropType{Kind: host.KindStruct, TypeName: "Vector"}

	var slot any
	dv := cty.TupleVal([]cty.Value{
		cty.NumberFloatVal(1), cty.NumberFloatVal(2), cty.NumberFloatVal(3),
	})
	require.NoError(t, m.FromDynamic(typ, &slot, dv))
	assert.Equal(t, host.Vector{X: 1, Y: 2, Z: 3}, slot)

	// Wrong arity is a type mismatch, not a partial write.
	err := m.FromDynamic(typ, &slot, cty.TupleVal([]cty.Value{cty.NumberFloatVal(1)}))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestAggregateRoundTrips(t *testing.T) {
	m, _ := newTestMarshaller(t)

	vec := host.Vector{X: 1.5, Y: -2, Z: 0}
	assert.Equal(t, vec, roundTrip(t, m, host.PropType{Kind: host.KindStruct, TypeName: "Vector"}, vec))

	rot := host.Rotator{Pitch: 10, Yaw: 20, Roll: 30}
	assert.Equal(t, rot, roundTrip(t, m, host.PropType{Kind: host.KindStruct, TypeName: "Rotator"}, rot))

	lc := host.LinearColor{R: 0.25, G: 0.5, B: 0.75, A: 1}
	assert.Equal(t, lc, roundTrip(t, m, host.PropType{Kind: host.KindStruct, TypeName: "LinearColor"}, lc))

	c := host.Color{R: 255, G: 128, B: 0, A: 64}
	assert.Equal(t, c, roundTrip(t, m, host.PropType{Kind: host.KindStruct, TypeName: "Color"}, c))

	tr := host.Transform{
		Location: host.Vector{X: 1, Y: 2, Z: 3},
		Rotation: host.Rotator{Yaw: 90},
		Scale:    host.Vector{X: 1, Y: 1, Z: 1},
	}
	assert.Equal(t, tr, roundTrip(t, m, host.PropType{Kind: host.KindStruct, TypeName: "Transform"}, tr))
}

func TestGenericStructRecursion(t *testing.T) {
	m, _ := newTestMarshaller(t)
	typ := host.PropType{
		Kind:     host.KindStruct,
		TypeName: "DamageEvent",
		Struct: &host.StructShape{
			Name: "DamageEvent",
			Fields: []host.StructField{
				{Name: "Amount", Type: host.PropType{Kind: host.KindFloat}},
				{Name: "Lethal", Type: host.PropType{Kind: host.KindBool}},
				{Name: "Origin", Type: host.PropType{Kind: host.KindStruct, TypeName: "Vector"}},
			},
		},
	}

	value := map[string]any{
		"Amount": 12.5,
		"Lethal": true,
		"Origin": host.Vector{X: 4, Y: 5, Z: 6},
	}
	got := roundTrip(t, m, typ, value).(map[string]any)
	assert.Equal(t, 12.5, got["Amount"])
	assert.Equal(t, true, got["Lethal"])
	assert.Equal(t, host.Vector{X: 4, Y: 5, Z: 6}, got["Origin"])
}

func TestGenericStruct_FieldErrorNamesField(t *testing.T) {
	m, _ := newTestMarshaller(t)
	typ := host.PropType{
		Kind:     host.KindStruct,
		TypeName: "Sample",
		Struct: &host.StructShape{
			Name:   "Sample",
			Fields: []host.StructField{{Name: "Count", Type: host.PropType{Kind: host.KindInt}}},
		},
	}

	var slot any
	err := m.FromDynamic(typ, &slot, cty.ObjectVal(map[string]cty.Value{
		"Count": cty.StringVal("three"),
	}))
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), "Count")
}

func TestCollectionRoundTripPreservesOrderAndLength(t *testing.T) {
	m, _ := newTestMarshaller(t)
	typ := host.PropType{
		Kind: host.KindArray,
		Elem: &host.PropType{Kind: host.KindString},
	}

	items := []any{"alpha", "beta", "gamma", "delta"}
	got := roundTrip(t, m, typ, items).([]any)
	require.Len(t, got, 4)
	assert.Equal(t, items, got)
}

func TestCollectionElementFailureReportsIndex(t *testing.T) {
	m, _ := newTestMarshaller(t)
	typ := host.PropType{
		Kind: host.KindArray,
		Elem: &host.PropType{Kind: host.KindInt},
	}

	var slot any
	dv := cty.TupleVal([]cty.Value{
		cty.NumberIntVal(1), cty.NumberIntVal(2), cty.StringVal("x"),
	})
	err := m.FromDynamic(typ, &slot, dv)
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), "element 2")
	assert.Nil(t, slot, "a failing element aborts the whole collection")
}

func TestNullHandling(t *testing.T) {
	m, _ := newTestMarshaller(t)

	var slot any = &host.Object{}
	require.NoError(t, m.FromDynamic(host.PropType{Kind: host.KindObject}, &slot, cty.NullVal(cty.String)))
	assert.Equal(t, (*host.Object)(nil), slot)

	err := m.FromDynamic(host.PropType{Kind: host.KindInt}, &slot, cty.NullVal(cty.Number))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestUnsupportedKinds(t *testing.T) {
	m, _ := newTestMarshaller(t)
	exec := host.PropType{Kind: host.KindExec}

	// Serialization falls back to the text-export representation.
	assert.Equal(t, cty.StringVal("7"), m.ToDynamic(exec, 7))

	// Deserialization fails explicitly rather than truncating.
	var slot any
	err := m.FromDynamic(exec, &slot, cty.StringVal("anything"))
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestDynamicJSONBridge(t *testing.T) {
	dv, err := DynamicFromJSON([]byte(`{"a": [1, 2], "b": "text"}`))
	require.NoError(t, err)
	require.True(t, dv.Type().IsObjectType())

	data, err := DynamicToJSON(dv)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": [1, 2], "b": "text"}`, string(data))

	_, err = DynamicFromJSON([]byte(`{broken`))
	require.Error(t, err)
}
