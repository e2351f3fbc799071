package host

import (
	"fmt"
	"testing"
)

func testRegistry() *Registry {
	r := NewRegistry()
	base := &Class{Name: "Object", Path: "/Core/Object", Module: "Core"}
	r.RegisterClass(base)
	r.RegisterClass(&Class{
		Name:   "Actor",
		Path:   "/Core/Actor",
		Module: "Core",
		Parent: base,
		Functions: []*Function{
			{Name: "GetName", Params: []Param{
				{Name: "ReturnValue", Type: PropType{Kind: KindString}, Direction: Output},
			}},
		},
		Variables: []*Variable{
			{Name: "Health", Type: PropType{Kind: KindFloat}},
		},
	})
	return r
}

func TestRegisterClass_OwnershipWiring(t *testing.T) {
	r := testRegistry()

	actor := r.ClassByName("Actor")
	if actor == nil {
		t.Fatal("ClassByName returned nil for registered class")
	}
	if actor.Functions[0].Owner != actor {
		t.Error("function owner not wired to its class")
	}
	if actor.Functions[0].Module != "Core" {
		t.Errorf("function module: got %s, want Core", actor.Functions[0].Module)
	}
	if actor.Variables[0].Owner != actor {
		t.Error("variable owner not wired to its class")
	}
}

func TestResolveType(t *testing.T) {
	r := testRegistry()

	tests := []struct {
		name       string
		descriptor string
		wantClass  string
		wantErr    bool
	}{
		{"bare name", "Actor", "Actor", false},
		{"qualified path", "/Core/Actor", "Actor", false},
		{"quoted reference", "Class'/Core/Actor'", "Actor", false},
		{"whitespace", "  Actor  ", "Actor", false},
		{"unknown name", "Widget", "", true},
		{"unknown path", "/Core/Widget", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := r.ResolveType(tt.descriptor)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got class %v", tt.descriptor, c)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveType(%q) failed: %v", tt.descriptor, err)
			}
			if c.Name != tt.wantClass {
				t.Errorf("got class %s, want %s", c.Name, tt.wantClass)
			}
		})
	}
}

func TestResolveType_PathTrailingSegment(t *testing.T) {
	r := testRegistry()

	// A path not registered verbatim still resolves through its
	// trailing segment.
	c, err := r.ResolveType("/Game/Actors.Actor")
	if err != nil {
		t.Fatalf("trailing segment resolution failed: %v", err)
	}
	if c.Name != "Actor" {
		t.Errorf("got class %s, want Actor", c.Name)
	}
}

func TestFindObject_LoaderFallback(t *testing.T) {
	r := testRegistry()
	actor := r.ClassByName("Actor")

	if _, err := r.FindObject("/Game/Hero.Hero"); err == nil {
		t.Fatal("expected miss for unloaded object")
	}

	loads := 0
	r.SetLoader(func(path string) (*Object, error) {
		loads++
		if path != "/Game/Hero.Hero" {
			return nil, fmt.Errorf("unknown path %s", path)
		}
		return &Object{Name: "Hero", Path: path, Class: actor}, nil
	})

	obj, err := r.FindObject("/Game/Hero.Hero")
	if err != nil {
		t.Fatalf("loader fallback failed: %v", err)
	}
	if obj.Class != actor {
		t.Error("loaded object has wrong class")
	}

	// Loaded objects are cached; the loader is not consulted again.
	if _, err := r.FindObject("/Game/Hero.Hero"); err != nil {
		t.Fatalf("cached lookup failed: %v", err)
	}
	if loads != 1 {
		t.Errorf("loader invoked %d times, want 1", loads)
	}
}

func TestHandleGenerations(t *testing.T) {
	r := testRegistry()
	doc := NewGraphDocument("Doc", r.ClassByName("Actor"))
	ctx := NewContext(r, doc, doc.MainGraph())

	handles := ctx.Handles()
	if len(handles) == 0 {
		t.Fatal("context enumerated no handles")
	}

	h := handles[0]
	ref := h.Ref()
	if got := r.ResolveHandle(ref); got != h {
		t.Fatal("live handle did not resolve to itself")
	}
	if !h.Alive() {
		t.Error("live handle reported not alive")
	}

	r.RefreshCatalog()

	if got := r.ResolveHandle(ref); got != nil {
		t.Error("stale handle resolved after catalog refresh")
	}
	if h.Alive() {
		t.Error("stale handle reported alive")
	}

	// A fresh enumeration mints resolvable handles again.
	fresh := ctx.Handles()
	if got := r.ResolveHandle(fresh[0].Ref()); got != fresh[0] {
		t.Error("freshly minted handle did not resolve")
	}
}

func TestHandles_ReusedWithinGeneration(t *testing.T) {
	r := testRegistry()
	doc := NewGraphDocument("Doc", r.ClassByName("Actor"))
	ctx := NewContext(r, doc, doc.MainGraph())

	first := ctx.Handles()
	minted := len(r.handles)

	second := ctx.Handles()
	if len(second) != len(first) || second[0] != first[0] {
		t.Error("repeated enumeration re-minted the handle set")
	}
	if len(r.handles) != minted {
		t.Errorf("live handle count grew from %d to %d across enumerations",
			minted, len(r.handles))
	}

	// Registering a class drops the memoized set.
	r.RegisterClass(&Class{Name: "Widget", Path: "/Core/Widget"})
	third := ctx.Handles()
	if len(third) == len(first) {
		t.Error("enumeration did not pick up the newly registered class")
	}
}

func TestEnumNameTable(t *testing.T) {
	e := &Enum{Name: "Mode", Names: []string{"Off", "On", "Auto"}}

	if v, ok := e.ValueOf("Auto"); !ok || v != 2 {
		t.Errorf("ValueOf(Auto): got %d,%t", v, ok)
	}
	if _, ok := e.ValueOf("Blink"); ok {
		t.Error("ValueOf accepted unknown name")
	}
	if n, ok := e.NameOf(1); !ok || n != "On" {
		t.Errorf("NameOf(1): got %q,%t", n, ok)
	}
	if _, ok := e.NameOf(7); ok {
		t.Error("NameOf accepted out-of-range value")
	}
}

func TestIsChildOf(t *testing.T) {
	r := testRegistry()
	object := r.ClassByName("Object")
	actor := r.ClassByName("Actor")

	if !actor.IsChildOf(object) {
		t.Error("Actor should descend from Object")
	}
	if !actor.IsChildOf(actor) {
		t.Error("a class is its own child per scope rules")
	}
	if object.IsChildOf(actor) {
		t.Error("Object should not descend from Actor")
	}
}
