package host

// This file provides the built-in core library: the classes, enums,
// and struct shapes every editing session starts with. Embedding
// applications register their own content on top of it.

// CoreRegistry builds a registry pre-populated with the core library.
func CoreRegistry() *Registry {
	r := NewRegistry()

	severity := &Enum{
		Name:  "PrintSeverity",
		Path:  "/Core/PrintSeverity",
		Names: []string{"Display", "Warning", "Error"},
	}
	r.RegisterEnum(severity)

	r.RegisterStruct(&StructShape{
		Name: "Vector",
		Path: "/Core/Vector",
	})
	r.RegisterStruct(&StructShape{
		Name: "Transform",
		Path: "/Core/Transform",
	})

	object := &Class{
		Name:   "Object",
		Path:   "/Core/Object",
		Module: "Core",
	}
	r.RegisterClass(object)

	actor := &Class{
		Name:   "Actor",
		Path:   "/Core/Actor",
		Module: "Core",
		Parent: object,
		Functions: []*Function{
			{
				Name:     "SetActorLocation",
				Category: "Transformation",
				Tooltip:  "Move the actor to a new world location.",
				Keywords: []string{"move", "teleport", "position"},
				Params: []Param{
					{Name: "NewLocation", Type: PropType{Kind: KindStruct, TypeName: "Vector", TypePath: "/Core/Vector"}},
					{Name: "ReturnValue", Type: PropType{Kind: KindBool}, Direction: Output},
				},
			},
			{
				Name:     "GetActorLocation",
				Category: "Transformation",
				Tooltip:  "Current world location of the actor.",
				Const:    true,
				Pure:     true,
				Params: []Param{
					{Name: "ReturnValue", Type: PropType{Kind: KindStruct, TypeName: "Vector", TypePath: "/Core/Vector"}, Direction: Output},
				},
			},
			{
				Name:     "BeginPlay",
				Category: "Lifecycle",
				Tooltip:  "Fires once when the actor enters play.",
				IsEvent:  true,
			},
		},
		Variables: []*Variable{
			{
				Name:     "bHidden",
				Type:     PropType{Kind: KindBool},
				Category: "Rendering",
				Tooltip:  "Whether the actor is hidden in game.",
			},
		},
	}
	r.RegisterClass(actor)

	system := &Class{
		Name:   "SystemLibrary",
		Path:   "/Core/SystemLibrary",
		Module: "Core",
		Parent: object,
		Functions: []*Function{
			{
				Name:        "PrintString",
				Category:    "Development",
				Description: "Prints a string to the screen and the log.",
				Tooltip:     "Prints a string to the screen and the log.",
				Keywords:    []string{"log", "print", "debug", "screen"},
				Static:      true,
				Params: []Param{
					{Name: "InString", Type: PropType{Kind: KindString}, Default: "Hello", Tooltip: "The string to print."},
					{
						Name: "Severity",
						Type: PropType{Kind: KindEnum, TypeName: "PrintSeverity", TypePath: "/Core/PrintSeverity", Enum: severity},
						Default:  0,
						Advanced: true,
					},
					{Name: "Duration", Type: PropType{Kind: KindFloat}, Default: 2.0, Advanced: true},
				},
			},
			{
				Name:     "Delay",
				Category: "Utilities|FlowControl",
				Tooltip:  "Performs a latent delay before continuing.",
				Keywords: []string{"wait", "sleep", "latent"},
				Static:   true,
				Params: []Param{
					{Name: "Duration", Type: PropType{Kind: KindFloat}, Default: 0.2},
				},
			},
		},
	}
	r.RegisterClass(system)

	math := &Class{
		Name:   "MathLibrary",
		Path:   "/Core/MathLibrary",
		Module: "Core",
		Parent: object,
		Functions: []*Function{
			{
				Name:     "Lerp",
				Category: "Math|Float",
				Tooltip:  "Linearly interpolates between A and B by Alpha.",
				Keywords: []string{"interpolate", "blend", "mix"},
				Static:   true,
				Pure:     true,
				Params: []Param{
					{Name: "A", Type: PropType{Kind: KindFloat}},
					{Name: "B", Type: PropType{Kind: KindFloat}, Default: 1.0},
					{Name: "Alpha", Type: PropType{Kind: KindFloat}},
					{Name: "ReturnValue", Type: PropType{Kind: KindFloat}, Direction: Output},
				},
			},
			{
				Name:     "RandomInteger",
				Category: "Math|Random",
				Tooltip:  "Random integer in [0, Max).",
				Static:   true,
				Pure:     true,
				Params: []Param{
					{Name: "Max", Type: PropType{Kind: KindInt}, Default: 100},
					{Name: "ReturnValue", Type: PropType{Kind: KindInt}, Direction: Output},
				},
			},
		},
	}
	r.RegisterClass(math)

	return r
}
