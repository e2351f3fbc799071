package catalog

import "github.com/nodeforge-editor/nodeforge/internal/host"

// Synthetics returns the statically-known synthetic operations:
// graph-routing helpers with no backing reflective handle. Their keys
// are fixed literals, so they are creatable without any discovery
// state.
func Synthetics() []OperationDescriptor {
	return []OperationDescriptor{
		{
			StableKey:   KeyReroute,
			DisplayName: "Add Reroute Node",
			Category:    "Utilities",
			Description: "Pass-through node for tidying wire routing; carries its connected value unchanged.",
			Keywords:    []string{"reroute", "knot", "wire"},
			Kind:        KindSynthetic,
			NodeClass:   host.NodeReroute,
			Pins: []PinDescriptor{
				{Name: "InputPin", DeclaredType: "Wildcard", Direction: "input"},
				{Name: "OutputPin", DeclaredType: "Wildcard", Direction: "output"},
			},
			ExpectedPinCount: 2,
		},
		{
			StableKey:   KeyComment,
			DisplayName: "Add Comment",
			Category:    "Utilities",
			Description: "Comment box grouping nodes visually; has no pins and no runtime behavior.",
			Keywords:    []string{"comment", "note"},
			Kind:        KindSynthetic,
			NodeClass:   host.NodeComment,
			Pins:        []PinDescriptor{},
		},
	}
}
