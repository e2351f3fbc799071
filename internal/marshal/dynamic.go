package marshal

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// DynamicFromJSON decodes a raw JSON document into a dynamic value
// tree, inferring the type from the document itself. This is the entry
// point for values arriving from the command layer.
func DynamicFromJSON(data []byte) (cty.Value, error) {
	ty, err := ctyjson.ImpliedType(data)
	if err != nil {
		return cty.NilVal, fmt.Errorf("invalid dynamic value: %w", err)
	}
	v, err := ctyjson.Unmarshal(data, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("invalid dynamic value: %w", err)
	}
	return v, nil
}

// DynamicToJSON encodes a dynamic value tree as JSON.
func DynamicToJSON(v cty.Value) ([]byte, error) {
	data, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, fmt.Errorf("encode dynamic value: %w", err)
	}
	return data, nil
}
