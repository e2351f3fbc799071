package catalog

import "fmt"

// Fixed literal keys for the synthetic operations, which have no
// backing reflective handle.
const (
	KeyReroute = "Synthetic::Reroute"
	KeyComment = "Synthetic::Comment"
)

// FunctionKey builds the stable key for a callable or event:
// OwningType::OperationName.
func FunctionKey(owner, name string) string {
	return owner + "::" + name
}

// VariableKey builds the stable key for a variable accessor. The
// owning type prefix is dropped only for variables defined by exactly
// the target document's own type; accessors for ancestor-owned or
// unrelated variables keep the prefix, so at most one level of the
// class chain is ever unprefixed and shadowed names stay unique.
func VariableKey(owner, name string, get, external bool) string {
	verb := "SET"
	if get {
		verb = "GET"
	}
	if external {
		return fmt.Sprintf("%s::Operation %s %s", owner, verb, name)
	}
	return fmt.Sprintf("Operation %s %s", verb, name)
}

// CastKey builds the stable key for a type cast, derived from the
// target type name.
func CastKey(target string) string {
	return "Cast::" + target
}
