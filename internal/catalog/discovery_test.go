package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nodeforge-editor/nodeforge/internal/host"
	"github.com/nodeforge-editor/nodeforge/internal/marshal"
)

type testStack struct {
	registry  *host.Registry
	ctx       *host.Context
	extractor *Extractor
	cache     *HandleCache
	discovery *Discovery
}

func newTestStack(t *testing.T, ownClass string) *testStack {
	t.Helper()
	registry := host.CoreRegistry()
	own := registry.ClassByName(ownClass)
	require.NotNil(t, own, "core library missing class %s", ownClass)
	doc := host.NewGraphDocument("Test", own)

	marshaller := marshal.New(registry, zap.NewNop())
	extractor := NewExtractor(marshaller, zap.NewNop())
	cache := NewHandleCache(registry)
	return &testStack{
		registry:  registry,
		ctx:       host.NewContext(registry, doc, doc.MainGraph()),
		extractor: extractor,
		cache:     cache,
		discovery: NewDiscovery(extractor, cache, zap.NewNop()),
	}
}

func findByKey(ops []OperationDescriptor, key string) *OperationDescriptor {
	for i := range ops {
		if ops[i].StableKey == key {
			return &ops[i]
		}
	}
	return nil
}

func TestDiscover_PrintString(t *testing.T) {
	s := newTestStack(t, "Actor")

	ops := s.discovery.Discover(s.ctx, Filter{Search: "PrintString"})
	require.Len(t, ops, 1, "exact function name should match exactly one operation")

	op := ops[0]
	assert.Equal(t, "SystemLibrary::PrintString", op.StableKey)
	assert.Equal(t, KindFunctionCall, op.Kind)
	assert.Equal(t, uint32(100), op.Relevance)
	require.NotNil(t, op.Function)
	assert.True(t, op.Function.Static)

	// execute, then, InString, Severity, Duration. Static: no self pin.
	assert.Equal(t, 5, op.ExpectedPinCount)
	names := make([]string, 0, len(op.Pins))
	for _, p := range op.Pins {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"execute", "then", "InString", "Severity", "Duration"}, names)
}

func TestRelevanceTiers(t *testing.T) {
	desc := &OperationDescriptor{
		DisplayName: "Delay",
		Keywords:    []string{"wait"},
		Tooltip:     "Pauses execution.",
	}

	tests := []struct {
		term string
		want uint32
	}{
		{"Delay", 100},
		{"del", 75},
		{"ela", 50},
		{"wait", 25},
		{"pauses", 10},
		{"zzz", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relevance(desc, tt.term), "term %q", tt.term)
	}
}

func TestDiscover_RankedSearch(t *testing.T) {
	s := newTestStack(t, "Actor")

	// "Le" prefixes Lerp (plus its "blend" keyword) and only reaches
	// SetActorLocation through the "teleport" keyword.
	ops := s.discovery.Discover(s.ctx, Filter{Search: "Le"})
	require.Len(t, ops, 2)
	assert.Equal(t, "MathLibrary::Lerp", ops[0].StableKey)
	assert.Equal(t, "Actor::SetActorLocation", ops[1].StableKey)
	assert.Greater(t, ops[0].Relevance, ops[1].Relevance)

	// Keyword-only match.
	ops = s.discovery.Discover(s.ctx, Filter{Search: "teleport"})
	require.Len(t, ops, 1)
	assert.Equal(t, "Actor::SetActorLocation", ops[0].StableKey)
	assert.Equal(t, uint32(25), ops[0].Relevance)

	// Tooltip-only match is the weakest tier.
	ops = s.discovery.Discover(s.ctx, Filter{Search: "interpolates"})
	require.Len(t, ops, 1)
	assert.Equal(t, "MathLibrary::Lerp", ops[0].StableKey)
	assert.Equal(t, uint32(10), ops[0].Relevance)
}

func TestDiscover_Filters(t *testing.T) {
	s := newTestStack(t, "Actor")

	ops := s.discovery.Discover(s.ctx, Filter{Category: "Math"})
	require.Len(t, ops, 2)
	assert.NotNil(t, findByKey(ops, "MathLibrary::Lerp"))
	assert.NotNil(t, findByKey(ops, "MathLibrary::RandomInteger"))

	// Owning-type filter also admits the cast targeting that type.
	ops = s.discovery.Discover(s.ctx, Filter{OwningType: "MathLibrary"})
	require.Len(t, ops, 3)
	assert.NotNil(t, findByKey(ops, "Cast::MathLibrary"))

	// Disjoint filters match nothing, without error.
	ops = s.discovery.Discover(s.ctx, Filter{Category: "Math", OwningType: "SystemLibrary"})
	assert.Empty(t, ops)
}

func TestDiscover_MaxResultsBound(t *testing.T) {
	s := newTestStack(t, "Actor")

	all := s.discovery.Discover(s.ctx, Filter{MaxResults: DefaultMaxResults})
	require.Greater(t, len(all), 3)

	bounded := s.discovery.Discover(s.ctx, Filter{MaxResults: 3})
	assert.Len(t, bounded, 3)
}

func TestDiscover_WarmsCache(t *testing.T) {
	s := newTestStack(t, "Actor")
	require.Equal(t, 0, s.cache.Len())

	s.discovery.Discover(s.ctx, Filter{Search: "PrintString"})

	require.Equal(t, 1, s.cache.Len())
	h := s.cache.Get("SystemLibrary::PrintString")
	require.NotNil(t, h)
	assert.Equal(t, host.HandleFunction, h.Kind)
	assert.Equal(t, "PrintString", h.Function.Name)
}

func TestDiscover_SyntheticsIncluded(t *testing.T) {
	s := newTestStack(t, "Actor")

	ops := s.discovery.Discover(s.ctx, Filter{})
	reroute := findByKey(ops, KeyReroute)
	require.NotNil(t, reroute)
	assert.Equal(t, KindSynthetic, reroute.Kind)
	assert.Equal(t, host.HandleRef{}, reroute.HandleRef())
	assert.Equal(t, 2, reroute.ExpectedPinCount)

	comment := findByKey(ops, KeyComment)
	require.NotNil(t, comment)
	assert.Empty(t, comment.Pins)

	// Synthetics obey the search filter like everything else.
	ops = s.discovery.Discover(s.ctx, Filter{Search: "knot"})
	require.Len(t, ops, 1)
	assert.Equal(t, KeyReroute, ops[0].StableKey)
}

func TestDiscover_EventsOnlyOnOwnChain(t *testing.T) {
	onActor := newTestStack(t, "Actor")
	ops := onActor.discovery.Discover(onActor.ctx, Filter{Search: "BeginPlay"})
	require.Len(t, ops, 1)
	assert.Equal(t, KindEvent, ops[0].Kind)

	// A document whose own type is off the event owner's chain never
	// sees the event.
	offChain := newTestStack(t, "SystemLibrary")
	ops = offChain.discovery.Discover(offChain.ctx, Filter{Search: "BeginPlay"})
	assert.Empty(t, ops)
}

func TestFindByKey(t *testing.T) {
	s := newTestStack(t, "Actor")

	desc, ok := s.discovery.FindByKey(s.ctx, "SystemLibrary::PrintString")
	require.True(t, ok)
	assert.Equal(t, KindFunctionCall, desc.Kind)
	assert.NotNil(t, s.cache.Get("SystemLibrary::PrintString"), "exact-key lookup warms the cache")

	desc, ok = s.discovery.FindByKey(s.ctx, KeyComment)
	require.True(t, ok)
	assert.Equal(t, KindSynthetic, desc.Kind)

	_, ok = s.discovery.FindByKey(s.ctx, "SystemLibrary::Nonexistent")
	assert.False(t, ok)
}

func TestKeys_StableAndUnique(t *testing.T) {
	s := newTestStack(t, "Actor")

	first := s.discovery.Keys(s.ctx)
	require.NotEmpty(t, first)

	seen := make(map[string]bool, len(first))
	for _, k := range first {
		assert.False(t, seen[k], "duplicate stable key %q", k)
		seen[k] = true
	}

	// Keys survive re-enumeration and catalog refresh unchanged.
	s.registry.RefreshCatalog()
	assert.Equal(t, first, s.discovery.Keys(s.ctx))
}
