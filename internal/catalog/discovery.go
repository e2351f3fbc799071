package catalog

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nodeforge-editor/nodeforge/internal/host"
)

// DefaultMaxResults bounds a discovery pass when the caller does not
// supply a cap.
const DefaultMaxResults = 100

// Relevance tier point values. Name tiers are exclusive; keyword and
// tooltip tiers are additive on top.
const (
	scoreExactName  = 100
	scorePrefixName = 75
	scoreNameSubstr = 50
	scoreKeyword    = 25
	scoreTooltip    = 10
)

// Filter narrows a discovery pass. All fields are optional; the zero
// filter matches everything up to MaxResults.
type Filter struct {
	Search     string
	Category   string
	OwningType string
	MaxResults int
}

// Discovery enumerates operation handles for a graph context, extracts
// descriptors, filters, ranks, and warms the handle cache.
type Discovery struct {
	extractor *Extractor
	cache     *HandleCache
	log       *zap.Logger
}

// NewDiscovery wires a discovery pass over an extractor and cache.
func NewDiscovery(extractor *Extractor, cache *HandleCache, log *zap.Logger) *Discovery {
	if log == nil {
		log = zap.NewNop()
	}
	return &Discovery{extractor: extractor, cache: cache, log: log}
}

// Discover runs one bounded, best-effort discovery pass. Results stop
// at MaxResults accepted descriptors; callers needing completeness
// raise the cap or narrow the filters. Every handle-backed descriptor
// accepted here refreshes the handle cache, which is how later
// exact-key creation avoids repeating discovery. A filter combination
// matching nothing yields an empty list, not an error.
func (d *Discovery) Discover(ctx *host.Context, f Filter) []OperationDescriptor {
	maxResults := f.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	var results []OperationDescriptor
	for _, h := range ctx.Handles() {
		if len(results) >= maxResults {
			break
		}
		desc := d.extractor.Extract(h, ctx)
		if !d.matches(&desc, f) {
			continue
		}
		if f.Search != "" {
			desc.Relevance = relevance(&desc, f.Search)
		}
		if desc.StableKey != "" && desc.handleRef != (host.HandleRef{}) {
			d.cache.Put(desc.StableKey, desc.handleRef)
		}
		results = append(results, desc)
	}

	// Synthetic routing helpers join the results under the same
	// filters and the same bound.
	for _, desc := range Synthetics() {
		if len(results) >= maxResults {
			break
		}
		if !d.matches(&desc, f) {
			continue
		}
		if f.Search != "" {
			desc.Relevance = relevance(&desc, f.Search)
		}
		results = append(results, desc)
	}

	if f.Search != "" {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Relevance > results[j].Relevance
		})
	}

	d.log.Debug("discovery pass complete",
		zap.String("search", f.Search),
		zap.String("category", f.Category),
		zap.String("owning_type", f.OwningType),
		zap.Int("results", len(results)))
	return results
}

// FindByKey runs an unfiltered pass looking for one exact stable key.
// This is the cache-miss fallback used by the instantiation engine; it
// uses a high cap so bounded discovery does not hide the target.
func (d *Discovery) FindByKey(ctx *host.Context, key string) (OperationDescriptor, bool) {
	for _, h := range ctx.Handles() {
		desc := d.extractor.Extract(h, ctx)
		if desc.StableKey != key {
			continue
		}
		if desc.handleRef != (host.HandleRef{}) {
			d.cache.Put(desc.StableKey, desc.handleRef)
		}
		return desc, true
	}
	for _, desc := range Synthetics() {
		if desc.StableKey == key {
			return desc, true
		}
	}
	return OperationDescriptor{}, false
}

// Keys returns the stable keys of every operation in the context,
// used for near-miss suggestions on unresolved keys.
func (d *Discovery) Keys(ctx *host.Context) []string {
	var keys []string
	for _, h := range ctx.Handles() {
		desc := d.extractor.Extract(h, ctx)
		if desc.StableKey != "" {
			keys = append(keys, desc.StableKey)
		}
	}
	for _, desc := range Synthetics() {
		keys = append(keys, desc.StableKey)
	}
	return keys
}

func (d *Discovery) matches(desc *OperationDescriptor, f Filter) bool {
	if f.Category != "" && !containsFold(desc.Category, f.Category) {
		return false
	}
	if f.OwningType != "" && !ownerMatches(desc, f.OwningType) {
		return false
	}
	if f.Search != "" && relevance(desc, f.Search) == 0 {
		return false
	}
	return true
}

// ownerMatches tests the owning-type filter as a case-insensitive
// substring over the fully qualified owner path and the short name.
func ownerMatches(desc *OperationDescriptor, owner string) bool {
	switch {
	case desc.Function != nil:
		return containsFold(desc.Function.OwnerName, owner) ||
			containsFold(desc.Function.OwnerPath, owner)
	case desc.Variable != nil:
		return containsFold(desc.Variable.OwnerName, owner) ||
			containsFold(desc.Variable.OwnerPath, owner)
	case desc.Cast != nil:
		return containsFold(desc.Cast.TargetName, owner) ||
			containsFold(desc.Cast.TargetPath, owner)
	default:
		return false
	}
}

// relevance assigns the tiered match score: exact name beats prefix
// beats substring, with keyword and tooltip matches contributing
// additively.
func relevance(desc *OperationDescriptor, term string) uint32 {
	name := strings.ToLower(desc.DisplayName)
	needle := strings.ToLower(term)

	var score uint32
	switch {
	case name == needle:
		score += scoreExactName
	case strings.HasPrefix(name, needle):
		score += scorePrefixName
	case strings.Contains(name, needle):
		score += scoreNameSubstr
	}
	for _, kw := range desc.Keywords {
		if containsFold(kw, needle) {
			score += scoreKeyword
			break
		}
	}
	if containsFold(desc.Tooltip, needle) || containsFold(desc.Description, needle) {
		score += scoreTooltip
	}
	return score
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
