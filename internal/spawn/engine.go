package spawn

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nodeforge-editor/nodeforge/internal/catalog"
	"github.com/nodeforge-editor/nodeforge/internal/host"
)

// NodeSummary is the result of a successful creation call. Each call
// creates a fresh node: creation is deliberately not idempotent.
type NodeSummary struct {
	Key      string        `json:"key"`
	NodeID   string        `json:"node_id"`
	Title    string        `json:"title"`
	PinCount int           `json:"pin_count"`
	Position host.Position `json:"position"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Engine creates live nodes from stable keys: cache-first key
// resolution with a discovery fallback, two-phase pin allocation, and
// the configuration pass, followed by reconciliation.
type Engine struct {
	cache        *catalog.HandleCache
	discovery    *catalog.Discovery
	extractor    *catalog.Extractor
	configurator *Configurator
	log          *zap.Logger
}

// NewEngine wires the instantiation engine.
func NewEngine(cache *catalog.HandleCache, discovery *catalog.Discovery, extractor *catalog.Extractor, configurator *Configurator, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cache:        cache,
		discovery:    discovery,
		extractor:    extractor,
		configurator: configurator,
		log:          log,
	}
}

// CreateFromKey materializes a node for the operation identified by a
// stable key in the context's graph at the given position.
//
// Key resolution tries the handle cache first; on a miss it runs a
// fresh unfiltered discovery pass scoped to the context, warming the
// cache on the way. A key that still resolves to nothing fails with
// ErrUnresolvedKey plus near-miss suggestions.
//
// When configuration fails the placed node stays in the graph, since
// node deletion has its own wiring side effects and rollback is the
// caller's call. The error carries the node id and the failed step.
func (e *Engine) CreateFromKey(ctx *host.Context, key string, pos host.Position) (*NodeSummary, error) {
	if key == catalog.KeyReroute || key == catalog.KeyComment {
		return e.createSynthetic(ctx, key, pos), nil
	}

	desc, ok := e.resolveKey(ctx, key)
	if !ok {
		return nil, &CreationError{
			Step:        StepResolveKey,
			Key:         key,
			Suggestions: suggestKeys(key, e.discovery.Keys(ctx)),
			Err:         ErrUnresolvedKey,
		}
	}

	if ctx.Graph == nil {
		return nil, &CreationError{Step: StepPlacement, Key: key,
			Err: fmt.Errorf("context has no target graph")}
	}
	node := ctx.Graph.PlaceNode(desc.NodeClass, pos)
	cfg := configFromDescriptor(&desc)

	var res *Result
	var err error
	switch OrderFor(desc.NodeClass) {
	case ConfigureFirst:
		// The pin signature depends entirely on the binding; bind
		// before any pins exist.
		if res, err = e.configurator.Apply(ctx, node, cfg); err == nil {
			node.AllocateDefaultPins()
		}
	default:
		node.AllocateDefaultPins()
		res, err = e.configurator.Apply(ctx, node, cfg)
	}
	if err != nil {
		return nil, &CreationError{Step: StepConfigure, Key: key, NodeID: node.ID, Err: err}
	}

	node.ReconstructNode()
	node.SetPosition(pos)
	ctx.Document.MarkModified()

	summary := &NodeSummary{
		Key:      key,
		NodeID:   node.ID,
		Title:    node.Title,
		PinCount: len(node.Pins),
		Position: node.Position,
	}
	for _, w := range res.Warnings {
		summary.Warnings = append(summary.Warnings, w.String())
	}
	e.log.Info("node created",
		zap.String("key", key),
		zap.String("node_id", node.ID),
		zap.Int("pins", summary.PinCount))
	return summary, nil
}

// Configure applies a configuration pass to an existing node,
// identified by id, in the context's graph. Used by the outer command
// layer for post-creation configuration.
func (e *Engine) Configure(ctx *host.Context, nodeID string, cfg Config) (*Result, error) {
	node := ctx.Graph.FindNode(nodeID)
	if node == nil {
		return nil, fmt.Errorf("no node with id %s", nodeID)
	}
	res, err := e.configurator.Apply(ctx, node, cfg)
	if err != nil {
		return res, err
	}
	node.ReconstructNode()
	ctx.Document.MarkModified()
	return res, nil
}

// resolveKey resolves a stable key to a descriptor, cache first.
func (e *Engine) resolveKey(ctx *host.Context, key string) (catalog.OperationDescriptor, bool) {
	if h := e.cache.Get(key); h != nil {
		desc := e.extractor.Extract(h, ctx)
		if desc.StableKey == key {
			return desc, true
		}
		// The cached handle no longer describes this key; fall
		// through to a fresh pass.
	}
	return e.discovery.FindByKey(ctx, key)
}

func (e *Engine) createSynthetic(ctx *host.Context, key string, pos host.Position) *NodeSummary {
	class := host.NodeReroute
	title := "Reroute"
	if key == catalog.KeyComment {
		class = host.NodeComment
		title = "Comment"
	}
	node := ctx.Graph.PlaceNode(class, pos)
	node.Title = title
	node.AllocateDefaultPins()
	ctx.Document.MarkModified()
	return &NodeSummary{
		Key:      key,
		NodeID:   node.ID,
		Title:    node.Title,
		PinCount: len(node.Pins),
		Position: node.Position,
	}
}

// configFromDescriptor translates a resolved descriptor into the
// configuration its node class needs.
func configFromDescriptor(desc *catalog.OperationDescriptor) Config {
	var cfg Config
	switch desc.Kind {
	case catalog.KindFunctionCall:
		cfg.Callable = desc.DisplayName
		if desc.Function != nil {
			cfg.OwnerHint = desc.Function.OwnerName
		}
	case catalog.KindEvent:
		cfg.Callable = desc.DisplayName
	case catalog.KindVariableGet, catalog.KindVariableSet:
		if desc.Variable != nil {
			cfg.Variable = desc.Variable.Name
			if desc.Variable.External {
				cfg.OwnerType = desc.Variable.OwnerName
			}
		}
	case catalog.KindCast:
		if desc.Cast != nil {
			cfg.CastTarget = desc.Cast.TargetName
		}
	}
	return cfg
}
