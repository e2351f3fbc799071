package spawn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"

	"github.com/nodeforge-editor/nodeforge/internal/host"
	"github.com/nodeforge-editor/nodeforge/internal/marshal"
)

// Config carries the kind-specific bindings and pin defaults applied
// to a node after placement. Fields irrelevant to the node's class are
// ignored.
type Config struct {
	// Callable binding (CallFunction and Event nodes).
	Callable  string
	OwnerHint string

	// Variable binding. OwnerType, an explicit "external" Scope, or
	// NotLocal force external scope resolution.
	Variable  string
	OwnerType string
	Scope     string
	NotLocal  bool

	// Type descriptor strings resolved through the registry.
	CastTarget string
	SpawnClass string

	// PinDefaults applies dynamic values to named pins through the
	// marshaller after the kind-specific bindings have consumed
	// theirs.
	PinDefaults map[string]cty.Value
}

// Result reports the non-fatal outcomes of a configuration pass.
// PinErrors are keyed by pin name; a failing pin never aborts its
// siblings.
type Result struct {
	Warnings  []Warning
	PinErrors map[string]error
}

// Configurator applies kind-specific bindings and pin defaults to
// placed nodes.
type Configurator struct {
	registry   *host.Registry
	marshaller *marshal.Marshaller
	log        *zap.Logger
}

// NewConfigurator wires a configurator over the registry and
// marshaller.
func NewConfigurator(registry *host.Registry, marshaller *marshal.Marshaller, log *zap.Logger) *Configurator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Configurator{registry: registry, marshaller: marshaller, log: log}
}

// Apply runs the configuration pass for a node. The returned error is
// fatal (the binding the node class requires could not be made);
// everything recoverable lands in the Result.
func (c *Configurator) Apply(ctx *host.Context, node *host.Node, cfg Config) (*Result, error) {
	res := &Result{PinErrors: make(map[string]error)}

	switch node.Class {
	case host.NodeCallFunction:
		if cfg.Callable != "" {
			if err := c.bindCallable(ctx, node, cfg.Callable, cfg.OwnerHint, res); err != nil {
				return res, err
			}
		}
	case host.NodeEvent:
		if cfg.Callable != "" {
			if err := c.bindEvent(ctx, node, cfg.Callable); err != nil {
				return res, err
			}
		}
	case host.NodeVariableGet, host.NodeVariableSet:
		if cfg.Variable != "" {
			if err := c.bindVariable(ctx, node, cfg, res); err != nil {
				return res, err
			}
		}
	case host.NodeDynamicCast:
		if cfg.CastTarget != "" {
			target, err := c.registry.ResolveType(cfg.CastTarget)
			if err != nil {
				return res, fmt.Errorf("cast target: %w", err)
			}
			node.CastTarget = target
			node.Title = "Cast To " + target.Name
		}
	case host.NodeSpawnFromClass:
		if cfg.SpawnClass != "" {
			class, err := c.registry.ResolveType(cfg.SpawnClass)
			if err != nil {
				return res, fmt.Errorf("spawn class: %w", err)
			}
			node.SpawnClass = class
			node.Title = "Spawn " + class.Name
		}
	}

	c.applyPinDefaults(node, cfg.PinDefaults, res)
	return res, nil
}

// bindCallable searches all reachable callables for name matches and
// binds the best candidate. Tie-break order: visibility-filtered
// candidates before unfiltered, exact owning-type match before
// first-available. Ambiguity that survives owner filtering is reported
// as a warning naming the chosen candidate, not a failure; callers
// needing determinism supply an owning-type hint.
func (c *Configurator) bindCallable(ctx *host.Context, node *host.Node, name, ownerHint string, res *Result) error {
	var all, visible []*host.Function
	for _, class := range c.registry.Classes() {
		for _, fn := range class.Functions {
			if fn.Name != name {
				continue
			}
			all = append(all, fn)
			if ctx.Visible(fn) {
				visible = append(visible, fn)
			}
		}
	}
	if len(all) == 0 {
		return fmt.Errorf("no callable named %q is reachable", name)
	}

	sortByOwner(all)
	sortByOwner(visible)

	chosen := pickCallable(visible, ownerHint)
	if chosen == nil {
		chosen = pickCallable(all, ownerHint)
	}

	pool := visible
	if len(pool) == 0 {
		pool = all
	}
	hintResolved := ownerHint != "" &&
		(chosen.Owner.Name == ownerHint || chosen.Owner.Path == ownerHint)
	if len(pool) > 1 && !hintResolved {
		res.Warnings = append(res.Warnings, Warning{
			Kind: WarnAmbiguousBinding,
			Detail: fmt.Sprintf("%d callables named %q in distinct owning types",
				len(pool), name),
			Chosen: chosen.Owner.Name + "::" + chosen.Name,
		})
	}

	node.BoundFunction = chosen
	node.Title = chosen.Name
	node.SelfScoped = false
	if own := ctx.OwnClass(); own != nil && !chosen.Static && own.IsChildOf(chosen.Owner) {
		node.SelfScoped = true
	}
	return nil
}

func pickCallable(pool []*host.Function, ownerHint string) *host.Function {
	if len(pool) == 0 {
		return nil
	}
	if ownerHint != "" {
		for _, fn := range pool {
			if fn.Owner.Name == ownerHint || fn.Owner.Path == ownerHint {
				return fn
			}
		}
	}
	return pool[0]
}

func sortByOwner(fns []*host.Function) {
	sort.SliceStable(fns, func(i, j int) bool {
		return fns[i].Owner.Name < fns[j].Owner.Name
	})
}

// bindEvent binds an event callable defined on the document's own
// class chain.
func (c *Configurator) bindEvent(ctx *host.Context, node *host.Node, name string) error {
	own := ctx.OwnClass()
	if own == nil {
		return fmt.Errorf("event %q: document has no own type", name)
	}
	fn := own.FindFunction(name)
	if fn == nil || !fn.IsEvent {
		return fmt.Errorf("no event named %q on %s or its ancestors", name, own.Name)
	}
	node.BoundFunction = fn
	node.Title = "Event " + fn.Name
	node.SelfScoped = true
	return nil
}

// bindVariable resolves self-vs-external scope from the explicit hints
// and binds the named variable. An external owning type that cannot be
// resolved falls back to self-scoped binding with a warning naming the
// unresolved type.
func (c *Configurator) bindVariable(ctx *host.Context, node *host.Node, cfg Config, res *Result) error {
	external := cfg.OwnerType != "" || strings.EqualFold(cfg.Scope, "external") || cfg.NotLocal

	if external && cfg.OwnerType != "" {
		owner, err := c.registry.ResolveType(cfg.OwnerType)
		if err == nil {
			v := owner.FindVariable(cfg.Variable)
			if v == nil {
				return fmt.Errorf("no variable named %q on %s", cfg.Variable, owner.Name)
			}
			node.BoundVariable = v
			node.VarOwner = owner
			node.SelfScoped = false
			node.Title = variableTitle(node.Class, cfg.Variable)
			return nil
		}
		c.log.Warn("external variable owner did not resolve, falling back to self scope",
			zap.String("variable", cfg.Variable),
			zap.String("owner_type", cfg.OwnerType))
		res.Warnings = append(res.Warnings, Warning{
			Kind: WarnScopeFallback,
			Detail: fmt.Sprintf("owning type %q for variable %q could not be resolved; bound self-scoped",
				cfg.OwnerType, cfg.Variable),
			Chosen: cfg.Variable,
		})
	}

	own := ctx.OwnClass()
	if own == nil {
		return fmt.Errorf("variable %q: document has no own type", cfg.Variable)
	}
	v := own.FindVariable(cfg.Variable)
	if v == nil {
		return fmt.Errorf("no variable named %q on %s or its ancestors", cfg.Variable, own.Name)
	}
	node.BoundVariable = v
	node.VarOwner = v.Owner
	node.SelfScoped = true
	node.Title = variableTitle(node.Class, cfg.Variable)
	return nil
}

func variableTitle(class host.NodeClass, name string) string {
	if class == host.NodeVariableGet {
		return "Get " + name
	}
	return "Set " + name
}

// applyPinDefaults writes dynamic defaults onto named pins. Connected
// and output-direction pins are rejected per pin; sibling pins still
// apply. Pins are processed in name order so repeated calls report
// deterministically.
func (c *Configurator) applyPinDefaults(node *host.Node, defaults map[string]cty.Value, res *Result) {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pin := node.FindPin(name)
		if pin == nil {
			res.PinErrors[name] = fmt.Errorf("%w: no pin named %q", ErrPinUnavailable, name)
			continue
		}
		if pin.Direction == host.Output {
			res.PinErrors[name] = fmt.Errorf("%w: %q is an output pin", ErrPinUnavailable, name)
			continue
		}
		if pin.Connected {
			res.PinErrors[name] = fmt.Errorf("%w: %q already has a connection", ErrPinUnavailable, name)
			continue
		}
		slot := pin.Default
		if err := c.marshaller.FromDynamic(pin.Type, &slot, defaults[name]); err != nil {
			res.PinErrors[name] = fmt.Errorf("pin %q: %w", name, err)
			continue
		}
		pin.Default = slot
	}
}
