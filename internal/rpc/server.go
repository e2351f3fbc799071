// Package rpc exposes the node catalog and instantiation engine to an
// external automated client over JSON-RPC on stdio. The protocol is a
// thin mirror of the core structures; all real behavior lives in the
// catalog, spawn, and marshal packages.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/zclconf/go-cty/cty"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"

	"github.com/nodeforge-editor/nodeforge/internal/catalog"
	"github.com/nodeforge-editor/nodeforge/internal/host"
	"github.com/nodeforge-editor/nodeforge/internal/marshal"
	"github.com/nodeforge-editor/nodeforge/internal/spawn"
)

// Method names accepted by the server.
const (
	MethodDiscover  = "catalog/discover"
	MethodCreate    = "node/create"
	MethodConfigure = "node/configure"
	MethodShutdown  = "shutdown"
	MethodExit      = "exit"
)

// Server serves one interactive editing session: a registry, one graph
// document, and the engine stack over them. Commands execute
// synchronously, one at a time, on the connection's dispatch
// goroutine.
type Server struct {
	registry *host.Registry
	document *host.GraphDocument

	discovery *catalog.Discovery
	engine    *spawn.Engine

	conn   jsonrpc2.Conn
	log    *zap.Logger
	cancel context.CancelFunc
}

// NewServer wires a server for a registry and document.
func NewServer(registry *host.Registry, document *host.GraphDocument, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	marshaller := marshal.New(registry, log)
	extractor := catalog.NewExtractor(marshaller, log)
	cache := catalog.NewHandleCache(registry)
	discovery := catalog.NewDiscovery(extractor, cache, log)
	configurator := spawn.NewConfigurator(registry, marshaller, log)
	engine := spawn.NewEngine(cache, discovery, extractor, configurator, log)

	return &Server{
		registry:  registry,
		document:  document,
		discovery: discovery,
		engine:    engine,
		log:       log,
	}
}

// Run serves requests on stdin/stdout until the client exits or ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("nodeforge session started", zap.String("document", s.document.Name))

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	stream := jsonrpc2.NewStream(stdrwc{})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn
	conn.Go(ctx, s.handler())

	<-ctx.Done()
	s.log.Info("nodeforge session closed")
	return conn.Close()
}

func (s *Server) handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		s.log.Debug("request", zap.String("method", req.Method()))

		switch req.Method() {
		case MethodDiscover:
			return s.handleDiscover(ctx, reply, req)
		case MethodCreate:
			return s.handleCreate(ctx, reply, req)
		case MethodConfigure:
			return s.handleConfigure(ctx, reply, req)
		case MethodShutdown:
			return reply(ctx, nil, nil)
		case MethodExit:
			if err := reply(ctx, nil, nil); err != nil {
				s.log.Warn("exit reply failed", zap.Error(err))
			}
			if s.cancel != nil {
				s.cancel()
			}
			return nil
		default:
			return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
		}
	}
}

// DiscoverParams filters a discovery pass.
type DiscoverParams struct {
	Search     string `json:"search,omitempty"`
	Category   string `json:"category,omitempty"`
	OwningType string `json:"owning_type,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// DiscoverResult carries the descriptors of one discovery pass.
type DiscoverResult struct {
	Operations []catalog.OperationDescriptor `json:"operations"`
}

func (s *Server) handleDiscover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DiscoverParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyError(ctx, reply, jsonrpc2.InvalidParams, "malformed discover params")
	}

	ops := s.discovery.Discover(s.context(), catalog.Filter{
		Search:     params.Search,
		Category:   params.Category,
		OwningType: params.OwningType,
		MaxResults: params.MaxResults,
	})
	if ops == nil {
		ops = []catalog.OperationDescriptor{}
	}
	return reply(ctx, DiscoverResult{Operations: ops}, nil)
}

// CreateParams identifies the operation and placement of a new node.
type CreateParams struct {
	Key      string     `json:"key"`
	Position [2]float64 `json:"position"`
}

func (s *Server) handleCreate(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params CreateParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyError(ctx, reply, jsonrpc2.InvalidParams, "malformed create params")
	}
	if params.Key == "" {
		return replyError(ctx, reply, jsonrpc2.InvalidParams, "key is required")
	}

	summary, err := s.engine.CreateFromKey(s.context(), params.Key,
		host.Position{X: params.Position[0], Y: params.Position[1]})
	if err != nil {
		s.log.Warn("create failed", zap.String("key", params.Key), zap.Error(err))
		return replyError(ctx, reply, jsonrpc2.InternalError, err.Error())
	}
	return reply(ctx, summary, nil)
}

// ConfigureParams applies bindings and pin defaults to an existing
// node. Pin default values are raw JSON decoded into dynamic values.
type ConfigureParams struct {
	NodeID string `json:"node_id"`

	Callable  string `json:"callable,omitempty"`
	OwnerHint string `json:"owner_hint,omitempty"`

	Variable  string `json:"variable,omitempty"`
	OwnerType string `json:"owner_type,omitempty"`
	Scope     string `json:"scope,omitempty"`
	NotLocal  bool   `json:"not_local,omitempty"`

	CastTarget string `json:"cast_target,omitempty"`
	SpawnClass string `json:"spawn_class,omitempty"`

	PinDefaults map[string]json.RawMessage `json:"pin_defaults,omitempty"`
}

// ConfigureResult reports warnings and per-pin errors; a pin failure
// never fails the call.
type ConfigureResult struct {
	Warnings  []string          `json:"warnings,omitempty"`
	PinErrors map[string]string `json:"pin_errors,omitempty"`
}

func (s *Server) handleConfigure(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params ConfigureParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyError(ctx, reply, jsonrpc2.InvalidParams, "malformed configure params")
	}
	if params.NodeID == "" {
		return replyError(ctx, reply, jsonrpc2.InvalidParams, "node_id is required")
	}

	cfg, badPins := configFromParams(params)
	res, err := s.engine.Configure(s.context(), params.NodeID, cfg)
	if err != nil {
		return replyError(ctx, reply, jsonrpc2.InternalError, err.Error())
	}

	out := ConfigureResult{PinErrors: badPins}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	for name, pinErr := range res.PinErrors {
		out.PinErrors[name] = pinErr.Error()
	}
	return reply(ctx, out, nil)
}

// configFromParams decodes the wire params, accumulating per-pin
// decode failures instead of failing the call.
func configFromParams(params ConfigureParams) (spawn.Config, map[string]string) {
	cfg := spawn.Config{
		Callable:   params.Callable,
		OwnerHint:  params.OwnerHint,
		Variable:   params.Variable,
		OwnerType:  params.OwnerType,
		Scope:      params.Scope,
		NotLocal:   params.NotLocal,
		CastTarget: params.CastTarget,
		SpawnClass: params.SpawnClass,
	}
	badPins := make(map[string]string)
	if len(params.PinDefaults) > 0 {
		cfg.PinDefaults = make(map[string]cty.Value, len(params.PinDefaults))
		for name, raw := range params.PinDefaults {
			dv, err := marshal.DynamicFromJSON(raw)
			if err != nil {
				badPins[name] = err.Error()
				continue
			}
			cfg.PinDefaults[name] = dv
		}
	}
	return cfg, badPins
}

func (s *Server) context() *host.Context {
	return host.NewContext(s.registry, s.document, s.document.MainGraph())
}

func replyError(ctx context.Context, reply jsonrpc2.Replier, code jsonrpc2.Code, message string) error {
	return reply(ctx, nil, &jsonrpc2.Error{Code: code, Message: message})
}

// stdrwc adapts stdin/stdout to io.ReadWriteCloser for the JSON-RPC
// stream.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return fmt.Errorf("close stdin: %w", err)
	}
	return os.Stdout.Close()
}
