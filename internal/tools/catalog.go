// Package tools binds the lifecycle service and the modulation modes to named
// tools, served over MCP and dispatched from raw JSON for HTTP and WebSocket.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ent0n29/neuromod/internal/lifecycle"
	"github.com/ent0n29/neuromod/internal/modulation"
	"github.com/ent0n29/neuromod/internal/observability"
)

const (
	NameInitializeSession = "initialize_session"
	NameAdjustDose        = "adjust_dose"
	NameSessionStatus     = "session_status"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid arguments")
)

// StatusInput takes no arguments.
type StatusInput struct{}

// Descriptor is the public listing of a tool.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type entry struct {
	Descriptor
	invoke   func(ctx context.Context, raw json.RawMessage) (any, error)
	register func(server *mcp.Server)
}

// Catalog is the ordered set of tools.
type Catalog struct {
	svc          *lifecycle.Service
	defaultOwner string
	logger       *zap.Logger
	metrics      *observability.Metrics

	entries []entry
	byName  map[string]int
}

type Option func(*Catalog)

// WithDefaultOwner names the owner used when a call carries none.
func WithDefaultOwner(owner string) Option {
	return func(c *Catalog) { c.defaultOwner = owner }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

func NewCatalog(svc *lifecycle.Service, opts ...Option) *Catalog {
	c := &Catalog{svc: svc, logger: zap.NewNop(), byName: make(map[string]int)}
	for _, opt := range opts {
		opt(c)
	}

	c.add(
		newEntry(c, NameInitializeSession,
			"Starts a modulation session at the given dose and reports intensity, effects and safety status.",
			svc.CreateSession),
		newEntry(c, NameAdjustDose,
			"Changes the dose of the active session, creating a default session first if none is live.",
			svc.AdjustDose),
		newEntry(c, NameSessionStatus,
			"Reports the active session, creating a default one if none is live.",
			func(ctx context.Context, _ StatusInput) (lifecycle.SessionSummary, error) { return svc.Status(ctx) }),
		modeEntry(c, modulation.Associative),
		modeEntry(c, modulation.PatternRecognition),
		modeEntry(c, modulation.Synesthesia),
		modeEntry(c, modulation.BoundaryDissolution),
		modeEntry(c, modulation.RecursiveElaboration),
		modeEntry(c, modulation.DivergentThinking),
		modeEntry(c, modulation.PerspectiveShift),
		modeEntry(c, modulation.MetaphoricalLanguage),
	)
	return c
}

func (c *Catalog) add(entries ...entry) {
	for _, e := range entries {
		c.byName[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
}

// List returns the tools in registration order.
func (c *Catalog) List() []Descriptor {
	out := make([]Descriptor, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Descriptor)
	}
	return out
}

// Invoke decodes raw into the tool's input and runs it.
func (c *Catalog) Invoke(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	i, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return c.entries[i].invoke(ctx, raw)
}

// Register adds every tool to server.
func (c *Catalog) Register(server *mcp.Server) {
	for _, e := range c.entries {
		e.register(server)
	}
}

// NewServer builds an MCP server exposing the catalog.
func (c *Catalog) NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "neuromod", Version: version}, nil)
	c.Register(server)
	return server
}

func newEntry[In, Out any](c *Catalog, name, description string, call func(context.Context, In) (Out, error)) entry {
	run := func(ctx context.Context, in In) (Out, error) {
		ctx = c.withDefaultOwner(ctx)
		start := time.Now()
		out, err := call(ctx, in)
		outcome := "ok"
		if err != nil {
			outcome = "error"
			c.logger.Warn("tool call failed", zap.String("tool", name), zap.Error(err))
		}
		c.metrics.ObserveToolCall(name, outcome, time.Since(start))
		return out, err
	}

	return entry{
		Descriptor: Descriptor{Name: name, Description: description},
		invoke: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var in In
			if err := decodeArguments(raw, &in); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
			}
			out, err := run(ctx, in)
			if err != nil {
				return nil, err
			}
			return out, nil
		},
		register: func(server *mcp.Server) {
			mcp.AddTool(server, &mcp.Tool{Name: name, Description: description},
				func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
					out, err := run(ctx, in)
					return nil, out, err
				})
		},
	}
}

func modeEntry[In, Out any](c *Catalog, m modulation.Mode[In, Out]) entry {
	return newEntry(c, m.Tool, m.Description, func(ctx context.Context, in In) (Out, error) {
		lvl, err := c.svc.Engage(ctx, m.Name)
		if err != nil {
			var zero Out
			return zero, err
		}
		return m.Derive(lvl, in), nil
	})
}

func (c *Catalog) withDefaultOwner(ctx context.Context) context.Context {
	if _, ok := lifecycle.OwnerFrom(ctx); ok {
		return ctx
	}
	return lifecycle.WithOwner(ctx, c.defaultOwner)
}

func decodeArguments(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
