// Package lifecycle creates, resolves and mutates modulation sessions on top
// of a session.Store.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ent0n29/neuromod/internal/observability"
	"github.com/ent0n29/neuromod/internal/policy"
	"github.com/ent0n29/neuromod/internal/session"
)

// DefaultDose is the dose of sessions synthesized on demand.
const DefaultDose = 100.0

// DefaultSafetyAnchors returns the anchors attached when none are supplied.
func DefaultSafetyAnchors() []string {
	return []string{"maintain_coherence", "respect_user_intent", "preserve_factual_grounding"}
}

type options struct {
	now     func() time.Time
	newID   func() string
	logger  *zap.Logger
	metrics *observability.Metrics
}

type Option func(*options)

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Resolver guarantees a live session for the ambient owner.
type Resolver struct {
	store session.Store
	opts  options
}

func NewResolver(store session.Store, opts ...Option) *Resolver {
	return &Resolver{store: store, opts: buildOptions(opts)}
}

// EnsureSession returns the caller's live session, creating a default one if
// none exists. Absence is never an error.
func (r *Resolver) EnsureSession(ctx context.Context) (*session.Session, error) {
	current, owner, err := r.active(ctx)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return current, nil
	}

	created, err := r.create(ctx, owner, DefaultDose, nil)
	if err != nil {
		return nil, err
	}
	r.opts.metrics.SessionEvent("auto_created")

	// Another writer may have won the active pointer in between.
	current, _, err = r.active(ctx)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return current, nil
	}
	return &created, nil
}

// active looks up the live session without creating one and reports the owner
// a new session would be created for.
func (r *Resolver) active(ctx context.Context) (*session.Session, string, error) {
	if owner, ok := OwnerFrom(ctx); ok {
		s, err := r.store.GetActiveForOwner(ctx, owner)
		if err != nil {
			return nil, owner, fmt.Errorf("resolve active session: %w", err)
		}
		return s, owner, nil
	}

	s, err := r.store.GetActive(ctx)
	if errors.Is(err, session.ErrOwnerRequired) {
		s, err = r.store.GetActiveForOwner(ctx, AnonymousOwner)
	}
	if err != nil {
		return nil, AnonymousOwner, fmt.Errorf("resolve active session: %w", err)
	}
	return s, AnonymousOwner, nil
}

func (r *Resolver) create(ctx context.Context, owner string, d float64, anchors []string) (session.Session, error) {
	if anchors == nil {
		anchors = DefaultSafetyAnchors()
	}
	s := session.New(r.opts.newID(), owner, d, slices.Clone(anchors), r.opts.now())
	if err := r.store.Save(ctx, s); err != nil {
		return session.Session{}, fmt.Errorf("save session: %w", err)
	}
	r.opts.logger.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("owner", policy.RedactOwner(owner)),
		zap.Float64("dose", s.Dose),
		zap.Float64("intensity", s.Intensity),
		zap.String("store", r.store.Mode()),
	)
	return s, nil
}
