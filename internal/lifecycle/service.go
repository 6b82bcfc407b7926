package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/ent0n29/neuromod/internal/dose"
	"github.com/ent0n29/neuromod/internal/modulation"
	"github.com/ent0n29/neuromod/internal/session"
)

var (
	// ErrNoActiveSession means a session could not be found even after creating one.
	ErrNoActiveSession = errors.New("no active session after retry")
	ErrInvalidDose     = errors.New("dose must be a finite number")
	ErrDoseRequired    = errors.New("dose is required")
)

// adjustAttempts bounds the create-then-retry loop in AdjustDose.
const adjustAttempts = 2

type CreateRequest struct {
	Dose          *float64 `json:"dose" jsonschema:"dose in micrograms-equivalent; 150 maps to intensity 0.5"`
	Owner         string   `json:"owner,omitempty" jsonschema:"session owner; defaults to the caller's identity"`
	SafetyAnchors []string `json:"safety_anchors,omitempty" jsonschema:"informational guard rails kept active for the session"`
}

type AdjustRequest struct {
	NewDose *float64 `json:"new_dose" jsonschema:"replacement dose for the active session"`
}

// Service implements session creation, dose adjustment and mode engagement.
type Service struct {
	store    session.Store
	resolver *Resolver
	opts     options
}

func NewService(store session.Store, opts ...Option) *Service {
	o := buildOptions(opts)
	return &Service{
		store:    store,
		resolver: &Resolver{store: store, opts: o},
		opts:     o,
	}
}

func (s *Service) Resolver() *Resolver { return s.resolver }

func (s *Service) CreateSession(ctx context.Context, req CreateRequest) (SessionSummary, error) {
	if req.Dose == nil {
		return SessionSummary{}, ErrDoseRequired
	}
	if !finite(*req.Dose) {
		return SessionSummary{}, ErrInvalidDose
	}
	owner := strings.TrimSpace(req.Owner)
	if owner == "" {
		if ambient, ok := OwnerFrom(ctx); ok {
			owner = ambient
		} else {
			owner = AnonymousOwner
		}
	}
	created, err := s.resolver.create(ctx, owner, *req.Dose, req.SafetyAnchors)
	if err != nil {
		return SessionSummary{}, err
	}
	s.opts.metrics.SessionEvent("created")
	return summarize(&created), nil
}

func (s *Service) AdjustDose(ctx context.Context, req AdjustRequest) (AdjustmentSummary, error) {
	if req.NewDose == nil {
		return AdjustmentSummary{}, ErrDoseRequired
	}
	if !finite(*req.NewDose) {
		return AdjustmentSummary{}, ErrInvalidDose
	}
	for attempt := 1; attempt <= adjustAttempts; attempt++ {
		current, owner, err := s.resolver.active(ctx)
		if err != nil {
			return AdjustmentSummary{}, err
		}
		if current == nil {
			if attempt < adjustAttempts {
				if _, err := s.resolver.create(ctx, owner, DefaultDose, nil); err != nil {
					return AdjustmentSummary{}, err
				}
				s.opts.metrics.SessionEvent("auto_created")
			}
			continue
		}

		newDose := *req.NewDose
		if err := s.store.Update(ctx, current.ID, session.Patch{Dose: &newDose}); err != nil {
			return AdjustmentSummary{}, fmt.Errorf("update session %s: %w", current.ID, err)
		}
		intensity := dose.Intensity(newDose)
		s.opts.metrics.SessionEvent("dose_adjusted")
		s.opts.logger.Info("dose adjusted",
			zap.String("session_id", current.ID),
			zap.Float64("previous_dose", current.Dose),
			zap.Float64("new_dose", newDose),
		)
		return AdjustmentSummary{
			SessionID:         current.ID,
			PreviousDose:      current.Dose,
			NewDose:           newDose,
			PreviousIntensity: current.Intensity,
			NewIntensity:      intensity,
			DoseRange:         string(dose.Classify(newDose)),
			Effects:           dose.Describe(intensity),
			HighDoseAdvisory:  dose.Advisory(newDose),
		}, nil
	}
	s.opts.logger.Error("adjust dose found no session after retry")
	return AdjustmentSummary{}, ErrNoActiveSession
}

// Status returns the ensured session.
func (s *Service) Status(ctx context.Context) (SessionSummary, error) {
	current, err := s.resolver.EnsureSession(ctx)
	if err != nil {
		return SessionSummary{}, err
	}
	return summarize(current), nil
}

// Lookup returns the summary of a session by id, or nil when unknown.
func (s *Service) Lookup(ctx context.Context, id string) (*SessionSummary, error) {
	found, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	if found == nil {
		return nil, nil
	}
	out := summarize(found)
	return &out, nil
}

// Engage marks mode as current on the ensured session, activating it, and
// returns the level derivations should read.
func (s *Service) Engage(ctx context.Context, mode string) (modulation.Level, error) {
	current, err := s.resolver.EnsureSession(ctx)
	if err != nil {
		return modulation.Level{}, err
	}
	active := session.StatusActive
	if err := s.store.Update(ctx, current.ID, session.Patch{CurrentMode: &mode, Status: &active}); err != nil {
		return modulation.Level{}, fmt.Errorf("engage %s on session %s: %w", mode, current.ID, err)
	}
	s.opts.metrics.ObserveActivation(mode, current.Intensity)
	s.opts.logger.Debug("mode engaged",
		zap.String("session_id", current.ID),
		zap.String("mode", mode),
		zap.Float64("intensity", current.Intensity),
	)
	return modulation.Level{Intensity: current.Intensity, Dose: current.Dose}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
