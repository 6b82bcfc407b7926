package session

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/ent0n29/neuromod/internal/dose"
)

// Lifetime is the fixed span between CreatedAt and ExpiresAt.
const Lifetime = 8 * time.Hour

type Status string

const (
	StatusInitialized Status = "initialized"
	StatusActive      Status = "active"
	StatusExpired     Status = "expired"
)

var (
	// ErrConfiguration is returned when the remote backend is selected without credentials.
	ErrConfiguration = errors.New("session store misconfigured")
	// ErrOwnerRequired is returned by backends that cannot resolve an ambient session.
	ErrOwnerRequired = errors.New("owner required for active session lookup")
)

type Session struct {
	ID            string    `json:"session_id"`
	Owner         string    `json:"owner"`
	Dose          float64   `json:"dose"`
	Intensity     float64   `json:"intensity"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	SafetyAnchors []string  `json:"safety_anchors"`
	CurrentMode   *string   `json:"current_mode"`
	Status        Status    `json:"status"`
}

// New builds an initialized session. Intensity and ExpiresAt are derived.
func New(id, owner string, d float64, anchors []string, now time.Time) Session {
	return Session{
		ID:            id,
		Owner:         owner,
		Dose:          d,
		Intensity:     dose.Intensity(d),
		CreatedAt:     now,
		ExpiresAt:     now.Add(Lifetime),
		SafetyAnchors: slices.Clone(anchors),
		Status:        StatusInitialized,
	}
}

// ExpiredAt reports whether ExpiresAt lies strictly before now.
func (s *Session) ExpiredAt(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// Patch carries the mutable fields of a session. Nil fields are left alone.
// Intensity has no field of its own; it follows Dose.
type Patch struct {
	Dose          *float64
	CurrentMode   *string
	Status        *Status
	SafetyAnchors []string
}

// Apply merges p into s, enforcing the status state machine.
func (p Patch) Apply(s *Session) {
	if p.Dose != nil {
		s.Dose = *p.Dose
		s.Intensity = dose.Intensity(*p.Dose)
	}
	if p.CurrentMode != nil {
		mode := *p.CurrentMode
		s.CurrentMode = &mode
	}
	if p.SafetyAnchors != nil {
		s.SafetyAnchors = slices.Clone(p.SafetyAnchors)
	}
	if p.Status != nil && canTransition(s.Status, *p.Status) {
		s.Status = *p.Status
	}
}

func canTransition(from, to Status) bool {
	switch from {
	case StatusInitialized:
		return to == StatusActive || to == StatusExpired
	case StatusActive:
		return to == StatusExpired
	default:
		return false
	}
}

// Store persists sessions and resolves the active one.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
	GetActive(ctx context.Context) (*Session, error)
	GetActiveForOwner(ctx context.Context, owner string) (*Session, error)
	SetActive(ctx context.Context, id string) error
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
	ClearExpired(ctx context.Context) (int, error)
	Mode() string
	Close() error
}

func clone(s *Session) *Session {
	c := *s
	c.SafetyAnchors = slices.Clone(s.SafetyAnchors)
	if s.CurrentMode != nil {
		mode := *s.CurrentMode
		c.CurrentMode = &mode
	}
	return &c
}
