package lifecycle

import (
	"slices"
	"time"

	"github.com/ent0n29/neuromod/internal/dose"
	"github.com/ent0n29/neuromod/internal/session"
)

// SessionSummary is the caller-facing view of a session.
type SessionSummary struct {
	SessionID        string            `json:"session_id"`
	Owner            string            `json:"owner"`
	Dose             float64           `json:"dose"`
	Intensity        float64           `json:"intensity"`
	DoseRange        string            `json:"dose_range"`
	Status           string            `json:"status"`
	CurrentMode      *string           `json:"current_mode"`
	CreatedAt        string            `json:"created_at"`
	ExpiresAt        string            `json:"expires_at"`
	SafetyAnchors    []string          `json:"safety_anchors"`
	Effects          dose.Effects      `json:"effects"`
	Safety           dose.SafetyStatus `json:"safety"`
	HighDoseAdvisory string            `json:"high_dose_advisory,omitempty"`
}

// AdjustmentSummary reports a dose change.
type AdjustmentSummary struct {
	SessionID         string       `json:"session_id"`
	PreviousDose      float64      `json:"previous_dose"`
	NewDose           float64      `json:"new_dose"`
	PreviousIntensity float64      `json:"previous_intensity"`
	NewIntensity      float64      `json:"new_intensity"`
	DoseRange         string       `json:"dose_range"`
	Effects           dose.Effects `json:"effects"`
	HighDoseAdvisory  string       `json:"high_dose_advisory,omitempty"`
}

func summarize(s *session.Session) SessionSummary {
	var mode *string
	if s.CurrentMode != nil {
		m := *s.CurrentMode
		mode = &m
	}
	anchors := slices.Clone(s.SafetyAnchors)
	if anchors == nil {
		anchors = []string{}
	}
	return SessionSummary{
		SessionID:        s.ID,
		Owner:            s.Owner,
		Dose:             s.Dose,
		Intensity:        s.Intensity,
		DoseRange:        string(dose.Classify(s.Dose)),
		Status:           string(s.Status),
		CurrentMode:      mode,
		CreatedAt:        s.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt:        s.ExpiresAt.UTC().Format(time.RFC3339),
		SafetyAnchors:    anchors,
		Effects:          dose.Describe(s.Intensity),
		Safety:           dose.Safety(s.Intensity, s.SafetyAnchors),
		HighDoseAdvisory: dose.Advisory(s.Dose),
	}
}
