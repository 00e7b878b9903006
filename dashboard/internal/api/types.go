package api

import (
	"github.com/revealboard/revealboard/dashboard/internal/chart"
	"github.com/revealboard/revealboard/pkg/types"
)

// StateResponse is the payload for GET /api/v1/state and the data of every
// WebSocket message.
type StateResponse struct {
	Title       string           `json:"title"`
	Current     *types.ValuePair `json:"current"` // null before the first value
	LastError   string           `json:"last_error"`
	Transport   string           `json:"transport"`
	Labels      LabelsResponse   `json:"labels"`
	Slices      []chart.Slice    `json:"slices"`
	ChangedAt   string           `json:"changed_at,omitempty"` // RFC3339
	GeneratedAt string           `json:"generated_at"`         // RFC3339
}

// LabelsResponse names the two values.
type LabelsResponse struct {
	A string `json:"a"`
	B string `json:"b"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Transport string `json:"transport"`
	HasData   bool   `json:"has_data"`
	LastError string `json:"last_error,omitempty"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
