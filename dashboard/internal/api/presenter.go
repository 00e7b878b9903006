package api

import (
	"sync/atomic"
	"time"

	"github.com/revealboard/revealboard/dashboard/internal/chart"
	"github.com/revealboard/revealboard/dashboard/internal/config"
	"github.com/revealboard/revealboard/dashboard/internal/store"
)

// View holds the presentation settings applied to the store's state.
type View struct {
	Title     string
	Labels    config.Labels
	Palette   chart.Palette
	ChartSize int
}

// ViewFromConfig extracts the presentation settings from cfg.
func ViewFromConfig(cfg *config.Config) View {
	return View{
		Title:     cfg.Dashboard.Title,
		Labels:    cfg.Labels,
		Palette:   chart.FromConfig(cfg.Chart),
		ChartSize: chart.DefaultSize,
	}
}

// Presenter turns store state into response payloads. It is shared by the
// HTTP handler and the WebSocket hub.
type Presenter struct {
	store *store.Store
	view  atomic.Pointer[View]
	now   func() time.Time
}

// NewPresenter creates a Presenter reading from st.
func NewPresenter(st *store.Store, v View) *Presenter {
	p := &Presenter{store: st, now: time.Now}
	p.SetView(v)
	return p
}

// SetView replaces the presentation settings. Safe for concurrent use.
func (p *Presenter) SetView(v View) {
	if v.ChartSize <= 0 {
		v.ChartSize = chart.DefaultSize
	}
	p.view.Store(&v)
}

// View returns the current presentation settings.
func (p *Presenter) View() View { return *p.view.Load() }

// Store returns the store the Presenter reads from.
func (p *Presenter) Store() *store.Store { return p.store }

// Slices lays out the pie for s under the current view.
func (p *Presenter) Slices(s store.State) []chart.Slice {
	if s.Current == nil {
		return nil
	}
	v := p.View()
	return chart.Layout(chart.FromPair(*s.Current, v.Labels.A, v.Labels.B), v.Palette)
}

// BuildState assembles the state payload from a fresh store snapshot.
func (p *Presenter) BuildState() StateResponse {
	return p.stateFrom(p.store.Snapshot())
}

func (p *Presenter) stateFrom(s store.State) StateResponse {
	v := p.View()
	slices := p.Slices(s)
	if slices == nil {
		slices = []chart.Slice{}
	}
	resp := StateResponse{
		Title:       v.Title,
		Current:     s.Current,
		LastError:   s.LastError,
		Transport:   s.Transport,
		Labels:      LabelsResponse{A: v.Labels.A, B: v.Labels.B},
		Slices:      slices,
		GeneratedAt: p.now().UTC().Format(time.RFC3339),
	}
	if !s.ChangedAt.IsZero() {
		resp.ChangedAt = s.ChangedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// healthFrom derives the health status: waiting before any data or error,
// degraded while the last attempt failed, ok otherwise.
func healthFrom(s store.State) HealthResponse {
	resp := HealthResponse{
		Transport: s.Transport,
		HasData:   s.Current != nil,
		LastError: s.LastError,
	}
	switch {
	case s.LastError != "":
		resp.Status = "degraded"
	case s.Current == nil:
		resp.Status = "waiting"
	default:
		resp.Status = "ok"
	}
	return resp
}
