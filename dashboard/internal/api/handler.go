package api

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/revealboard/revealboard/dashboard/internal/chart"
)

// Handler is the HTTP handler for the page, the chart and /api/v1/*.
type Handler struct {
	p   *Presenter
	mux *http.ServeMux
}

// New creates a Handler backed by p and registers all routes.
func New(p *Presenter) http.Handler {
	h := &Handler{p: p, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/state", h.state)
	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/chart.svg", h.chart)
	h.mux.HandleFunc("/", h.page)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// state returns GET /api/v1/state.
func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.p.BuildState())
}

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, healthFrom(h.p.Store().Snapshot()))
}

// chart returns GET /chart.svg.
func (h *Handler) chart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var buf bytes.Buffer
	slices := h.p.Slices(h.p.Store().Snapshot())
	if err := chart.WriteSVG(&buf, slices, h.p.View().ChartSize); err != nil {
		jsonErr(w, http.StatusInternalServerError, "render chart")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes()) //nolint:errcheck
}

// page returns GET /, the dashboard page.
func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := h.p.Store().Snapshot()
	slices := h.p.Slices(snap)
	data := pageData{
		Title:     h.p.View().Title,
		LastError: snap.LastError,
		Loading:   snap.Current == nil,
		Slices:    slices,
	}
	if snap.Current != nil {
		var svg bytes.Buffer
		chart.WriteSVG(&svg, slices, h.p.View().ChartSize) //nolint:errcheck
		data.SVG = template.HTML(svg.String())
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		slog.Error("api: render page", "err", err)
		jsonErr(w, http.StatusInternalServerError, "render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes()) //nolint:errcheck
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("api: encode response", "err", err)
		code = http.StatusInternalServerError
		body = []byte(`{"error":"encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(append(body, '\n')) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
