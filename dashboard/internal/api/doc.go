// Package api implements the dashboard's HTTP surface.
//
// New(presenter) returns an http.Handler that serves:
//
//	GET /api/v1/state    current pair, last error, transport and pie slices
//	GET /api/v1/health   ok | degraded | waiting
//	GET /chart.svg       the current pie as SVG
//	GET /                HTML page with the chart, refreshed over /ws/stream
//
// All endpoints return 405 for non-GET methods. JSON types are defined in
// types.go. Presentation settings (title, labels, colours) live in a View
// held by the Presenter and can be swapped at runtime on config reload.
// No external HTTP framework is used.
package api
