// Package config loads and watches the dashboard configuration file.
//
// Top-level types:
//   - Config{Dashboard, Source, Labels, Chart}: full tree parsed from YAML
//   - DashboardConfig: http_port, title, broadcast_interval
//   - Source: mode (stream|poll|sheet), base_url, base_url_env,
//     poll_interval, request_timeout, handshake_timeout,
//     stream_idle_timeout, tls, sheet
//   - Labels: display names of the two counters
//   - ChartConfig: default_color and the label → {fill, stroke} table
//
// Source.Base() resolves the backend root: the variable named by
// base_url_env (default REVEAL_API_BASE) wins over base_url, and trailing
// slashes are stripped before /api/values or /api/stream is appended.
//
// Load(path) reads the YAML file, applies defaults (stream mode, 5s poll,
// 3s sheet poll, port 8080), then validates required fields and enums.
//
// A Reloader owns the active Config after startup. Its Watch loop uses
// fsnotify to detect saves and merges the presentation settings (title,
// labels, chart) into the active Config, calling apply only when one of
// them changed. Changes to startup-only settings are logged by key and
// wait for a restart.
package config
