// Package feed is a small reference backend for the dashboard. It keeps a
// two-value counter in memory and serves it over REST and Server-Sent
// Events:
//
//	GET  /api/values                   current pair
//	GET  /api/stream                   SSE, "values" event on every change
//	POST /api/values                   set both values: {"a": 3, "b": 5}
//	POST /api/values/:side/increment   bump a or b, optional {"by": n}
//	GET  /api/health                   status and subscriber count
package feed
