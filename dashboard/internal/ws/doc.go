// Package ws implements the WebSocket hub for the dashboard page.
//
// Hub manages a set of connected clients and pushes the current state to
// all of them whenever the store changes, plus a periodic re-send on a
// configurable interval (default 5s).
//
// New(presenter, interval) creates a Hub.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes all connections.
// Hub.ServeHTTP upgrades an HTTP connection, sends the current state
// immediately, then streams updates.
//
// Message format sent to clients:
//
//	{
//	  "event": "state",
//	  "data":  { /* same schema as GET /api/v1/state */ }
//	}
//
// The upgrader accepts all origins. The hub is mounted at /ws/stream.
package ws
