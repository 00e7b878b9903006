// Package types defines the wire types shared by the dashboard and the feed
// backend. ValuePair is the JSON payload of both GET /api/values and every
// event on GET /api/stream.
package types
