// Package store holds the dashboard's acquisition state: the latest known
// value pair and the last error string. Writers are the acquisition loops;
// readers (HTTP handlers, the WebSocket hub, the terminal view) receive
// copies, so a reader never observes a half-applied update.
package store
