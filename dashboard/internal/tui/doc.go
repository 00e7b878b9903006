// Package tui renders the dashboard in a terminal with bubbletea. The model
// reads the shared store on a fixed tick and never talks to the backend
// itself.
package tui
