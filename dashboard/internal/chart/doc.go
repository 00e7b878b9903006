// Package chart turns a list of labelled values into pie wedges and renders
// them as SVG. Everything here is a pure function of its input: the same
// data and palette always produce the same output.
package chart
