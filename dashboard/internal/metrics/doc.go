// Package metrics exposes the acquisition state in the Prometheus text
// format. Families are built from a store snapshot on every scrape; no
// state is kept between scrapes.
package metrics
