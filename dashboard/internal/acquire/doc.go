// Package acquire keeps the dashboard's store fed with the latest value pair.
//
// Three acquisition paths exist:
//   - Stream consumes the push channel ({base}/api/stream, Server-Sent Events)
//   - Poller calls a Fetcher once per tick, waiting a fixed interval after
//     each attempt completes; ValuesFetcher reads {base}/api/values and
//     SheetFetcher reads a spreadsheet CSV export
//   - Selector runs Stream first and falls back to the Poller, permanently,
//     the first time the push channel fails
//
// New(source, store) builds the Selector for the configured mode.
//
// Errors are typed: TransportError (push channel failure), FetchError
// (network failure or non-2xx status, message "HTTP <code>") and ParseError
// (malformed body). Malformed push messages are dropped silently; malformed
// poll responses are surfaced through the store's LastError.
//
// Teardown is context cancellation. Run methods return only after their
// connection is closed and their timer stopped, and nothing mutates the
// store once the context is done.
package acquire
