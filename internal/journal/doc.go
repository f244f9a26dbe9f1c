// Package journal keeps a local audit trail of feedback received from the
// remote source.
//
// A Recorder watches the feedback store and appends every written entry to
// the feedback_history table. The trail is write-only from the store's point
// of view: nothing read from the journal is ever restored into the store.
// History serves diagnostics (the API and the CLI history command).
package journal
