// Package cli implements the interactive billfold command loop.
//
// All data commands write to the local store first and return immediately;
// synchronization with the backend happens in the background via the sync
// engine and the connectivity monitor. The CLI therefore behaves identically
// online and offline, except for receipt uploads and auth, which need the
// backend.
package cli
