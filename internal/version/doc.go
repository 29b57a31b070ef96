// Package version exposes build metadata of the catpoint binaries.
//
// Version, Commit and BuildTime are injected with -ldflags "-X ..." and are
// reported by the `version` subcommand, the server startup log and the
// User-Agent of outgoing classifier requests.
package version
