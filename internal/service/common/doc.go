// Package common holds helpers shared by the command-line tools.
//
// It provides a gRPC client for the security service with per-call timeouts
// and detection of the current system actor (hostname/username), which is
// sent with every call for the server audit log.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
