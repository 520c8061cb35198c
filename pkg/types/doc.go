// Package types defines the configuration, the SnapshotStore interface and
// the standard errors shared by strand's storage backends and CLI.
package types
