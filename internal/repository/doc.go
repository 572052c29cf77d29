// Package repository keeps a local git checkout of the component library.
//
// A Manager clones the configured remote on first use and fetches updates
// afterwards, throttled by the sync ledger so restarts within the refresh
// interval reuse the existing checkout. With no remote URL the local path is
// used as-is. Clone and fetch are retried with exponential backoff.
package repository
