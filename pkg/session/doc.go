// Package session provides the concurrency-safe keyed access layer over
// a SessionStore. One walk per session at a time: the manager serializes
// read-modify-write cycles with per-key in-process locks, optionally
// backed by a distributed locker for multi-instance deployments.
package session
