// Package store contains concrete implementations of core.ArtifactStore.
//
// The canonical ArtifactStore interface lives in the core package to avoid
// dependency cycles and keep domain contracts central. Implementation
// packages like this one provide storage backends that can be swapped
// without touching calling code.
//
// The in-memory store is the run-scoped scratch space between certification
// and the single portal write; it is not a persistence layer.
package store
