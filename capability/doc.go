// Package capability contains the prompt contracts for the two generation
// operations the pipeline consumes and a deterministic mock implementation
// for tests.
//
// The canonical Capability interface lives in the core package to avoid
// dependency cycles and keep domain contracts central. Provider packages
// like openai and anthropic adapt concrete SDK clients behind that
// interface so any provider can be swapped without touching pipeline logic.
package capability
