// Package core defines the shared domain records and contracts of the
// lesson-generation pipeline: the content document, concept graph, analysis
// report, game specifications, artifacts, the portal manifest and the error
// taxonomy. Canonical interfaces (Capability, ArtifactStore) live here to
// avoid dependency cycles and keep domain contracts central; implementation
// packages (capability adapters, stores, pipeline stages) depend inward on
// this package and never on each other's concrete types.
//
// All records are value objects: stages receive copies and hand immutable
// copies downstream. The only mutable pipeline-wide state is RunContext,
// whose sole mutator is the engine.
package core
