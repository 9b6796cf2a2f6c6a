// Package engine drives the pipeline stages in strict dependency order:
// ingest, analyze, plan, then per-spec synthesis and certification under a
// bounded worker pool, and finally a single portal assembly and write.
//
// The engine owns the partial-failure policy: fatal errors (analysis,
// planning, assembly) abort the run, while per-spec synthesis and
// validation failures are recorded as gaps and the remaining specs
// continue. A run only fails outright when zero artifacts certify.
package engine
