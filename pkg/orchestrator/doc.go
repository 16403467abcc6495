// Package orchestrator wires the catalog → address data → rendition →
// renderer pipeline, providing dependency injection friendly helpers for
// consumers that prefer a single entry point.
package orchestrator
