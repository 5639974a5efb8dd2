// Package plan holds the contract shared by the compiler and the runtime
// engine: kind tags, cross-references, side tables and the cohort-ordered
// pool images. Offsets and cohorts recorded in an Image are assigned by the
// compiler and replayed exactly by the runtime.
package plan
