// Package app wires the tool together: it builds the logger and registry,
// then runs manifests through loading, compilation, listing emission and,
// when asked, replay.
package app
