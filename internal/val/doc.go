// Package val is the native value and type model that compiled scripts
// operate on. The compiler walks these objects to decide what to emit, and
// the runtime engine builds new instances of them at startup.
//
// Only the behavior needed to create and wire instances lives here.
package val
