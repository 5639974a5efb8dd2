// Package descriptor is the compile-side registry. Each object the
// generated program needs at startup is described by a Descriptor and
// registered in the Pool for its kind, which assigns it a dense offset and
// files it under its initialization cohort.
//
// A descriptor's cohort is one more than the largest cohort among its
// dependencies, or 0 if it has none. The exception is a dependency on a
// record type that is reserved but not yet committed: that edge is part of
// a cycle and is satisfied by the record's pre-init shell instead.
package descriptor
