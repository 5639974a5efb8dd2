// Package compiler turns a config.Model into a plan.Image.
//
// Every type, constant, attribute and init expression the model mentions
// is registered once in the descriptor pool for its kind. Registration is
// depth first, so a descriptor's dependencies always hold smaller cohorts
// by the time it commits. Record types are reserved before their fields
// are visited; a field whose type leads back to the record is a cycle
// edge that the runtime satisfies with a pre-init shell.
//
// Each registration also records its ordinary edges in a dag.Graph. When
// the image is built, cohorts are checked against that graph a second
// time before any instruction is encoded.
package compiler
