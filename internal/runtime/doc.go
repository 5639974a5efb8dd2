// Package runtime rebuilds the object graph described by a plan.Image.
//
// Each pool gets a storage array sized from the image. The Engine first
// installs pre-init shells for record types, then generates cohort 0, 1,
// and so on up to the image's maximum, visiting pools in plan.PoolOrder
// within each cohort. Reconstructors are looked up by tag and reach
// earlier objects only through the Manager, which fails with
// plan.ErrUnresolved when a slot has not been built yet. A well-formed
// image never triggers that; seeing it means cohorts were assigned wrong.
//
// After the last cohort, Finish checks that every slot was built and runs
// the aux registrations: globals, compiled bodies and event handlers,
// lambdas, built-in functions and the field and enum mappings.
package runtime
