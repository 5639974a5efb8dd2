// Package registry provides the central "glue" between compiled images and
// native Go code.
//
// The Registry stores mappings between the names an image refers to (body
// function names, init expression wrappers, lambdas, built-in functions)
// and the Go functions that implement them. Modules populate it at
// process start.
//
// Before an image is replayed, ValidateImage checks that every name it
// will ask for resolves, so a missing implementation is reported as one
// list instead of as the first failure in the middle of startup.
package registry
