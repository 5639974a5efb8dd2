// Package config defines the format-agnostic manifest model consumed by
// the compiler, along with the Loader interface that produces it.
//
// The model stands in for the script front end: it carries fully resolved
// val types and values, in declaration order. Concrete loaders, such as
// the HCL one, live in separate packages.
package config
