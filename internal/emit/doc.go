// Package emit renders compiled descriptor pools as an HCL listing. The
// listing is what generated startup code would contain: one pool block per
// kind with the storage declaration, the pre-init shells and, per cohort,
// the ordered initializer statements.
package emit
