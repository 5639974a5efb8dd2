// Package dag records the ordinary (non-cyclic) dependency edges between
// descriptors so the compiler can check its cohort numbering against an
// independent computation before emitting anything.
//
// Cycle edges that are broken by a pre-init shell are never added here;
// a cycle in this graph is therefore always a defect.
package dag
