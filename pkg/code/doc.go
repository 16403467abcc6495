// Package code models S42 element identifiers ("U40.13", "40.21-1-1") and the
// conceptual hierarchy that declares default sub-types for an element. Codes
// are comparable values and can key maps directly.
package code
