// Package address holds the element values of one delivery point. Lookups fall
// back from a sub-type code to its element code, and an element counts as
// populated as soon as its key is present.
package address
