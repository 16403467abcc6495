// Package rendition turns a template and address data into address lines.
//
// Each selected line becomes a subtree of an arena Tree:
// line → component → element → {value, separator}. The line text is the
// depth-first concatenation of the value and separator nodes, without a
// trailing separator.
package rendition
