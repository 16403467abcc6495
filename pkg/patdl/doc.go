// Package patdl parses Postal Address Template Description Language documents
// into an immutable Template and evaluates their trigger conditions.
//
// A template declares control characters, lineSelect blocks and lineData
// definitions. Each lineSelect block is split into trigger groups: one or more
// conditions followed by the lines they select. A group holds when every one
// of its conditions holds:
//
//   - defaultCase always holds.
//   - isPopulated holds when at least one codeset has every element populated.
//   - isNotPopulated holds when at least one codeset has no element populated.
//   - hasValue compares an element value to a literal, exactly.
//   - hasResult compares the result of a country procedure to a literal.
//
// Country preprocessors and procedures come from a Config built once with
// NewConfig and shared, read-only, by every template that uses it.
package patdl
