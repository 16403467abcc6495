// Package template defines the engine contract used by template based
// renderers; gotemplate provides the pongo2 implementation.
package template
