// Package metrics exposes prometheus collectors for the render pipeline and
// the template catalog.
package metrics
