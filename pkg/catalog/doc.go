// Package catalog resolves (country, S42 version, PATDL version) keys to
// parsed templates. Template files follow the naming scheme
// S42-{standard}-{country}-PATDL.v.{layout}.xml and are read through a
// Loader, cached in memory, discovered with doublestar patterns and, for
// on-disk catalogs, invalidated by an fsnotify watcher.
package catalog
