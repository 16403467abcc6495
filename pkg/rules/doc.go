// Package rules supplies the country preprocessors and procedures templates
// consult while rendering: built-in Go rules for NL and US, and declarative
// YAML rule files compiled with expr.
package rules
