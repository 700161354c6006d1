// Package template defines the template engine contract renderers depend on.
// The pongo subpackage provides the pongo2-backed implementation.
package template
