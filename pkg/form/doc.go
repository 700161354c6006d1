// Package form wires the completion engine, the visible types cache, the
// diagnostics fetcher and the import table of a single open form. Each
// Instance owns its state; nothing is shared between forms.
package form
