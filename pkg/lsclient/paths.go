package lsclient

import (
	"strings"

	"go.lsp.dev/uri"
)

// NormalizePath converts file:// URIs sent by editor hosts into plain file
// paths. Other values are returned unchanged.
func NormalizePath(path string) string {
	if !strings.HasPrefix(path, uri.FileScheme+"://") {
		return path
	}
	return uri.URI(path).Filename()
}

// FileURI returns the file:// URI of path.
func FileURI(path string) uri.URI {
	return uri.File(NormalizePath(path))
}
