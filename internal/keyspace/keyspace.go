// Package keyspace scopes bucket-relative keys beneath an optional root prefix.
package keyspace

import "strings"

// Join maps relative under root. Trailing slashes are kept: "docs/" is a
// listing prefix, not the object "docs".
func Join(root, relative string) string {
	root = strings.Trim(root, "/")
	relative = strings.TrimLeft(relative, "/")
	if root == "" {
		return relative
	}
	return root + "/" + relative
}

// Strip is the inverse of Join for keys returned by the store.
func Strip(root, full string) string {
	root = strings.Trim(root, "/")
	if root == "" {
		return full
	}
	return strings.TrimPrefix(full, root+"/")
}
