package config

import (
	"path"
	"strings"
)

// NormalizePrefix cleans the optional root prefix every key is scoped beneath:
// backslashes become slashes, repeated and surrounding slashes are dropped.
func NormalizePrefix(prefix string) string {
	prefix = strings.ReplaceAll(prefix, "\\", "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	cleaned := path.Clean(prefix)
	if cleaned == "." {
		return ""
	}
	return cleaned
}
