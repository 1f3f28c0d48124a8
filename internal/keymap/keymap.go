// Package keymap maps local file paths to remote object keys and back,
// given a declared destination prefix.
//
// A destination ending in "/" is treated as a directory prefix; anything
// else is a literal full key. The degenerate root marker "." maps to no
// object at all so placeholder "empty directory" objects are never created.
package keymap

import (
	"path"
	"strings"
)

// IsRoot reports whether a destination denotes the store root and therefore
// contributes no object.
func IsRoot(destPrefix string) bool {
	cleaned := path.Clean(strings.TrimSpace(destPrefix))
	return cleaned == "." || cleaned == "/"
}

// RemoteKey derives the object key for a local path under a destination prefix.
// It returns "" when the destination resolves to the root marker.
func RemoteKey(localPath, destPrefix string) string {
	localPath = normalize(localPath)

	if destPrefix == "" {
		return localPath
	}
	if IsRoot(destPrefix) {
		return ""
	}

	if strings.HasSuffix(destPrefix, "/") {
		// Directory destination. Collapse a duplicated prefix so a path
		// that already carries it is not doubled.
		if strings.HasPrefix(localPath, destPrefix) {
			return localPath
		}
		return destPrefix + localPath
	}

	// Literal full key, no directory semantics.
	return destPrefix
}

// LocalRelativePath derives the local-relative path for a remote key under a
// destination prefix. When stripping the prefix yields the empty string the
// destination was a scalar target and the key's base name is returned.
func LocalRelativePath(key, destPrefix string) string {
	rel := strings.TrimPrefix(key, destPrefix)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return path.Base(key)
	}
	return rel
}

// normalize converts a local path to slash form and strips a leading "./".
func normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return p
}
