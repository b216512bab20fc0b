package identity

import (
	"path"
	"strings"
)

// NormalizePath converts a repository-relative path to the canonical form
// used in every key: forward slashes, cleaned, no leading "./" or "/".
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// FileKey identifies a file within a repository.
func FileKey(repo, relPath string) string {
	return repo + "|" + NormalizePath(relPath)
}

// ContentKey identifies the content entity of a file. The content stage
// registers with it and the code stage looks up with it.
func ContentKey(repo, relPath string) string {
	return repo + "|" + NormalizePath(relPath) + "#content"
}

// FrameworkKey identifies a framework by name, case-insensitively.
func FrameworkKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// PackageKey identifies a package by language and qualified name.
func PackageKey(language, name string) string {
	return strings.ToLower(language) + "|" + strings.TrimSpace(name)
}

// TypeKey identifies an unresolved type name within a repository.
func TypeKey(repo, name string) string {
	return repo + "|" + strings.TrimSpace(name)
}
