package identity

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// MaxNameSegment bounds the length of a sanitized name inside a URI.
const MaxNameSegment = 120

// URIs mints entity IRIs under a base namespace.
type URIs struct {
	Base string
}

// NewURIs returns a minter for base. A trailing slash is added if missing.
func NewURIs(base string) URIs {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return URIs{Base: base}
}

func (u URIs) Repository(repo string) string { return u.Base + "repository/" + url.PathEscape(repo) }
func (u URIs) File(id string) string         { return u.Base + "file/" + id }
func (u URIs) Content(id string) string      { return u.Base + "content/" + id }
func (u URIs) Framework(id string) string    { return u.Base + "framework/" + id }
func (u URIs) Package(id string) string      { return u.Base + "package/" + id }
func (u URIs) Type(id string) string         { return u.Base + "type/" + id }

// Construct mints the IRI of a construct scoped under its file URI. A
// positive line is appended as "@L<line>" to keep constructs that share a
// name (call sites, comments) apart.
func Construct(fileURI, kind, qualifiedName string, line int) string {
	name := qualifiedName
	if line > 0 {
		name += "@L" + strconv.Itoa(line)
	}
	return fileURI + "/" + kind + "/" + Sanitize(name)
}

// QualifiedName joins a construct name with its parent.
func QualifiedName(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// Sanitize escapes a name for use as a URI path segment. Long names are cut
// and suffixed with a hash of the full name so they stay distinct.
func Sanitize(name string) string {
	escaped := url.PathEscape(name)
	if len(escaped) <= MaxNameSegment {
		return escaped
	}
	sum := strconv.FormatUint(xxh3.HashString(name), 16)
	cut := MaxNameSegment - len(sum) - 1
	// Do not split a percent-escape.
	if i := strings.LastIndexByte(escaped[:cut], '%'); i >= 0 && i > cut-3 {
		cut = i
	}
	return escaped[:cut] + "~" + sum
}
