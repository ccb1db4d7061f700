package xdm

import (
	"strings"

	"github.com/xdmtree/xdmtree/xdmerr"
)

// Name is a QName as callers pass it to insert/rename operations, before
// interning resolves it to (PrefixKey, LocalNameKey, URIKey).
type Name struct {
	Prefix string
	Local  string
	URI    string
}

// String renders prefix:local the way error messages and path-summary keys
// want it.
func (n Name) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// Validate enforces name well-formedness: the local name and any non-empty
// prefix must be NCName-shaped identifiers (no leading digit, no colon, no
// whitespace); a missing local name is always an error, an empty prefix is
// allowed.
func (n Name) Validate() error {
	if n.Local == "" {
		return xdmerr.New(xdmerr.Usage, "xdm: empty local name")
	}
	if err := validateNCName(n.Local); err != nil {
		return xdmerr.Wrap(xdmerr.Usage, err, "xdm: invalid local name %q", n.Local)
	}
	if n.Prefix != "" {
		if err := validateNCName(n.Prefix); err != nil {
			return xdmerr.Wrap(xdmerr.Usage, err, "xdm: invalid prefix %q", n.Prefix)
		}
	}
	return nil
}

func validateNCName(s string) error {
	if s == "" {
		return xdmerr.New(xdmerr.Usage, "xdm: empty NCName component")
	}
	if strings.ContainsAny(s, ":/<>&\"' \t\r\n") {
		return xdmerr.New(xdmerr.Usage, "xdm: %q contains characters not allowed in an NCName", s)
	}
	c := s[0]
	if c >= '0' && c <= '9' {
		return xdmerr.New(xdmerr.Usage, "xdm: %q starts with a digit", s)
	}
	return nil
}

// SameQName reports whether two elements share (prefix,local) as required
// when checking attribute/namespace uniqueness.
func SameQName(a, b Name) bool {
	return a.Prefix == b.Prefix && a.Local == b.Local
}
