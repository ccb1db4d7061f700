package xdm

import (
	"strings"

	"github.com/xdmtree/xdmtree/xdmerr"
)

// ValidateCommentContent enforces XML comment well-formedness: a comment
// value must not contain "--" and must not end in "-" (both would make
// the serialized "<!--...-->" form ambiguous).
func ValidateCommentContent(value string) error {
	if strings.Contains(value, "--") {
		return xdmerr.New(xdmerr.Usage, "xdm: comment value must not contain '--'")
	}
	if strings.HasSuffix(value, "-") {
		return xdmerr.New(xdmerr.Usage, "xdm: comment value must not end in '-'")
	}
	return nil
}

// ValidatePIContent enforces processing-instruction well-formedness: PI
// content must not contain "?>-" (the sequence that would prematurely
// close the processing instruction).
func ValidatePIContent(content string) error {
	if strings.Contains(content, "?>-") {
		return xdmerr.New(xdmerr.Usage, "xdm: PI content must not contain '?>-'")
	}
	return nil
}
