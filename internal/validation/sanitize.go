package validation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all markup from user text. Posts, comments and bios
// are stored as plain text: the entities the policy emits are decoded again,
// so "&" and "<" are kept as typed and clients escape when rendering.
func SanitizeText(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}
