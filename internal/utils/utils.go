package utils

import "regexp"

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// RemoveHTMLTags strips markup from user-supplied names before they are
// interpolated into HTML-mode bot messages.
func RemoveHTMLTags(s string) string {
	return htmlTagRe.ReplaceAllString(s, "")
}
