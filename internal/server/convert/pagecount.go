package convert

import "regexp"

// Page objects carry /Type /Page; the page tree root carries /Type /Pages,
// which the negated class excludes.
var pageObjectPattern = regexp.MustCompile(`/Type\s*/Page([^s]|$)`)

// CountPDFPages counts page objects in a rendered PDF. Zero means the
// count could not be determined.
func CountPDFPages(pdf []byte) int {
	return len(pageObjectPattern.FindAll(pdf, -1))
}
