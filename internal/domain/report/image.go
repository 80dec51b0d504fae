package report

import "strings"

// imageMarker tags a base64 data URL embedded at the start of report text
// by the uploader. Whatever follows the data URL (OCR text, user notes) is
// kept as the textual part of the report.
const imageMarker = "[IMAGE]"

// ExtractImage splits an embedded image payload out of report text.
// Returns the data URL, the remaining text, and whether a marker was found.
func ExtractImage(reportText string) (string, string, bool) {
	s := strings.TrimSpace(reportText)
	if !strings.HasPrefix(s, imageMarker) {
		return "", reportText, false
	}
	s = strings.TrimPrefix(s, imageMarker)
	if !strings.HasPrefix(s, "data:") {
		return "", reportText, false
	}
	// data URLs contain no whitespace; the payload ends at the first one.
	end := strings.IndexFunc(s, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	if end < 0 {
		return s, "", true
	}
	return s[:end], strings.TrimSpace(s[end:]), true
}
