package constants

import "strings"

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeHTML = "text/html"
)

// PDFMagic is the leading marker of every PDF document.
var PDFMagic = []byte("%PDF")

// HasPDFMagic reports whether b starts with the PDF marker.
func HasPDFMagic(b []byte) bool {
	return len(b) >= len(PDFMagic) && string(b[:len(PDFMagic)]) == string(PDFMagic)
}

// NormalizeContentType lowercases a Content-Type header and drops its parameters.
func NormalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
