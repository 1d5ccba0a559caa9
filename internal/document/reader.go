package document

import (
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/ledongthuc/pdf"
)

// DefaultMaxTextSize caps the text read from one file
const DefaultMaxTextSize = 4 * 1024 * 1024

// Reader pulls the plain text layer out of a PDF
type Reader struct {
	maxTextSize int
}

// NewReader creates a reader that stops after maxTextSize bytes of text
func NewReader(maxTextSize int) *Reader {
	if maxTextSize <= 0 {
		maxTextSize = DefaultMaxTextSize
	}
	return &Reader{maxTextSize: maxTextSize}
}

// ReadText returns the concatenated page text of path, pages separated by a
// blank line, and the page count seen by the text parser. Pages that fail to
// decode are skipped. A file without any text (a scan) yields ErrNoText.
func (r *Reader) ReadText(path string) (text string, pages int, err error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return "", 0, errors.Wrapf(err, "open PDF %s", path)
	}
	defer f.Close()

	// the parser panics on some malformed content streams
	defer func() {
		if rec := recover(); rec != nil {
			text, pages = "", 0
			err = errors.Newf("parse PDF %s: %v", path, rec)
		}
	}()

	pages = doc.NumPage()
	var b strings.Builder
	for n := 1; n <= pages; n++ {
		page := doc.Page(n)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if b.Len() > 0 && !appendLimited(&b, "\n\n", r.maxTextSize) {
			break
		}
		if !appendLimited(&b, content, r.maxTextSize) {
			break
		}
	}

	text = b.String()
	if strings.TrimSpace(text) == "" {
		return "", pages, errors.WithHint(
			errors.Wrapf(ErrNoText, "%s", path),
			"the file looks like a scan; OCR is not supported",
		)
	}
	return text, pages, nil
}

// appendLimited writes as much of s to b as fits in limit bytes, cutting on a
// rune boundary. It reports whether all of s was written.
func appendLimited(b *strings.Builder, s string, limit int) bool {
	remaining := limit - b.Len()
	if remaining <= 0 {
		return false
	}
	if len(s) <= remaining {
		b.WriteString(s)
		return true
	}
	cut := remaining
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	b.WriteString(s[:cut])
	return false
}
