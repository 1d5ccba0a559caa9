package document

import "github.com/cockroachdb/errors"

// Sentinel errors returned by the document layer. Callers match them with
// errors.Is.
var (
	ErrNotPDF           = errors.New("file is not a PDF")
	ErrFileTooLarge     = errors.New("file too large")
	ErrEmptyFile        = errors.New("file is empty")
	ErrNoText           = errors.New("no text layer")
	ErrOutsideDirectory = errors.New("path is outside the certificate directory")
)
