package document

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Info is what pdfcpu reports about a certificate file
type Info struct {
	Pages     int    `json:"pages"`
	Version   string `json:"pdf_version,omitempty"`
	Encrypted bool   `json:"encrypted"`
	Size      int64  `json:"size"`
}

// Validator checks certificate files before any text is read
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator that rejects files above maxFileSize bytes
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// CheckFile validates the file system facts of path: regular file, .pdf
// extension, non-empty and within the size limit.
func (v *Validator) CheckFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "file does not exist: %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot access file: %s", path)
	}

	if info.IsDir() {
		return nil, errors.Newf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return nil, errors.Wrapf(ErrNotPDF, "%s", path)
	}
	if info.Size() == 0 {
		return nil, errors.Wrapf(ErrEmptyFile, "%s", path)
	}
	if info.Size() > v.maxFileSize {
		return nil, errors.Wrapf(ErrFileTooLarge, "%d bytes (max: %d bytes)", info.Size(), v.maxFileSize)
	}
	return info, nil
}

// Inspect runs CheckFile and then parses the cross reference table with
// pdfcpu in relaxed mode, which is enough to reject truncated or non-PDF
// content and to learn the page count.
func (v *Validator) Inspect(path string) (*Info, error) {
	fi, err := v.CheckFile(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, ErrNotPDF), "read PDF structure of %s", path)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, errors.Wrapf(err, "count pages of %s", path)
	}

	info := &Info{
		Pages:     ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
		Size:      fi.Size(),
	}
	if ctx.HeaderVersion != nil {
		info.Version = ctx.HeaderVersion.String()
	}
	return info, nil
}
