// Package document turns certificate PDFs on disk into extraction results.
// It owns the file handling around the pure certidao extractor: sandboxing,
// validation, text extraction, kind detection and merging into the report
// form payload.
package document

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-certidao-reader/internal/certidao"
	"github.com/a3tai/mcp-certidao-reader/internal/classify"
	"github.com/a3tai/mcp-certidao-reader/internal/form"
)

// Service handles certificate file operations
type Service struct {
	sandbox    *Sandbox
	validator  *Validator
	reader     *Reader
	extractor  *certidao.Extractor
	classifier *classify.Classifier
	logger     *zap.SugaredLogger
}

// NewService creates a service confined to directory
func NewService(maxFileSize int64, directory string, logger *zap.SugaredLogger) (*Service, error) {
	sandbox, err := NewSandbox(directory)
	if err != nil {
		return nil, errors.Wrap(err, "create sandbox")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Service{
		sandbox:    sandbox,
		validator:  NewValidator(maxFileSize),
		reader:     NewReader(DefaultMaxTextSize),
		extractor:  certidao.NewExtractor(),
		classifier: classify.New(),
		logger:     logger,
	}, nil
}

// Directory returns the sandbox root
func (s *Service) Directory() string {
	return s.sandbox.Root()
}

// ReadText validates path and returns its text layer
func (s *Service) ReadText(ctx context.Context, path string) (*Text, error) {
	abs, err := s.sandbox.Resolve(path)
	if err != nil {
		return nil, errors.Wrap(err, "security validation failed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.validator.Inspect(abs)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, pages, err := s.reader.ReadText(abs)
	if err != nil {
		return nil, err
	}
	if pages > 0 && info.Pages == 0 {
		info.Pages = pages
	}

	return &Text{Path: abs, Content: text, Info: *info}, nil
}

// ExtractText classifies text when kind is empty and runs the extractor
func (s *Service) ExtractText(ctx context.Context, text string, kind certidao.Kind) (*certidao.Result, *classify.Classification, error) {
	var guess *classify.Classification
	if kind == "" {
		var err error
		guess, err = s.classifier.Classify(ctx, text)
		if err != nil {
			return nil, guess, errors.Wrap(err, "detect document kind")
		}
		kind = guess.Kind
	}

	result, err := s.extractor.Extract(text, kind)
	if err != nil {
		return nil, guess, err
	}
	return result, guess, nil
}

// ExtractFile reads the certificate at path and extracts the fields of kind.
// An empty kind is detected from the text.
func (s *Service) ExtractFile(ctx context.Context, path string, kind certidao.Kind) (*Extraction, error) {
	if kind != "" && !kind.Valid() {
		return nil, errors.Wrapf(certidao.ErrUnknownKind, "%q", string(kind))
	}

	start := time.Now()
	text, err := s.ReadText(ctx, path)
	if err != nil {
		return nil, err
	}

	result, guess, err := s.ExtractText(ctx, text.Content, kind)
	if err != nil {
		return nil, errors.Wrapf(err, "extract %s", text.Path)
	}

	ex := &Extraction{
		ID:             uuid.NewString(),
		Path:           text.Path,
		Info:           text.Info,
		Kind:           result.Kind,
		Classification: guess,
		Result:         result,
		ExtractedAt:    time.Now().UTC(),
	}
	switch result.Kind {
	case certidao.KindSEFAZ:
		standing := certidao.SefazStanding(text.Content)
		ex.Standing = &standing
	case certidao.KindReceitaFederal:
		analysis := certidao.ReceitaDebts(text.Content)
		ex.Receita = &analysis
	case certidao.KindFGTS:
		details := certidao.FGTSInfo(text.Content)
		ex.FGTS = &details
	}

	s.logger.Infow("certificate extracted",
		"id", ex.ID,
		"path", ex.Path,
		"kind", ex.Kind,
		"pages", ex.Info.Pages,
		"found", result.FoundCount(),
		"missing", result.Missing(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	for _, w := range result.Warnings {
		s.logger.Debugw("extraction warning", "id", ex.ID, "warning", w)
	}

	return ex, nil
}

// ExtractAll extracts every file in order and merges the results into a form
// payload. A file that fails is logged and recorded in Failures; the
// remaining files are still processed. Only context cancellation aborts.
func (s *Service) ExtractAll(ctx context.Context, files []FileRequest) (*Report, error) {
	report := &Report{
		ID:          uuid.NewString(),
		Extractions: []*Extraction{},
		Failures:    []Failure{},
	}

	results := make([]*certidao.Result, 0, len(files))
	for _, req := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ex, err := s.ExtractFile(ctx, req.Path, req.Kind)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warnw("certificate skipped",
				"report", report.ID,
				"path", req.Path,
				"kind", req.Kind,
				"error", err,
			)
			report.Failures = append(report.Failures, Failure{Path: req.Path, Kind: req.Kind, Error: err.Error()})
			continue
		}
		report.Extractions = append(report.Extractions, ex)
		results = append(results, ex.Result)
	}

	report.Payload = form.Merge(results...)
	for _, ex := range report.Extractions {
		switch {
		case ex.Standing != nil:
			report.Payload.SetStanding(ex.Standing.Status)
		case ex.Receita != nil:
			report.Payload.MergeReceita(*ex.Receita)
		case ex.FGTS != nil:
			report.Payload.MergeFGTS(*ex.FGTS)
		}
	}
	if err := form.Validate(report.Payload); err != nil {
		// the payload is still returned so the form can show what was read
		s.logger.Warnw("form payload failed validation", "report", report.ID, "error", err)
		report.ValidationError = err.Error()
	}

	s.logger.Infow("report assembled",
		"report", report.ID,
		"files", len(files),
		"extracted", len(report.Extractions),
		"failed", len(report.Failures),
		"controls", report.Payload.Keys(),
	)
	return report, nil
}
