package document

import (
	"time"

	"github.com/a3tai/mcp-certidao-reader/internal/certidao"
	"github.com/a3tai/mcp-certidao-reader/internal/classify"
	"github.com/a3tai/mcp-certidao-reader/internal/form"
)

// Text is the text layer of a validated certificate file
type Text struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Info    Info   `json:"info"`
}

// Extraction is the outcome of extracting one certificate file
type Extraction struct {
	ID             string                    `json:"id"`
	Path           string                    `json:"path"`
	Info           Info                      `json:"info"`
	Kind           certidao.Kind             `json:"document_kind"`
	Classification *classify.Classification  `json:"classification,omitempty"` // set when the kind was detected
	Result         *certidao.Result          `json:"result"`
	Standing       *certidao.Standing        `json:"standing,omitempty"` // SEFAZ only
	Receita        *certidao.ReceitaAnalysis `json:"receita,omitempty"`  // Receita Federal only
	FGTS           *certidao.FGTSDetails     `json:"fgts,omitempty"`     // FGTS only
	ExtractedAt    time.Time                 `json:"extracted_at"`
}

// FileRequest names one file for ExtractAll. An empty Kind is detected.
type FileRequest struct {
	Path string
	Kind certidao.Kind
}

// Failure records a file ExtractAll could not process
type Failure struct {
	Path  string        `json:"path"`
	Kind  certidao.Kind `json:"document_kind,omitempty"`
	Error string        `json:"error"`
}

// Report is the merged outcome of several certificates
type Report struct {
	ID              string        `json:"id"`
	Extractions     []*Extraction `json:"extractions"`
	Failures        []Failure     `json:"failures"`
	Payload         form.Payload  `json:"payload"`
	ValidationError string        `json:"validation_error,omitempty"`
}
