package descriptions

import "sort"

// Tool names
const (
	ToolExtractText = "certidao_extract_text"
	ToolExtractFile = "certidao_extract_file"
	ToolFillForm    = "certidao_fill_form"
	ToolKinds       = "certidao_kinds"
	ToolListFiles   = "certidao_list_files"
)

const (
	ExtractTextDescription = `Extract report fields from text already taken out of a tax compliance certificate.

**When to use:** The caller has the text layer of a Receita Federal, FGTS or SEFAZ certificate (copied, or read by another tool) and needs CNPJ, dates and situação as structured values.

**Why it's useful:** Every field of the document schema comes back either with a normalized value (CNPJ as NN.NNN.NNN/NNNN-NN, dates as DD/MM/YYYY) or explicitly marked as not found, with a warning saying why.

**Examples:**
• "Extract the FGTS fields from this CRF text" with kind=fgts
• "Which kind of certificate is this?" with kind omitted, the kind is detected from the text

**Best practices:** Pass the kind when it is known. Detection needs issuer keywords such as "Receita Federal" or "Certificado de Regularidade do FGTS".`

	ExtractFileDescription = `Read a certificate PDF from the certificate directory and extract its report fields.

**When to use:** A Receita Federal situação fiscal report, an FGTS CRF or a SEFAZ certificate/debit extract is available as a PDF with a text layer.

**Why it's useful:** Validates the file, reads its text layer and returns the same field/value result as certidao_extract_text, plus page count and, for SEFAZ, the overall standing (REGULAR, IRREGULAR or INDETERMINADO).

**Examples:**
• "Extract crf-acme.pdf as fgts"
• "Extract 2024/sefaz-acme.pdf" (kind detected)

**Best practices:** Paths are relative to the certificate directory; paths outside it are rejected. Scanned PDFs without text are reported as such, OCR is not performed.`

	FillFormDescription = `Extract several certificates and merge them into the flat payload that pre-fills the compliance report form.

**When to use:** Preparing a report for one company from its Receita Federal, FGTS and SEFAZ certificates.

**Why it's useful:** Applies the certificates in order (Receita, FGTS, SEFAZ), keeps the first value found for shared controls such as cnpj, omits controls nothing was found for so the form keeps its defaults, and checks the payload against the form schema. A file that fails is reported without aborting the others.

**Examples:**
• "Fill the form from rf.pdf, crf.pdf and sefaz.pdf"

**Best practices:** Any subset of the three paths may be given.`

	KindsDescription = `List the supported certificate kinds, the fields extracted for each and the form control every field fills.

**When to use:** Before extracting, to learn valid kind values and what a result will contain.`

	ListFilesDescription = `List certificate PDFs in the certificate directory, newest first.

**When to use:** To find which files can be passed to certidao_extract_file or certidao_fill_form.

**Examples:**
• "List certificates" or "List certificates matching acme"`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	ToolExtractText: ExtractTextDescription,
	ToolExtractFile: ExtractFileDescription,
	ToolFillForm:    FillFormDescription,
	ToolKinds:       KindsDescription,
	ToolListFiles:   ListFilesDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns every tool name in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
