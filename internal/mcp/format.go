package mcp

import (
	"fmt"
	"strings"

	"github.com/a3tai/mcp-certidao-reader/internal/certidao"
	"github.com/a3tai/mcp-certidao-reader/internal/document"
)

func formatResult(result *certidao.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document kind: %s\n", result.Kind)
	fmt.Fprintf(&b, "Fields found: %d of %d\n\n", result.FoundCount(), len(result.Kind.Schema()))

	for _, name := range result.Kind.Schema() {
		field, _ := result.Get(name)
		switch {
		case !field.Found:
			fmt.Fprintf(&b, "%s: not found\n", name)
		case certidao.IsListField(name):
			fmt.Fprintf(&b, "%s: %d rows (rule %s)\n", name, len(field.Values), field.Rule)
			for _, row := range field.Values {
				fmt.Fprintf(&b, "  - %s\n", row)
			}
			fmt.Fprintf(&b, "  total: %s\n", certidao.FormatBRL(certidao.DebitTotal(field.Values)))
		default:
			fmt.Fprintf(&b, "%s: %s (rule %s)\n", name, field.Value, field.Rule)
		}
	}

	if len(result.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return b.String()
}

func formatExtraction(ex *document.Extraction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Extraction %s\n", ex.ID)
	fmt.Fprintf(&b, "File: %s\n", ex.Path)
	fmt.Fprintf(&b, "Pages: %d\n", ex.Info.Pages)
	if ex.Classification != nil {
		fmt.Fprintf(&b, "Detected kind: %s (confidence %.0f%%)\n", ex.Classification.Kind, ex.Classification.Confidence*100)
	}
	if ex.Standing != nil {
		fmt.Fprintf(&b, "Standing: %s (%s)\n", ex.Standing.Status, ex.Standing.Reason)
	}
	b.WriteString("\n")
	b.WriteString(formatResult(ex.Result))
	if ex.Receita != nil {
		b.WriteString(formatReceita(ex.Receita))
	}
	if ex.FGTS != nil {
		b.WriteString(formatFGTS(ex.FGTS))
	}
	return b.String()
}

func formatReceita(a *certidao.ReceitaAnalysis) string {
	var b strings.Builder
	if !a.HasDebts() {
		b.WriteString("\nNo open debts listed\n")
		return b.String()
	}
	fmt.Fprintf(&b, "\nOpen debts: %d\n", len(a.Debts))
	for _, d := range a.Debts {
		fmt.Fprintf(&b, "  - %s %s %s", d.Code, d.Period, certidao.FormatBRL(d.Amount))
		if d.Category != "" {
			fmt.Fprintf(&b, " [%s]", d.Category)
		}
		if d.Tax != "" {
			fmt.Fprintf(&b, " [%s]", d.Tax)
		}
		b.WriteString("\n")
	}
	if a.Contributions.Total > 0 {
		fmt.Fprintf(&b, "Contributions: seguro %s, patronal %s, terceiros %s, total %s\n",
			certidao.FormatBRL(a.Contributions.Seguro), certidao.FormatBRL(a.Contributions.Patronal),
			certidao.FormatBRL(a.Contributions.Terceiros), certidao.FormatBRL(a.Contributions.Total))
	}
	if a.Simples {
		b.WriteString("Simples Nacional: pending debts\n")
	}
	if a.Installment != nil {
		fmt.Fprintf(&b, "Simples Nacional installment plan: %s, %d overdue\n", a.Installment.Type, a.Installment.Overdue)
	}
	for _, i := range a.PGFN {
		fmt.Fprintf(&b, "PGFN inscription %s: %s (%s)\n", i.Number, i.Status, i.Kind)
	}
	if a.Sispar != nil {
		fmt.Fprintf(&b, "SISPAR installment plan: total %s, %d installments\n", certidao.FormatBRL(a.Sispar.Total), a.Sispar.Count)
	}
	return b.String()
}

func formatFGTS(d *certidao.FGTSDetails) string {
	var b strings.Builder
	if d.CertificationNumber != "" {
		fmt.Fprintf(&b, "\nCertification number: %s\n", d.CertificationNumber)
	}
	if len(d.OpenPeriods) > 0 {
		fmt.Fprintf(&b, "Open competências: %s\n", strings.Join(d.OpenPeriods, ", "))
	}
	return b.String()
}

func formatReport(report *document.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report %s\n", report.ID)
	fmt.Fprintf(&b, "Certificates extracted: %d, failed: %d\n", len(report.Extractions), len(report.Failures))

	for _, f := range report.Failures {
		fmt.Fprintf(&b, "  ✗ %s (%s): %s\n", f.Path, f.Kind, f.Error)
	}

	b.WriteString("\nForm payload:\n")
	if len(report.Payload) == 0 {
		b.WriteString("  (empty, every control keeps its default)\n")
	}
	for _, key := range report.Payload.Keys() {
		switch v := report.Payload[key].(type) {
		case []string:
			fmt.Fprintf(&b, "  %s:\n", key)
			for _, row := range v {
				fmt.Fprintf(&b, "    - %s\n", row)
			}
		default:
			fmt.Fprintf(&b, "  %s: %v\n", key, v)
		}
	}

	if report.ValidationError != "" {
		fmt.Fprintf(&b, "\n⚠️  Payload failed schema validation: %s\n", report.ValidationError)
	}
	return b.String()
}
