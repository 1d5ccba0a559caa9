package certidao

import (
	"regexp"
	"strings"
)

// Situação values produced by the keyword rules
const (
	SituacaoRegular       = "REGULAR"
	SituacaoIrregular     = "IRREGULAR"
	SituacaoComDebitos    = "COM DÉBITOS / PENDÊNCIAS"
	SituacaoIndeterminado = "INDETERMINADO"
)

// Standing is the overall fiscal standing inferred from a SEFAZ certificate
type Standing struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Terms are accent-folded; the text is folded before comparison.
var (
	sefazIrregularTerms = []string{
		"irregularidade", "irregular",
		"debitos pendentes", "debito pendente",
		"consta debito", "ha debito",
		"em atraso", "pendencias",
	}
	sefazRegularTerms = []string{
		"situacao regular", "regularidade",
		"nada consta", "sem pendencias",
		"certidao negativa",
	}
	// denials such as "não existem débitos pendentes" or "sem pendências";
	// they are removed before looking for irregularities and count as
	// evidence of regularity
	sefazNegatedRe = regexp.MustCompile(
		`\b(?:nao\s+(?:ha|possui|existem?|constam?)|sem)\s+(?:(?:debitos?|pendencias?|irregularidades?)(?:\s+(?:pendentes?|em\s+atraso|em\s+aberto))?)`)
)

// SefazStanding classifies a SEFAZ text as IRREGULAR, REGULAR or
// INDETERMINADO. Evidence of irregularity outranks evidence of regularity.
func SefazStanding(raw string) Standing {
	text := Fold(whitespaceRe.ReplaceAllString(raw, " "))

	positive := sefazNegatedRe.ReplaceAllString(text, " ")
	for _, term := range sefazIrregularTerms {
		if strings.Contains(positive, term) {
			return Standing{Status: SituacaoIrregular, Reason: "document reports irregularities or pending debts"}
		}
	}
	for _, term := range sefazRegularTerms {
		if strings.Contains(text, term) {
			return Standing{Status: SituacaoRegular, Reason: "document states regular standing"}
		}
	}
	if positive != text {
		return Standing{Status: SituacaoRegular, Reason: "document denies pending debts"}
	}
	return Standing{Status: SituacaoIndeterminado, Reason: "text does not match any known standing pattern"}
}

var standingSeverity = map[string]int{
	SituacaoIndeterminado: 1,
	SituacaoRegular:       2,
	SituacaoIrregular:     3,
}

// MoreSevere reports whether standing status a outranks b:
// IRREGULAR > REGULAR > INDETERMINADO > anything else.
func MoreSevere(a, b string) bool {
	return standingSeverity[a] > standingSeverity[b]
}
