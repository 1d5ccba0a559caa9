package classify

import (
	"regexp"

	"github.com/a3tai/mcp-certidao-reader/internal/certidao"
)

// Rule weights
const (
	weightTitle   = 3.0 // issuer or certificate title
	weightKeyword = 1.0 // terms that also show up in other certificates
)

// Rule is one piece of evidence for a certificate kind. Keywords are matched
// against accent-folded, lower-cased text; Patterns run on the same text.
type Rule struct {
	Name     string
	Kind     certidao.Kind
	Keywords []string
	Patterns []*regexp.Regexp
	Weight   float64
}

func words(expr ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(expr))
	for i, w := range expr {
		out[i] = regexp.MustCompile(`\b` + w + `\b`)
	}
	return out
}

// DefaultRules returns the keyword rules for the supported certificates
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "receita_issuer",
			Kind: certidao.KindReceitaFederal,
			Keywords: []string{
				"receita federal",
				"situacao fiscal",
				"procuradoria-geral da fazenda nacional",
				"tributos federais",
			},
			Weight: weightTitle,
		},
		{
			Name:     "receita_terms",
			Kind:     certidao.KindReceitaFederal,
			Keywords: []string{"e-cac", "integra contador", "cp-patronal", "cp-terceiros", "cp-segur"},
			Patterns: words("pgfn", "sief", "rfb"),
			Weight:   weightKeyword,
		},
		{
			Name: "fgts_title",
			Kind: certidao.KindFGTS,
			Keywords: []string{
				"certificado de regularidade do fgts",
				"fundo de garantia",
			},
			Weight: weightTitle,
		},
		{
			Name:     "fgts_terms",
			Kind:     certidao.KindFGTS,
			Keywords: []string{"caixa economica federal"},
			Patterns: words("fgts", "crf"),
			Weight:   weightKeyword,
		},
		{
			Name: "sefaz_issuer",
			Kind: certidao.KindSEFAZ,
			Keywords: []string{
				"certidao de regularidade fiscal",
				"secretaria da fazenda",
				"secretaria de estado da fazenda",
				"extrato de debitos",
			},
			Weight: weightTitle,
		},
		{
			Name:     "sefaz_terms",
			Kind:     certidao.KindSEFAZ,
			Keywords: []string{"fronteira", "inscricao estadual"},
			Patterns: words("sefaz", "icms", "ipva"),
			Weight:   weightKeyword,
		},
	}
}
