package certidao

import (
	"regexp"
)

// PatternRule is one candidate way of locating a field value. Group selects
// the submatch handed to Normalize (0 is the whole match).
type PatternRule struct {
	Name      string
	Pattern   *regexp.Regexp
	Group     int
	Normalize Normalizer
}

// FieldRules lists the rules for one field in priority order: earlier rules
// target stricter layouts and win over later fallbacks regardless of where in
// the text each one matches.
type FieldRules struct {
	Field string
	Rules []PatternRule
}

// RuleTable maps each document kind to the rules for every field of its schema
type RuleTable map[Kind][]FieldRules

// Regular expression fragments shared by the rule tables
const (
	dateExpr = `(\d{1,2}\s*[/.\-]\s*\d{1,2}\s*[/.\-]\s*\d{2,4}|\d{1,2}º?\s+de\s+\pL+\.?\s+de\s+\d{4})`
	cnpjExpr = `([\d./\- \t]{14,40})`
	lineExpr = `[ \t]*(.+?)[ \t]*(?:\n|$)`

	// a phrase that denies what follows: "não possui", "não há", "sem"
	negationExpr = `\b(?:n[ãa]o\s+(?:possui|h[áa]|existem?|constam?)|sem)`
)

func rule(name, pattern string, group int, normalize Normalizer) PatternRule {
	return PatternRule{
		Name:      name,
		Pattern:   regexp.MustCompile(pattern),
		Group:     group,
		Normalize: normalize,
	}
}

func cnpjRules(withInscricao bool) FieldRules {
	rules := []PatternRule{
		rule("cnpj_label", `(?i)CNPJ(?:\s*/\s*CPF)?\s*(?:n[º°o]\.?)?\s*[:\-]?[ \t]*`+cnpjExpr, 1, NormalizeCNPJ),
	}
	if withInscricao {
		rules = append(rules,
			rule("cnpj_inscricao", `(?i)Inscri[çc][ãa]o(?:\s+CNPJ)?\s*:[ \t]*`+cnpjExpr, 1, NormalizeCNPJ))
	}
	rules = append(rules,
		rule("cnpj_bare", `(\d{2}\s*\.\s*\d{3}\s*\.\s*\d{3}\s*/\s*\d{4}\s*-\s*\d{2})`, 1, NormalizeCNPJ))
	return FieldRules{Field: FieldCNPJ, Rules: rules}
}

func receitaFederalRules() []FieldRules {
	return []FieldRules{
		cnpjRules(false),
		{
			Field: FieldRazaoSocial,
			Rules: []PatternRule{
				rule("razao_social_label", `(?i)Raz[ãa]o\s+Social\s*:`+`[ \t]*(.+?)[ \t]*(?:CNPJ|\n|$)`, 1, NormalizeText),
				rule("nome_empresarial_label", `(?i)Nome\s+Empresarial\s*:`+`[ \t]*(.+?)[ \t]*(?:CNPJ|\n|$)`, 1, NormalizeText),
				rule("contribuinte_label", `(?i)Contribuinte\s*:`+lineExpr, 1, NormalizeText),
			},
		},
		{
			Field: FieldDataConsulta,
			Rules: []PatternRule{
				rule("data_consulta_label", `(?i)Data\s+da\s+Consulta\s*:?\s*`+dateExpr, 1, NormalizeDate),
				rule("emitida_as_do_dia", `(?i)Emitid[ao]\s+às\s+[\d:]+\s+(?:horas?\s+)?do\s+dia\s+`+dateExpr, 1, NormalizeDate),
				rule("emitido_em", `(?i)Emitid[ao]\s+em\s*:?\s*`+dateExpr, 1, NormalizeDate),
			},
		},
		{
			Field: FieldSituacao,
			Rules: []PatternRule{
				rule("situacao_label", `(?i)Situa[çc][ãa]o(?:\s+Fiscal)?\s*:`+lineExpr, 1, NormalizeText),
				rule("debitos_constam",
					`(?i)((?:n[ãa]o\s+)?(?:constam?|possui|existem?|h[áa])\s+(?:d[ée]bitos?|pend[êe]ncias?))`,
					1, unlessNegated(constant(SituacaoComDebitos))),
				rule("situacao_devedor", `(?i)\b(DEVEDOR)\b`, 1, constant(SituacaoComDebitos)),
				rule("debitos_regular",
					`(?i)(n[ãa]o\s+(?:constam?|possui|existem?|h[áa])\s+(?:d[ée]bitos?|pend[êe]ncias?)|nada\s+consta|certid[ãa]o\s+negativa|situa[çc][ãa]o\s+regular)`,
					1, constant(SituacaoRegular)),
			},
		},
	}
}

func fgtsRules() []FieldRules {
	return []FieldRules{
		{
			Field: FieldDataConsulta,
			Rules: []PatternRule{
				rule("informacao_obtida_em", `(?i)Informa[çc][ãa]o\s+obtida\s+em\s*:?\s*`+dateExpr, 1, NormalizeDate),
				rule("data_consulta_label", `(?i)Data\s+da\s+Consulta\s*:?\s*`+dateExpr, 1, NormalizeDate),
				rule("emitido_em", `(?i)Emitid[ao]\s+em\s*:?\s*`+dateExpr, 1, NormalizeDate),
			},
		},
		{
			Field: FieldValidade,
			Rules: []PatternRule{
				rule("validade_periodo", `(?i)Validade\s*:?\s*`+dateExpr+`\s+(?:a|at[ée])\s+`+dateExpr, 2, NormalizeDate),
				rule("valida_ate", `(?i)V[áa]lid[ao]\s+at[ée]\s*:?\s*`+dateExpr, 1, NormalizeDate),
				rule("validade_label", `(?i)Validade\s*:?\s*`+dateExpr, 1, NormalizeDate),
			},
		},
		{
			Field: FieldSituacao,
			Rules: []PatternRule{
				rule("situacao_label", `(?i)Situa[çc][ãa]o(?:\s+atual)?\s*:`+lineExpr, 1, NormalizeText),
				rule("situacao_regular",
					`(?i)(encontra-se\s+em\s+situa[çc][ãa]o\s+regular|situa[çc][ãa]o\s+regular|`+negationExpr+`\s+pend[êe]ncias?)`,
					1, constant(SituacaoRegular)),
				rule("situacao_irregular",
					`(?i)((?:`+negationExpr+`\s+)?(?:situa[çc][ãa]o\s+irregular|\birregular|pend[êe]ncias?|em\s+atraso|n[ãa]o\s+recolhid[ao]))`,
					1, unlessNegated(constant(SituacaoIrregular))),
			},
		},
	}
}

func sefazRules() []FieldRules {
	return []FieldRules{
		cnpjRules(true),
		{
			Field: FieldDataConsulta,
			Rules: []PatternRule{
				rule("data_emissao", `(?i)Data\s+de\s+Emiss[ãa]o\s*:?\s*`+dateExpr, 1, NormalizeDate),
				rule("data_consulta_label", `(?i)Data\s+da\s+Consulta\s*:?\s*`+dateExpr, 1, NormalizeDate),
				rule("emitido_em", `(?i)Emitid[ao]\s+em\s*:?\s*`+dateExpr, 1, NormalizeDate),
				rule("valida_ate", `(?i)V[áa]lid[ao]\s+at[ée]\s*:?\s*`+dateExpr, 1, NormalizeDate),
			},
		},
		{
			Field: FieldDebitos,
			Rules: []PatternRule{
				rule("debito_competencia", `(?m)^.*(?:\d{2}\s*/\s*\d{4}.*\d,\d{2}|\d,\d{2}.*\d{2}\s*/\s*\d{4}).*$`, 0, NormalizeDebitRow),
				rule("debito_ipva", `(?im)^.*IPVA.*\b\d{4}\b.*\d,\d{2}.*$`, 0, NormalizeIPVARow),
			},
		},
	}
}

// DefaultRules returns a freshly built copy of the production rule table
func DefaultRules() RuleTable {
	return RuleTable{
		KindReceitaFederal: receitaFederalRules(),
		KindFGTS:           fgtsRules(),
		KindSEFAZ:          sefazRules(),
	}
}
