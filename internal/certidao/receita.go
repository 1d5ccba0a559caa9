package certidao

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Contribution categories of Receita Federal debt rows
const (
	CategorySeguro    = "seguro"
	CategoryPatronal  = "patronal"
	CategoryTerceiros = "terceiros"
)

// Taxes tracked separately in Receita Federal debt rows
const (
	TaxIRRF   = "IRRF"
	TaxIRLS   = "IRLS"
	TaxPIS    = "PIS"
	TaxCOFINS = "COFINS"
)

// PGFN inscription kinds
const (
	PGFNPrevidenciario  = "previdenciario"
	PGFNSimplesNacional = "simples_nacional"
)

var (
	contributionCodes = map[string][]string{
		CategorySeguro:    {"1082-01", "1099-01"},
		CategoryPatronal:  {"1138-01", "1646-01"},
		CategoryTerceiros: {"1170-01", "1176-01", "1191-01", "1196-01", "1200-01"},
	}
	contributionTerms = map[string][]string{
		CategorySeguro:    {"CP-SEGUR", "CP SEGUR", "CONTR. SEGURADOS", "SEGURADOS"},
		CategoryPatronal:  {"CP-PATRONAL", "CP PATRONAL"},
		CategoryTerceiros: {"CP-TERCEIROS", "CP TERCEIROS"},
	}
	contributionOrder = []string{CategorySeguro, CategoryPatronal, CategoryTerceiros}

	taxCodePrefixes = map[string][]string{
		TaxIRRF:   {"0561"},
		TaxPIS:    {"8109", "0810"},
		TaxCOFINS: {"2172", "4493"},
	}
	taxOrder = []string{TaxIRRF, TaxIRLS, TaxPIS, TaxCOFINS}
	taxWords = map[string]*regexp.Regexp{
		TaxIRRF:   regexp.MustCompile(`\bIRRF\b`),
		TaxIRLS:   regexp.MustCompile(`\bIRLS\b`),
		TaxPIS:    regexp.MustCompile(`\bPIS\b`),
		TaxCOFINS: regexp.MustCompile(`\bCOFINS\b`),
	}

	receitaCodeRe           = regexp.MustCompile(`(?:^|[^\d/.,])(\d{4}(?:-\d{2})?)(?:[^\d/.,]|$)`)
	devedorRe               = regexp.MustCompile(`\b(?:DEVEDOR|ATIVA)\b`)
	overdueRe               = regexp.MustCompile(`(?i)parcelas\s+em\s+atraso[^\d\n]*(\d+)`)
	simplesInstallmentTerms = []string{"parcsn", "parcmei", "simples nacional - em parcelamento", "pendencia - parcelamento"}
	pgfnRe                  = regexp.MustCompile(`(?i)(\d{2}\.\d\.\d{2}\.\d{6}-\d{2})[^\n]*?(ATIVA\s+AJUIZADA|ATIVA\s+EM\s+COBRAN[ÇC]A|ATIVA\s+A\s+SER\s+AJUIZADA|ATIVA\s+A\s+SER\s+COBRADA)`)

	sisparRe       = regexp.MustCompile(`(?i)SISPAR`)
	sisparTotalRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:valor\s+total|valor\s+consolidado|valor\s+do\s+parcelamento|total)[:\s]*(?:R\$)?\s*(\d[\d.]*,\d{2})`),
		regexp.MustCompile(`(?i)SISPAR.*?R\$\s*(\d[\d.]*,\d{2})`),
	}
	sisparCountRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:quantidade|qtde?|n[úu]mero)\s*(?:de\s*)?parcelas?[:\s]*(\d+)`),
		regexp.MustCompile(`(?i)em\s+(\d+)\s+parcelas?`),
		regexp.MustCompile(`(?i)\b(\d+)\s*(?:parcelas?|presta[çc][õo]es)`),
	}
	sisparInstallmentRe = regexp.MustCompile(`(?i)(?:valor\s+da\s+parcela|parcela\s+de)[:\s]*(?:R\$)?\s*(\d[\d.]*,\d{2})`)
)

// ReceitaDebt is one open debt row of a Receita Federal situação fiscal report
type ReceitaDebt struct {
	Code            string  `json:"codigo"`
	Period          string  `json:"competencia,omitempty"` // MM/YYYY
	Amount          float64 `json:"valor"`
	Category        string  `json:"categoria,omitempty"`
	Tax             string  `json:"tributo,omitempty"`
	SimplesNacional bool    `json:"simples_nacional,omitempty"`
	Description     string  `json:"descricao"`
}

// Contributions sums the social security contribution debts per category
type Contributions struct {
	Seguro    float64 `json:"seguro_total"`
	Patronal  float64 `json:"patronal_total"`
	Terceiros float64 `json:"terceiros_total"`
	Total     float64 `json:"total_geral"`
}

// Installment describes a Simples Nacional installment plan
type Installment struct {
	Type    string `json:"tipo,omitempty"` // PARCSN or PARCMEI
	Overdue int    `json:"parcelas_atraso,omitempty"`
}

// PGFNInscription is a debt registered in the federal active debt roll
type PGFNInscription struct {
	Number string `json:"inscricao"`
	Status string `json:"situacao"`
	Kind   string `json:"tipo"`
}

// Sispar describes a PGFN installment plan negotiated in SISPAR. Zero values
// mean the figure was not printed near the SISPAR mention.
type Sispar struct {
	Total       float64 `json:"valor_total,omitempty"`
	Count       int     `json:"quantidade_parcelas,omitempty"`
	Installment float64 `json:"valor_parcela,omitempty"`
	Period      string  `json:"competencia,omitempty"`
}

// ReceitaAnalysis is the debt picture of a Receita Federal report. It sits
// beside the fixed field schema and is produced by ReceitaDebts.
type ReceitaAnalysis struct {
	Debts         []ReceitaDebt      `json:"debitos"`
	Contributions Contributions      `json:"contribuicoes"`
	Taxes         map[string]float64 `json:"tributos,omitempty"`
	Simples       bool               `json:"simples_nacional_pendente"`
	Installment   *Installment       `json:"simples_nacional_parcelamento,omitempty"`
	PGFN          []PGFNInscription  `json:"pgfn,omitempty"`
	Sispar        *Sispar            `json:"sispar,omitempty"`
}

// HasDebts reports whether any open debt, PGFN inscription or installment
// plan was found
func (a ReceitaAnalysis) HasDebts() bool {
	return len(a.Debts) > 0 || len(a.PGFN) > 0 || a.Installment != nil || a.Sispar != nil
}

// ReceitaDebts reads the debt listing of a Receita Federal situação fiscal
// report. Debt rows are lines carrying a revenue code, an amount and the
// DEVEDOR (or PGFN ATIVA) status; the amount is the last one on the line,
// the consolidated balance column.
func ReceitaDebts(text string) ReceitaAnalysis {
	var a ReceitaAnalysis
	for _, line := range strings.Split(text, "\n") {
		debt, ok := parseReceitaLine(line)
		if !ok {
			continue
		}
		a.Debts = append(a.Debts, debt)

		switch debt.Category {
		case CategorySeguro:
			a.Contributions.Seguro += debt.Amount
		case CategoryPatronal:
			a.Contributions.Patronal += debt.Amount
		case CategoryTerceiros:
			a.Contributions.Terceiros += debt.Amount
		}
		if debt.Tax != "" {
			if a.Taxes == nil {
				a.Taxes = make(map[string]float64)
			}
			a.Taxes[debt.Tax] += debt.Amount
		}
		if debt.SimplesNacional {
			a.Simples = true
		}
	}
	a.Contributions.Total = a.Contributions.Seguro + a.Contributions.Patronal + a.Contributions.Terceiros

	folded := Fold(text)
	a.Installment = simplesInstallment(text, folded)
	a.PGFN = pgfnInscriptions(text)
	a.Sispar = sisparPlan(text)
	return a
}

func parseReceitaLine(line string) (ReceitaDebt, bool) {
	upper := strings.ToUpper(Fold(line))
	if !devedorRe.MatchString(upper) {
		return ReceitaDebt{}, false
	}
	m := receitaCodeRe.FindStringSubmatch(line)
	if m == nil {
		return ReceitaDebt{}, false
	}
	amounts := amountRe.FindAllStringSubmatch(line, -1)
	if len(amounts) == 0 {
		return ReceitaDebt{}, false
	}
	amount, ok := ParseBRL(amounts[len(amounts)-1][1])
	if !ok || amount <= 0 {
		return ReceitaDebt{}, false
	}

	d := ReceitaDebt{
		Code:            m[1],
		Amount:          amount,
		SimplesNacional: strings.Contains(upper, "SIMPLES NAC"),
		Description:     strings.TrimSpace(whitespaceRe.ReplaceAllString(line, " ")),
	}
	if p := periodRe.FindStringSubmatch(line); p != nil && p[1] >= "01" && p[1] <= "12" {
		d.Period = p[1] + "/" + p[2]
	}
	d.Category = contributionCategory(upper, d.Code)
	d.Tax = taxOf(upper, d.Code)
	return d, true
}

func contributionCategory(upper, code string) string {
	for _, cat := range contributionOrder {
		if slices.Contains(contributionCodes[cat], code) {
			return cat
		}
		for _, term := range contributionTerms[cat] {
			if strings.Contains(upper, term) {
				return cat
			}
		}
	}
	return ""
}

func taxOf(upper, code string) string {
	for _, tax := range taxOrder {
		for _, prefix := range taxCodePrefixes[tax] {
			if strings.HasPrefix(code, prefix) {
				return tax
			}
		}
		if taxWords[tax].MatchString(upper) {
			return tax
		}
	}
	return ""
}

func simplesInstallment(text, folded string) *Installment {
	found := false
	for _, term := range simplesInstallmentTerms {
		if strings.Contains(folded, term) {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	inst := &Installment{}
	switch {
	case strings.Contains(folded, "parcsn"):
		inst.Type = "PARCSN"
	case strings.Contains(folded, "parcmei"):
		inst.Type = "PARCMEI"
	}
	if m := overdueRe.FindStringSubmatch(text); m != nil {
		inst.Overdue, _ = strconv.Atoi(m[1])
	}
	return inst
}

func pgfnInscriptions(text string) []PGFNInscription {
	var out []PGFNInscription
	for _, m := range pgfnRe.FindAllStringSubmatchIndex(text, -1) {
		around := strings.ToLower(text[runeFloor(text, m[0]-100):runeFloor(text, min(len(text), m[1]+100))])
		kind := PGFNPrevidenciario
		if strings.Contains(around, "1507") || strings.Contains(around, "simples") {
			kind = PGFNSimplesNacional
		}
		out = append(out, PGFNInscription{
			Number: text[m[2]:m[3]],
			Status: strings.ToUpper(whitespaceRe.ReplaceAllString(text[m[4]:m[5]], " ")),
			Kind:   kind,
		})
	}
	return out
}

func sisparPlan(text string) *Sispar {
	flat := whitespaceRe.ReplaceAllString(text, " ")
	loc := sisparRe.FindStringIndex(flat)
	if loc == nil {
		return nil
	}
	window := flat[runeFloor(flat, loc[0]-250):runeFloor(flat, min(len(flat), loc[1]+500))]

	s := &Sispar{}
	for _, re := range sisparTotalRes {
		if m := re.FindStringSubmatch(window); m != nil {
			if v, ok := ParseBRL(m[1]); ok && v > 0 {
				s.Total = v
				break
			}
		}
	}
	for _, re := range sisparCountRes {
		if m := re.FindStringSubmatch(window); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				s.Count = n
				break
			}
		}
	}
	switch {
	case s.Total > 0 && s.Count > 0:
		s.Installment = s.Total / float64(s.Count)
	default:
		if m := sisparInstallmentRe.FindStringSubmatch(window); m != nil {
			s.Installment, _ = ParseBRL(m[1])
		}
	}
	if p := periodRe.FindStringSubmatch(window); p != nil && p[1] >= "01" && p[1] <= "12" {
		s.Period = p[1] + "/" + p[2]
	}
	return s
}

// runeFloor clamps i into s and moves it back to the start of a rune
func runeFloor(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
