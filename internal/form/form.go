// Package form merges extraction results into the flat payload that
// pre-fills the compliance report form.
package form

import (
	"maps"
	"slices"

	"github.com/a3tai/mcp-certidao-reader/internal/certidao"
)

// Form control names
const (
	KeyCNPJ              = "cnpj"
	KeyRequerente        = "requerente"
	KeyDataConsultaRF    = "data_consulta_rf"
	KeyDataConsultaFGTS  = "data_consulta_fgts"
	KeyDataConsultaSEFAZ = "data_consulta_sefaz"
	KeySituacaoRF        = "situacao_rf"
	KeySituacaoFGTS      = "situacao_fgts"
	KeySituacaoSEFAZ     = "situacao_sefaz"
	KeyValidadeFGTS      = "validade_fgts"
	KeySefazDebitos      = "sefaz_debitos"
	KeySefazTotalDebitos = "sefaz_total_debitos"

	KeyRFSeguro           = "rf_cp_seguro"
	KeyRFPatronal         = "rf_cp_patronal"
	KeyRFTerceiros        = "rf_cp_terceiros"
	KeyRFContribuicoes    = "rf_total_contribuicoes"
	KeyRFTributos         = "rf_tributos"
	KeyRFSimplesPendente  = "rf_simples_pendencias"
	KeyRFSimplesParcelado = "rf_simples_parcelamento"
	KeyRFPGFN             = "rf_pgfn_inscricoes"
	KeyRFSispar           = "rf_sispar"
	KeyFGTSCertificacao   = "fgts_numero_certificacao"
	KeyFGTSCompetencias   = "fgts_competencias_em_aberto"
)

// controls maps each kind's schema field to its form control
var controls = map[certidao.Kind]map[string]string{
	certidao.KindReceitaFederal: {
		certidao.FieldCNPJ:         KeyCNPJ,
		certidao.FieldRazaoSocial:  KeyRequerente,
		certidao.FieldDataConsulta: KeyDataConsultaRF,
		certidao.FieldSituacao:     KeySituacaoRF,
	},
	certidao.KindFGTS: {
		certidao.FieldDataConsulta: KeyDataConsultaFGTS,
		certidao.FieldValidade:     KeyValidadeFGTS,
		certidao.FieldSituacao:     KeySituacaoFGTS,
	},
	certidao.KindSEFAZ: {
		certidao.FieldCNPJ:         KeyCNPJ,
		certidao.FieldDataConsulta: KeyDataConsultaSEFAZ,
		certidao.FieldDebitos:      KeySefazDebitos,
	},
}

// Payload is the flat control/value map handed to the form. Controls with no
// extracted value are absent so the form keeps its defaults.
type Payload map[string]any

// Control returns the form control fed by field of kind
func Control(kind certidao.Kind, field string) (string, bool) {
	key, ok := controls[kind][field]
	return key, ok
}

// Set stores value under key unless the key already holds a value or value
// is empty. It reports whether the value was stored.
func (p Payload) Set(key string, value any) bool {
	if _, taken := p[key]; taken {
		return false
	}
	switch v := value.(type) {
	case nil:
		return false
	case string:
		if v == "" {
			return false
		}
	case []string:
		if len(v) == 0 {
			return false
		}
		value = slices.Clone(v)
	case bool:
		if !v {
			return false
		}
	}
	p[key] = value
	return true
}

// String returns the string held by key, or ""
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Keys returns the filled controls in sorted order
func (p Payload) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// Merge folds results into a single payload. Results are applied in order and
// the first non-empty value for a control wins, so a CNPJ read from the
// Receita Federal certificate is kept over the one on the SEFAZ extract when
// the Receita result comes first. Nil results are skipped.
func Merge(results ...*certidao.Result) Payload {
	p := Payload{}
	for _, r := range results {
		if r == nil {
			continue
		}
		mergeResult(p, r)
	}
	return p
}

func mergeResult(p Payload, r *certidao.Result) {
	for _, name := range r.Kind.Schema() {
		field, ok := r.Get(name)
		if !ok || !field.Found {
			continue
		}
		key, ok := Control(r.Kind, name)
		if !ok {
			continue
		}
		if certidao.IsListField(name) {
			p.Set(key, field.Values)
		} else {
			p.Set(key, field.Value)
		}
	}

	if r.Kind == certidao.KindSEFAZ {
		if rows, ok := r.Get(certidao.FieldDebitos); ok && rows.Found {
			p.Set(KeySefazTotalDebitos, certidao.FormatBRL(certidao.DebitTotal(rows.Values)))
		}
	}
}

// SetStanding stores the SEFAZ standing, keeping the more severe one when
// several SEFAZ certificates are merged
func (p Payload) SetStanding(status string) {
	if status == "" {
		return
	}
	if current, ok := p[KeySituacaoSEFAZ].(string); ok && !certidao.MoreSevere(status, current) {
		return
	}
	p[KeySituacaoSEFAZ] = status
}

// MergeReceita adds the Receita Federal debt analysis: contribution totals,
// per-tax totals, Simples Nacional flags, PGFN inscriptions and SISPAR.
// Zero totals and false flags are left out.
func (p Payload) MergeReceita(a certidao.ReceitaAnalysis) {
	for key, amount := range map[string]float64{
		KeyRFSeguro:        a.Contributions.Seguro,
		KeyRFPatronal:      a.Contributions.Patronal,
		KeyRFTerceiros:     a.Contributions.Terceiros,
		KeyRFContribuicoes: a.Contributions.Total,
	} {
		if amount > 0 {
			p.Set(key, certidao.FormatBRL(amount))
		}
	}

	var taxes []string
	for _, tax := range slices.Sorted(maps.Keys(a.Taxes)) {
		taxes = append(taxes, tax+certidao.DebitRowSeparator+certidao.FormatBRL(a.Taxes[tax]))
	}
	p.Set(KeyRFTributos, taxes)

	p.Set(KeyRFSimplesPendente, a.Simples)
	if a.Installment != nil {
		kind := a.Installment.Type
		if kind == "" {
			kind = "PARCELAMENTO"
		}
		p.Set(KeyRFSimplesParcelado, kind)
	}

	var inscriptions []string
	for _, i := range a.PGFN {
		inscriptions = append(inscriptions, i.Number+certidao.DebitRowSeparator+i.Status)
	}
	p.Set(KeyRFPGFN, inscriptions)
	p.Set(KeyRFSispar, a.Sispar != nil)
}

// MergeFGTS adds the CRF certification number and the open competências
func (p Payload) MergeFGTS(d certidao.FGTSDetails) {
	p.Set(KeyFGTSCertificacao, d.CertificationNumber)
	p.Set(KeyFGTSCompetencias, d.OpenPeriods)
}
