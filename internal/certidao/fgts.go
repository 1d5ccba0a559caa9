package certidao

import (
	"regexp"
	"slices"
	"strings"
)

var (
	certificationRe = regexp.MustCompile(`(?i)Certifica[çc][ãa]o\s+N[úu]mero\s*:?\s*(\d+)`)
	// the pending section runs from the first pending-debt marker to the
	// validity or certification block
	fgtsPendingStartRe = regexp.MustCompile(`(?i)pend[êe]ncias?|em\s+atraso|n[ãa]o\s+recolhid[ao]s?|d[ée]bitos?`)
	fgtsPendingEndRe   = regexp.MustCompile(`(?i)Validade|Certifica[çc][ãa]o`)
	competenciaRe      = regexp.MustCompile(`(?:^|[^\d/])(\d{2})\s*/\s*(\d{4})\b`)
)

// FGTSDetails holds what an FGTS certificate says beside the fixed schema
type FGTSDetails struct {
	CertificationNumber string   `json:"numero_certificacao,omitempty"`
	OpenPeriods         []string `json:"competencias_em_aberto,omitempty"` // MM/YYYY, oldest first
}

// FGTSInfo reads the CRF certification number and, when the certificate does
// not state regular standing, the competências listed as pending.
func FGTSInfo(text string) FGTSDetails {
	var d FGTSDetails
	if m := certificationRe.FindStringSubmatch(text); m != nil {
		d.CertificationNumber = m[1]
	}

	if fgtsRegular(text) {
		return d
	}
	loc := fgtsPendingStartRe.FindStringIndex(text)
	if loc == nil {
		return d
	}
	section := text[loc[0]:]
	if end := fgtsPendingEndRe.FindStringIndex(section); end != nil {
		section = section[:end[0]]
	}

	for _, m := range competenciaRe.FindAllStringSubmatch(section, -1) {
		if m[1] < "01" || m[1] > "12" {
			continue
		}
		period := m[1] + "/" + m[2]
		if !slices.Contains(d.OpenPeriods, period) {
			d.OpenPeriods = append(d.OpenPeriods, period)
		}
	}
	slices.SortFunc(d.OpenPeriods, func(a, b string) int {
		// MM/YYYY compares by year, then month
		return strings.Compare(a[3:]+a[:2], b[3:]+b[:2])
	})
	return d
}

func fgtsRegular(text string) bool {
	result, err := Extract(text, KindFGTS)
	if err != nil {
		return false
	}
	return strings.HasPrefix(Fold(result.Value(FieldSituacao)), "regular")
}
