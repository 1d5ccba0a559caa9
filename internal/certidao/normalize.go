package certidao

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer turns a raw capture into its canonical form. It returns false
// when the capture fails post-match validation, in which case the rule is
// treated as not matching.
type Normalizer func(raw string) (string, bool)

var (
	numericDateRe = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})$`)
	longDateRe    = regexp.MustCompile(`(?i)^(\d{1,2})º?\s+de\s+(\pL+)\.?\s+de\s+(\d{4})$`)
	dateSepRe     = regexp.MustCompile(`\s*([/.\-])\s*`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	brlCleanRe    = regexp.MustCompile(`[^\d.,]`)
)

// months maps accent-folded, lower-cased Portuguese month names and their
// usual abbreviations to month numbers.
var months = map[string]time.Month{
	"janeiro": time.January, "jan": time.January,
	"fevereiro": time.February, "fev": time.February,
	"marco": time.March, "mar": time.March,
	"abril": time.April, "abr": time.April,
	"maio": time.May, "mai": time.May,
	"junho": time.June, "jun": time.June,
	"julho": time.July, "jul": time.July,
	"agosto": time.August, "ago": time.August,
	"setembro": time.September, "set": time.September,
	"outubro": time.October, "out": time.October,
	"novembro": time.November, "nov": time.November,
	"dezembro": time.December, "dez": time.December,
}

// Fold lower-cases s and strips diacritics ("MARÇO" -> "marco").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// NormalizeText trims s and collapses internal whitespace runs to one space.
// Casing is preserved. Empty results are rejected.
func NormalizeText(s string) (string, bool) {
	out := strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	return out, out != ""
}

// NormalizeCNPJ removes whitespace from a CNPJ-like capture and formats it as
// NN.NNN.NNN/NNNN-NN. Captures that do not hold exactly 14 digits, or that
// contain characters other than digits and CNPJ punctuation, are rejected.
func NormalizeCNPJ(s string) (string, bool) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	compact = strings.Trim(compact, ".-/")

	digits := make([]byte, 0, 14)
	for i := 0; i < len(compact); i++ {
		c := compact[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == '.' || c == '/' || c == '-':
		default:
			return "", false
		}
	}
	if len(digits) != 14 {
		return "", false
	}

	d := string(digits)
	return fmt.Sprintf("%s.%s.%s/%s-%s", d[0:2], d[2:5], d[5:8], d[8:12], d[12:14]), true
}

// NormalizeDate accepts DD/MM/YYYY, DD-MM-YYYY, DD.MM.YYYY, DD/MM/YY and
// "DD de <mês> de YYYY" and returns the date as DD/MM/YYYY. Two-digit years
// are read as 20YY. Dates that do not exist on the calendar are rejected.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	compact := dateSepRe.ReplaceAllString(s, "$1")

	var day, year int
	var month time.Month

	if m := numericDateRe.FindStringSubmatch(compact); m != nil {
		day, _ = strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		month = time.Month(mm)
		year, _ = strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
	} else if m := longDateRe.FindStringSubmatch(s); m != nil {
		var ok bool
		if month, ok = months[Fold(m[2])]; !ok {
			return "", false
		}
		day, _ = strconv.Atoi(m[1])
		year, _ = strconv.Atoi(m[3])
	} else {
		return "", false
	}

	if month < time.January || month > time.December {
		return "", false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return "", false
	}
	return t.Format("02/01/2006"), true
}

// ParseBRL converts a Brazilian currency string ("R$ 1.234,56") to a float.
// A string with only dots is read as thousands separators when there is more
// than one of them.
func ParseBRL(s string) (float64, bool) {
	clean := brlCleanRe.ReplaceAllString(strings.TrimSpace(s), "")
	if clean == "" {
		return 0, false
	}
	switch {
	case strings.Contains(clean, ","):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var brlPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders v as a Brazilian currency amount ("R$ 1.234,56")
func FormatBRL(v float64) string {
	return "R$ " + brlPrinter.Sprintf("%.2f", v)
}

// constant returns a Normalizer that replaces any capture with value
func constant(value string) Normalizer {
	return func(string) (string, bool) {
		return value, true
	}
}

// negatedRe matches the folded form of negationExpr at the start of a capture
var negatedRe = regexp.MustCompile(`^(?:nao\s+(?:possui|ha|existem?|constam?)|sem)\s`)

// unlessNegated wraps next and rejects captures that open with a denial such
// as "não constam" or "sem"
func unlessNegated(next Normalizer) Normalizer {
	return func(raw string) (string, bool) {
		if negatedRe.MatchString(Fold(strings.TrimSpace(raw))) {
			return "", false
		}
		return next(raw)
	}
}
