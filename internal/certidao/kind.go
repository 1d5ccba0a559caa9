// Package certidao extracts report fields from the text layer of Brazilian
// tax compliance certificates (Receita Federal, FGTS and SEFAZ).
//
// Extraction is a pure function of the input text and a static rule table:
// every field of a document kind's schema is looked up by an ordered list of
// pattern rules and the first rule that both matches and survives
// normalization wins. Missing data never produces an error; only an unknown
// document kind does.
package certidao

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind identifies which certificate layout a text was taken from
type Kind string

const (
	KindReceitaFederal Kind = "receita_federal"
	KindFGTS           Kind = "fgts"
	KindSEFAZ          Kind = "sefaz"
)

// Field names used by the document schemas
const (
	FieldCNPJ         = "cnpj"
	FieldRazaoSocial  = "razao_social"
	FieldDataConsulta = "data_consulta"
	FieldValidade     = "validade"
	FieldSituacao     = "situacao"
	FieldDebitos      = "debitos"
)

// ErrUnknownKind is returned when a caller asks for a document kind that has no
// rule table. It signals an integration error, not bad input text.
var ErrUnknownKind = errors.New("unknown document kind")

var schemas = map[Kind][]string{
	KindReceitaFederal: {FieldCNPJ, FieldRazaoSocial, FieldDataConsulta, FieldSituacao},
	KindFGTS:           {FieldDataConsulta, FieldValidade, FieldSituacao},
	KindSEFAZ:          {FieldCNPJ, FieldDataConsulta, FieldDebitos},
}

// Kinds returns every supported document kind in a stable order
func Kinds() []Kind {
	return []Kind{KindReceitaFederal, KindFGTS, KindSEFAZ}
}

// ParseKind converts a user supplied string into a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", errors.WithHintf(
			errors.Wrapf(ErrUnknownKind, "%q", s),
			"supported kinds: %s, %s, %s", KindReceitaFederal, KindFGTS, KindSEFAZ,
		)
	}
	return k, nil
}

// Valid reports whether k is one of the supported kinds
func (k Kind) Valid() bool {
	_, ok := schemas[k]
	return ok
}

// Schema returns the ordered field names extracted for k. The returned slice
// is a copy; nil is returned for unknown kinds.
func (k Kind) Schema() []string {
	fields, ok := schemas[k]
	if !ok {
		return nil
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// IsListField reports whether name holds repeated row matches rather than a
// single value.
func IsListField(name string) bool {
	return name == FieldDebitos
}

func (k Kind) String() string {
	return string(k)
}
