package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildPDF renders lines as a single page PDF with a Helvetica text layer.
// Lines must be ASCII.
func buildPDF(lines ...string) []byte {
	var content strings.Builder
	if len(lines) > 0 {
		content.WriteString("BT\n/F1 11 Tf\n14 TL\n50 780 Td\n")
		for i, line := range lines {
			if i > 0 {
				content.WriteString("T*\n")
			}
			escaped := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(line)
			fmt.Fprintf(&content, "(%s) Tj\n", escaped)
		}
		content.WriteString("ET")
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] " +
			"/Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

var (
	fgtsLines = []string{
		"CAIXA ECONOMICA FEDERAL",
		"Certificado de Regularidade do FGTS - CRF",
		"Inscricao: 27.363.271/0001-68",
		"A EMPRESA abaixo identificada encontra-se em situacao regular perante o FGTS.",
		"Validade: 01/03/2024 a 30/03/2024",
		"Informacao obtida em 15/03/2024 10:22:31",
	}
	receitaLines = []string{
		"SECRETARIA ESPECIAL DA RECEITA FEDERAL DO BRASIL",
		"CNPJ: 27.363.271/0001-68",
		"Data da Consulta: 14/03/2024",
		"Nao constam debitos em aberto.",
	}
	sefazLines = []string{
		"SECRETARIA DA FAZENDA",
		"EXTRATO DE DEBITOS",
		"CNPJ: 11.222.333/0001-81",
		"Data de Emissao: 20/03/2024",
		"01/2024 ICMS ANTECIPADO R$ 1.234,56",
		"Debitos pendentes de pagamento.",
	}
)
