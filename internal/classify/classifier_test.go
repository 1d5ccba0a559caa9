package classify

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-certidao-reader/internal/certidao"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want certidao.Kind
	}{
		{
			name: "receita federal",
			text: "MINISTÉRIO DA FAZENDA\nSECRETARIA ESPECIAL DA RECEITA FEDERAL DO BRASIL\n" +
				"Relatório de Situação Fiscal\nPGFN: sem pendências",
			want: certidao.KindReceitaFederal,
		},
		{
			name: "fgts",
			text: "CAIXA ECONÔMICA FEDERAL\nCertificado de Regularidade do FGTS - CRF\n" +
				"Fundo de Garantia do Tempo de Serviço",
			want: certidao.KindFGTS,
		},
		{
			name: "sefaz",
			text: "SECRETARIA DA FAZENDA\nEXTRATO DE DÉBITOS\n01/2024 ICMS ANTECIPADO R$ 10,00",
			want: certidao.KindSEFAZ,
		},
		{
			name: "sefaz regularity certificate",
			text: "CERTIDÃO DE REGULARIDADE FISCAL\nSEFAZ-PE\nInscrição Estadual: 0000000-00",
			want: certidao.KindSEFAZ,
		},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Kind)
			assert.GreaterOrEqual(t, got.Confidence, DefaultMinConfidence)
			assert.NotEmpty(t, got.Reasons)
		})
	}
}

func TestClassify_TitleOutweighsStrayKeyword(t *testing.T) {
	// An FGTS certificate mentioning ICMS is still an FGTS certificate
	text := "Certificado de Regularidade do FGTS\nobservação: débitos de ICMS não são considerados"

	got, err := New().Classify(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, certidao.KindFGTS, got.Kind)
	require.Len(t, got.Alternatives, 1)
	assert.Equal(t, certidao.KindSEFAZ, got.Alternatives[0].Kind)
}

func TestClassify_NoEvidence(t *testing.T) {
	got, err := New().Classify(context.Background(), "Documento genérico sem informações claras.")
	assert.True(t, errors.Is(err, ErrUnclassified))
	require.NotNil(t, got)
	assert.Empty(t, got.Kind)
}

func TestClassify_Ambiguous(t *testing.T) {
	got, err := New().Classify(context.Background(), "Receita Federal\nSecretaria da Fazenda\nFundo de Garantia")
	assert.True(t, errors.Is(err, ErrUnclassified))
	require.NotNil(t, got)
	assert.Empty(t, got.Kind)
	assert.Len(t, got.Alternatives, 2)
}

func TestClassify_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Classify(ctx, "Receita Federal")
	assert.ErrorIs(t, err, context.Canceled)
}
