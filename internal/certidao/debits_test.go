package certidao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDebitRow(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantPeriod string
		wantAmount float64
		wantDesc   string
		wantOK     bool
	}{
		{
			name:       "period first",
			line:       "01/2024       ICMS ANTECIPADO     R$ 1.234,56",
			wantPeriod: "01/2024",
			wantAmount: 1234.56,
			wantDesc:   "ICMS ANTECIPADO",
			wantOK:     true,
		},
		{
			name:       "amount first",
			line:       "571,90 - ICMS DIFAL - 11 / 2023",
			wantPeriod: "11/2023",
			wantAmount: 571.90,
			wantDesc:   "ICMS DIFAL",
			wantOK:     true,
		},
		{
			name:       "zero amount skipped",
			line:       "03/2024 ICMS 0,00 multa 12,50",
			wantPeriod: "03/2024",
			wantAmount: 12.50,
			wantDesc:   "ICMS multa",
			wantOK:     true,
		},
		{
			name:   "full date is not a period",
			line:   "Emitido em 20/03/2024 valor 10,00",
			wantOK: false,
		},
		{
			name:   "invalid month",
			line:   "13/2024 ICMS 10,00",
			wantOK: false,
		},
		{
			name:   "no amount",
			line:   "01/2024 ICMS",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := NormalizeDebitRow(tt.line)
			require.Equal(t, tt.wantOK, ok, row)
			if !tt.wantOK {
				return
			}

			d, ok := ParseDebitRow(row)
			require.True(t, ok)
			assert.Equal(t, tt.wantPeriod, d.Period)
			assert.InDelta(t, tt.wantAmount, d.Amount, 0.001)
			assert.Equal(t, tt.wantDesc, d.Description)
		})
	}
}

func TestNormalizeIPVARow(t *testing.T) {
	row, ok := NormalizeIPVARow("IPVA 2023 PLACA ABC1D23 R$ 2.150,00")
	require.True(t, ok)

	d, ok := ParseDebitRow(row)
	require.True(t, ok)
	assert.Equal(t, "2023", d.Period)
	assert.InDelta(t, 2150.0, d.Amount, 0.001)
	assert.Equal(t, "IPVA PLACA ABC1D23", d.Description)
}

func TestParseDebitRow_Malformed(t *testing.T) {
	_, ok := ParseDebitRow("01/2024")
	assert.False(t, ok)

	_, ok = ParseDebitRow("01/2024 | abc")
	assert.False(t, ok)
}

func TestDebitTotal(t *testing.T) {
	rows := []string{
		"01/2024 | 1.234,56 | ICMS",
		"02/2024 | 99.249,14",
		"garbage",
	}
	assert.InDelta(t, 100483.70, DebitTotal(rows), 0.001)
	assert.Zero(t, DebitTotal(nil))
}
