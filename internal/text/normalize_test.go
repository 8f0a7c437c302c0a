package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases",
			input: "MERCADO",
			want:  "mercado",
		},
		{
			name:  "strips diacritics",
			input: "Combustível",
			want:  "combustivel",
		},
		{
			name:  "strips cedilla and tilde",
			input: "Alimentação",
			want:  "alimentacao",
		},
		{
			name:  "replaces punctuation with spaces",
			input: "uber*viagem,centro",
			want:  "uber viagem centro",
		},
		{
			name:  "collapses whitespace",
			input: "  cartão   rotativo  ",
			want:  "cartao rotativo",
		},
		{
			name:  "keeps digits",
			input: "pix 50",
			want:  "pix 50",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "?!...",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "drops short tokens",
			input: "ir de uber ao centro",
			want:  []string{"uber", "centro"},
		},
		{
			name:  "strips trailing s",
			input: "compras roupas",
			want:  []string{"compra", "roupa"},
		},
		{
			name:  "deny list keeps mas intact",
			input: "mas paguei",
			want:  []string{"mas", "paguei"},
		},
		{
			name:  "deny list keeps pais intact",
			input: "viagem com meus pais",
			want:  []string{"viagem", "com", "meu", "pais"},
		},
		{
			name:  "diacritics removed before splitting",
			input: "Cartão Rotativo",
			want:  []string{"cartao", "rotativo"},
		},
		{
			name:  "empty input",
			input: "",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestTokenizeNeverPanics(t *testing.T) {
	inputs := []string{"", " ", "...", "ção", "日本語", "a b c", "sss"}
	for _, input := range inputs {
		assert.NotPanics(t, func() { Tokenize(input) })
	}
}
