package ingesting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
)

func TestUberEatsNormalizer_Normalize(t *testing.T) {
	normalizer, err := NormalizerFor(domain.PlatformUberEats)
	assert.NoError(t, err)

	t.Run("Linha completa", func(t *testing.T) {
		transaction, err := normalizer.Normalize(map[string]string{
			"Workflow ID":          "WF-123",
			"Store Name":           "Brand (MN100477)",
			"Order Date":           "1/5/24",
			"Sales":                "100.50",
			"Marketing Adjustment": "10.00",
			"Sales from Marketing": "40.00",
			"Uber Fees":            "15.25",
			"Total Payout":         "75.25",
		})

		assert.NoError(t, err)
		assert.Equal(t, "WF-123", transaction.ExternalID)
		assert.Equal(t, "Brand (MN100477)", transaction.RawStoreName)
		assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), transaction.Date)
		assert.Equal(t, 100.50, transaction.Sales)
		assert.Equal(t, 75.25, transaction.NetPayout)
	})

	t.Run("Workflow ID ausente rejeita a linha", func(t *testing.T) {
		_, err := normalizer.Normalize(map[string]string{
			"Workflow ID": "  ",
			"Store Name":  "Brand",
			"Order Date":  "1/5/24",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "chave natural ausente")
	})

	t.Run("Numérico inválido vira zero, nunca erro", func(t *testing.T) {
		transaction, err := normalizer.Normalize(map[string]string{
			"Workflow ID": "WF-124",
			"Store Name":  "Brand",
			"Order Date":  "12/31/23",
			"Sales":       "not-a-number",
		})

		assert.NoError(t, err)
		assert.Equal(t, 0.0, transaction.Sales)
	})

	t.Run("Data inválida rejeita a linha", func(t *testing.T) {
		_, err := normalizer.Normalize(map[string]string{
			"Workflow ID": "WF-125",
			"Store Name":  "Brand",
			"Order Date":  "2024-01-05",
		})

		assert.Error(t, err)
	})
}

func TestDoordashNormalizer_Normalize(t *testing.T) {
	normalizer, err := NormalizerFor(domain.PlatformDoordash)
	assert.NoError(t, err)

	transaction, err := normalizer.Normalize(map[string]string{
		"TRANSACTION_ID":  "DD-987",
		"STORE_NAME":      "Main Street - Anoka",
		"PAYOUT_DATE":     "2024-01-05",
		"SUBTOTAL":        "$1,250.00",
		"MARKETING_SPEND": "50",
		"NET_PAYOUT":      "(25.00)",
	})

	assert.NoError(t, err)
	assert.Equal(t, "DD-987", transaction.ExternalID)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), transaction.Date)
	assert.Equal(t, 1250.0, transaction.Sales)
	assert.Equal(t, 50.0, transaction.MarketingSpend)
	// Negativo entre parênteses (convenção contábil dos exports)
	assert.Equal(t, -25.0, transaction.NetPayout)
}

func TestGrubhubNormalizer_Normalize(t *testing.T) {
	normalizer, err := NormalizerFor(domain.PlatformGrubhub)
	assert.NoError(t, err)

	transaction, err := normalizer.Normalize(map[string]string{
		"Order Number":     "GH-555",
		"Restaurant Name":  "Downtown Minneapolis",
		"Transaction Date": "2024-01-06",
		"Sales":            "88.10",
	})

	assert.NoError(t, err)
	assert.Equal(t, "GH-555", transaction.ExternalID)
	// A data participa da chave natural do Grubhub
	assert.Equal(t, "GH-555|2024-01-06", transaction.NaturalKey())
}

func TestNormalizerFor_PlataformaDesconhecida(t *testing.T) {
	_, err := NormalizerFor(domain.Platform("ifood"))
	assert.Error(t, err)
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"100.50", 100.50},
		{"$1,250.00", 1250.0},
		{"(25.00)", -25.0},
		{"-12.5", -12.5},
		{"", 0},
		{"abc", 0},
		{"  42  ", 42},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseMoney(tt.input))
		})
	}
}
