// Package ingesting cobre o caminho de ingestão dos exports semanais:
// normalização por plataforma, resolução de identidade, deduplicação e
// gravação em lotes.
package ingesting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vfg2006/delivery-recon-api/internal/domain"
)

// Normalizer transforma um registro bruto do CSV (coluna → valor) na
// transação normalizada da plataforma. Transformação pura, sem efeito
// colateral; o erro indica linha rejeitada (chave natural ausente), nunca
// aborta o arquivo.
type Normalizer interface {
	Platform() domain.Platform
	RequiredColumns() []string
	Normalize(record map[string]string) (*domain.Transaction, error)
}

// NormalizerFor devolve o normalizador da plataforma
func NormalizerFor(platform domain.Platform) (Normalizer, error) {
	switch platform {
	case domain.PlatformUberEats:
		return &uberEatsNormalizer{}, nil
	case domain.PlatformDoordash:
		return &doordashNormalizer{}, nil
	case domain.PlatformGrubhub:
		return &grubhubNormalizer{}, nil
	default:
		return nil, fmt.Errorf("plataforma desconhecida: %q", platform)
	}
}

// uberEatsNormalizer lê o relatório de pagamentos do Uber Eats. Datas vêm
// como M/D/YY; o nome da loja costuma embutir o código entre parênteses.
type uberEatsNormalizer struct{}

func (n *uberEatsNormalizer) Platform() domain.Platform {
	return domain.PlatformUberEats
}

func (n *uberEatsNormalizer) RequiredColumns() []string {
	return []string{"Workflow ID", "Store Name", "Order Date"}
}

func (n *uberEatsNormalizer) Normalize(record map[string]string) (*domain.Transaction, error) {
	workflowID := strings.TrimSpace(record["Workflow ID"])
	if workflowID == "" {
		return nil, fmt.Errorf("chave natural ausente: Workflow ID")
	}

	date, err := parseUberEatsDate(record["Order Date"])
	if err != nil {
		return nil, fmt.Errorf("data inválida %q: %w", record["Order Date"], err)
	}

	return &domain.Transaction{
		Platform:       domain.PlatformUberEats,
		ExternalID:     workflowID,
		RawStoreName:   strings.TrimSpace(record["Store Name"]),
		Date:           date,
		Sales:          parseMoney(record["Sales"]),
		MarketingSpend: parseMoney(record["Marketing Adjustment"]),
		MarketingSales: parseMoney(record["Sales from Marketing"]),
		Fees:           parseMoney(record["Uber Fees"]),
		NetPayout:      parseMoney(record["Total Payout"]),
	}, nil
}

// doordashNormalizer lê o relatório financeiro do DoorDash (colunas em
// SNAKE_CASE maiúsculo, datas ISO)
type doordashNormalizer struct{}

func (n *doordashNormalizer) Platform() domain.Platform {
	return domain.PlatformDoordash
}

func (n *doordashNormalizer) RequiredColumns() []string {
	return []string{"TRANSACTION_ID", "STORE_NAME", "PAYOUT_DATE"}
}

func (n *doordashNormalizer) Normalize(record map[string]string) (*domain.Transaction, error) {
	transactionID := strings.TrimSpace(record["TRANSACTION_ID"])
	if transactionID == "" {
		return nil, fmt.Errorf("chave natural ausente: TRANSACTION_ID")
	}

	date, err := parseISODate(record["PAYOUT_DATE"])
	if err != nil {
		return nil, fmt.Errorf("data inválida %q: %w", record["PAYOUT_DATE"], err)
	}

	return &domain.Transaction{
		Platform:       domain.PlatformDoordash,
		ExternalID:     transactionID,
		RawStoreName:   strings.TrimSpace(record["STORE_NAME"]),
		Date:           date,
		Sales:          parseMoney(record["SUBTOTAL"]),
		MarketingSpend: parseMoney(record["MARKETING_SPEND"]),
		MarketingSales: parseMoney(record["MARKETING_SALES"]),
		Fees:           parseMoney(record["COMMISSION"]),
		NetPayout:      parseMoney(record["NET_PAYOUT"]),
	}, nil
}

// grubhubNormalizer lê o export de transações do Grubhub. Números de pedido
// se repetem entre dias; a data participa da chave natural.
type grubhubNormalizer struct{}

func (n *grubhubNormalizer) Platform() domain.Platform {
	return domain.PlatformGrubhub
}

func (n *grubhubNormalizer) RequiredColumns() []string {
	return []string{"Order Number", "Restaurant Name", "Transaction Date"}
}

func (n *grubhubNormalizer) Normalize(record map[string]string) (*domain.Transaction, error) {
	orderNumber := strings.TrimSpace(record["Order Number"])
	if orderNumber == "" {
		return nil, fmt.Errorf("chave natural ausente: Order Number")
	}

	date, err := parseISODate(record["Transaction Date"])
	if err != nil {
		return nil, fmt.Errorf("data inválida %q: %w", record["Transaction Date"], err)
	}

	return &domain.Transaction{
		Platform:       domain.PlatformGrubhub,
		ExternalID:     orderNumber,
		RawStoreName:   strings.TrimSpace(record["Restaurant Name"]),
		Date:           date,
		Sales:          parseMoney(record["Sales"]),
		MarketingSpend: parseMoney(record["Marketing Promotions"]),
		MarketingSales: parseMoney(record["Promotional Sales"]),
		Fees:           parseMoney(record["Fees"]),
		NetPayout:      parseMoney(record["Net Payout"]),
	}, nil
}

// parseMoney aplica a política "inválido ou ausente → 0": campo monetário
// ruim nunca derruba a linha. Aceita símbolo de moeda, separador de milhar
// e negativo entre parênteses.
func parseMoney(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.NewReplacer("$", "", ",", "", " ", "").Replace(cleaned)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	if negative {
		return -value
	}
	return value
}

// parseUberEatsDate lê M/D/YY ou M/D/YYYY
func parseUberEatsDate(raw string) (time.Time, error) {
	cleaned := strings.TrimSpace(raw)

	for _, layout := range []string{"1/2/06", "1/2/2006"} {
		if date, err := time.Parse(layout, cleaned); err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("formato esperado M/D/YY")
}

// parseISODate lê YYYY-MM-DD (DoorDash e Grubhub)
func parseISODate(raw string) (time.Time, error) {
	cleaned := strings.TrimSpace(raw)

	date, err := time.Parse(time.DateOnly, cleaned)
	if err != nil {
		return time.Time{}, fmt.Errorf("formato esperado YYYY-MM-DD")
	}

	return date, nil
}
