package domain

import "time"

// Códigos das regras do analisador de qualidade de dados. Cada regra é
// independente e aditiva: uma mesma (location, semana) pode acumular várias.
const (
	QualityZeroSalesWithPayout  = "zero_sales_with_payout"
	QualityImplausibleRoas      = "implausible_roas"
	QualityNegativeMargin       = "negative_margin"
	QualityLowPayoutPercent     = "low_payout_percent"
	QualitySpendExceedsSales    = "marketing_spend_exceeds_sales"
	QualityWeekOverWeekDrop     = "week_over_week_drop"
	QualityWeekOverWeekIncrease = "week_over_week_increase"
)

// QualityIssue é um aviso sobre uma (location, semana). Saída consultiva:
// nunca bloqueia ingestão.
type QualityIssue struct {
	ClientID     string    `json:"client_id"`
	LocationID   string    `json:"location_id"`
	LocationName string    `json:"location_name"`
	WeekStart    time.Time `json:"week_start"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}

// QualityReport agrupa os avisos encontrados para um cliente
type QualityReport struct {
	ClientID    string         `json:"client_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Issues      []QualityIssue `json:"issues"`
}
