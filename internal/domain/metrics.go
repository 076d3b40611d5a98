package domain

import (
	"time"

	"github.com/vfg2006/delivery-recon-api/pkg/utils"
)

// MetricsFilters filtra a consulta de métricas consolidadas.
// Todos os campos são opcionais.
type MetricsFilters struct {
	ClientID   string
	LocationID string
	Platform   *Platform
	WeekStart  *time.Time
	WeekEnd    *time.Time
}

// WeeklyAggregate é a linha bruta agregada por (location, semana) que os
// repositórios devolvem antes do cálculo das métricas derivadas
type WeeklyAggregate struct {
	ClientID       string
	LocationID     string
	LocationName   string
	Platform       Platform
	WeekStart      time.Time
	TotalSales     float64
	TotalOrders    int
	MarketingSpend float64
	MarketingSales float64
	Fees           float64
	NetPayout      float64
}

// ConsolidatedMetrics é a visão consolidada de performance de uma Location
// em uma semana. Calculada na leitura, nunca armazenada.
type ConsolidatedMetrics struct {
	ClientID         string    `json:"client_id"`
	LocationID       string    `json:"location_id"`
	LocationName     string    `json:"location_name"`
	Platform         Platform  `json:"platform"`
	WeekStart        time.Time `json:"week_start"`
	TotalSales       float64   `json:"total_sales"`
	TotalOrders      int       `json:"total_orders"`
	AOV              *float64  `json:"aov"` // indefinido quando total_orders == 0
	MarketingSpend   float64   `json:"marketing_spend"`
	MarketingSales   float64   `json:"marketing_sales"`
	MarketingRoas    *float64  `json:"marketing_roas"`
	NetPayout        float64   `json:"net_payout"`
	NetPayoutPercent *float64  `json:"net_payout_percent"`
}

// ConsolidateWeekly deriva as métricas de leitura a partir do agregado bruto
func ConsolidateWeekly(agg *WeeklyAggregate) *ConsolidatedMetrics {
	m := &ConsolidatedMetrics{
		ClientID:       agg.ClientID,
		LocationID:     agg.LocationID,
		LocationName:   agg.LocationName,
		Platform:       agg.Platform,
		WeekStart:      agg.WeekStart,
		TotalSales:     utils.RoundWithTwoDecimalPlace(agg.TotalSales),
		TotalOrders:    agg.TotalOrders,
		MarketingSpend: utils.RoundWithTwoDecimalPlace(agg.MarketingSpend),
		MarketingSales: utils.RoundWithTwoDecimalPlace(agg.MarketingSales),
		NetPayout:      utils.RoundWithTwoDecimalPlace(agg.NetPayout),
	}

	// AOV só é definido quando houve pedidos
	if agg.TotalOrders > 0 {
		aov := utils.RoundWithTwoDecimalPlace(agg.TotalSales / float64(agg.TotalOrders))
		m.AOV = &aov
	}

	if agg.MarketingSpend > 0 {
		roas := utils.RoundWithTwoDecimalPlace(agg.MarketingSales / agg.MarketingSpend)
		m.MarketingRoas = &roas
	}

	if agg.TotalSales > 0 {
		pct := utils.RoundWithTwoDecimalPlace((agg.NetPayout / agg.TotalSales) * 100)
		m.NetPayoutPercent = &pct
	}

	return m
}
