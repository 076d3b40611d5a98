package domain

import "time"

// Transaction é o registro normalizado de uma linha de export semanal de
// qualquer plataforma, já com a identidade da Location resolvida.
//
// A chave natural varia por plataforma:
//   - Uber Eats: (client_id, workflow_id)
//   - DoorDash:  (client_id, transaction_id)
//   - Grubhub:   (client_id, order_number, transaction_date) — números de
//     pedido se repetem entre dias, então a data participa da chave
type Transaction struct {
	ID           int       `json:"id"`
	ClientID     string    `json:"client_id"`
	LocationID   string    `json:"location_id"`
	Platform     Platform  `json:"platform"`
	ExternalID   string    `json:"external_id"` // workflow_id / transaction_id / order_number
	RawStoreName string    `json:"raw_store_name"`
	Date         time.Time `json:"date"` // sempre ISO YYYY-MM-DD internamente

	Sales          float64 `json:"sales"`
	MarketingSpend float64 `json:"marketing_spend"`
	MarketingSales float64 `json:"marketing_sales"`
	Fees           float64 `json:"fees"`
	NetPayout      float64 `json:"net_payout"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NaturalKey identifica a transação de forma única dentro de (client, platform).
// Duplicatas dentro de um mesmo lote são resolvidas por "última linha vence".
func (t *Transaction) NaturalKey() string {
	if t.Platform == PlatformGrubhub {
		return t.ExternalID + "|" + t.Date.Format(time.DateOnly)
	}
	return t.ExternalID
}
