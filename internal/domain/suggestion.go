package domain

// MatchSuggestion é uma sugestão de vínculo entre um nome bruto visto nas
// transações e uma Location canônica, para confirmação humana.
// Derivada sob demanda, nunca persistida.
type MatchSuggestion struct {
	LocationName      string   `json:"location_name"` // nome bruto da plataforma
	Platform          Platform `json:"platform"`
	MatchedLocationID *string  `json:"matched_location_id"`
	MatchedLocation   *string  `json:"matched_location"`
	Confidence        float64  `json:"confidence"` // 0–1
	OrderCount        int      `json:"order_count"`
}

// RawNameCount é um nome bruto distinto observado nas transações não
// mapeadas, com a quantidade de pedidos vista sob ele
type RawNameCount struct {
	RawStoreName string
	OrderCount   int
}

// ConfirmMatchRequest é a ação humana que grava o vínculo sugerido
type ConfirmMatchRequest struct {
	RawLocationName string   `json:"raw_location_name"`
	Platform        Platform `json:"platform"`
	LocationID      string   `json:"location_id"`
}
