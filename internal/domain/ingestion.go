package domain

import "time"

// RejectedRow descreve uma linha descartada durante a ingestão e o motivo
type RejectedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// IngestionResult é o retorno do endpoint de ingestão: o chamador sempre
// recebe contagens, nunca sucesso parcial silencioso
type IngestionResult struct {
	Platform         Platform      `json:"platform"`
	RowsProcessed    int           `json:"rows_processed"`
	RowsRejected     int           `json:"rows_rejected"`
	RowsUnmapped     int           `json:"rows_unmapped"`
	LocationsCreated int           `json:"locations_created"`
	RejectedRows     []RejectedRow `json:"rejected_rows,omitempty"`
}

// PurgeRequest é a operação destrutiva e explícita de "substituir semana":
// apaga as transações do intervalo antes de um reimport
type PurgeRequest struct {
	ClientID  string    `json:"client_id"`
	Platform  Platform  `json:"platform"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}
