package domain

import "time"

// Client representa o limite de tenant: toda Location e toda transação
// pertencem a exatamente um Client
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
