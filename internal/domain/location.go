package domain

import "time"

// UnmappedLocationName é o nome canônico da Location sentinela que absorve
// transações sem correspondência confiável
const UnmappedLocationName = "Unmapped Locations"

// Location é a identidade canônica de um restaurante físico, independente
// da plataforma. Os campos por plataforma guardam o nome/código com que cada
// plataforma se refere à loja.
type Location struct {
	ID                 string    `json:"id"`
	ClientID           string    `json:"client_id"`
	CanonicalName      string    `json:"canonical_name"`
	StoreID            *string   `json:"store_id"`
	UberEatsStoreLabel *string   `json:"uber_eats_store_label"`
	DoordashName       *string   `json:"doordash_name"`
	GrubhubName        *string   `json:"grubhub_name"`
	IsVerified         bool      `json:"is_verified"`
	IsUnmapped         bool      `json:"is_unmapped"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// PlatformName retorna o campo de identidade da Location para a plataforma
// informada (vazio quando nunca foi vinculado)
func (l *Location) PlatformName(platform Platform) string {
	var v *string
	switch platform {
	case PlatformUberEats:
		v = l.UberEatsStoreLabel
	case PlatformDoordash:
		v = l.DoordashName
	case PlatformGrubhub:
		v = l.GrubhubName
	}
	if v == nil {
		return ""
	}
	return *v
}

// MasterLocationRow é uma linha da lista mestra de lojas importada via planilha
type MasterLocationRow struct {
	CanonicalName string
	StoreID       string
}

// MasterImportResult resume o resultado da importação da lista mestra
type MasterImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}
