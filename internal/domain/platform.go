// Package domain contém as estruturas de dados do domínio da aplicação
package domain

import "fmt"

// Platform identifica a plataforma de delivery de origem de uma transação
type Platform string

const (
	PlatformUberEats Platform = "ubereats"
	PlatformDoordash Platform = "doordash"
	PlatformGrubhub  Platform = "grubhub"
)

// Platforms lista todas as plataformas suportadas, na ordem canônica
var Platforms = []Platform{PlatformUberEats, PlatformDoordash, PlatformGrubhub}

// ParsePlatform converte a tag textual recebida na API para uma Platform
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformUberEats, PlatformDoordash, PlatformGrubhub:
		return Platform(s), nil
	}
	return "", fmt.Errorf("plataforma desconhecida: %q", s)
}

func (p Platform) String() string {
	return string(p)
}
