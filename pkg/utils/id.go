package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// IDLength é o tamanho dos ids das análises; curto o bastante para ir na URL
const IDLength = 12

func GenerateID() (string, error) {
	return gonanoid.Generate(characters, IDLength)
}

// IsValidID confere tamanho e alfabeto de um id recebido de fora
func IsValidID(id string) bool {
	if len(id) != IDLength {
		return false
	}
	for _, c := range id {
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
