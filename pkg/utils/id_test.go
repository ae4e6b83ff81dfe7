package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := GenerateID()
		require.NoError(t, err)
		assert.Len(t, id, IDLength)
		assert.True(t, IsValidID(id))
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 100)
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "Id válido", id: "AbC123xyz789", want: true},
		{name: "Id curto", id: "AbC123", want: false},
		{name: "Caractere fora do alfabeto", id: "AbC123xyz78-", want: false},
		{name: "Vazio", id: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidID(tt.id))
		})
	}
}
