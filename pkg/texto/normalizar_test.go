package texto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizar(t *testing.T) {
	casos := map[string]string{
		"Auto Peças São José": "auto pecas sao jose",
		"IPIRANGA":            "ipiranga",
		"  Mecânica do João ": "mecanica do joao",
		"sem-acento 123":      "sem-acento 123",
		"":                    "",
	}
	for entrada, esperado := range casos {
		assert.Equal(t, esperado, Normalizar(entrada), "entrada %q", entrada)
	}
}
