// Package texto: normalização de texto para busca.
package texto

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var semAcentos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalizar remove acentos e baixa a caixa ("João" → "joao"). Usado para
// comparar nomes de emitente sem sensibilidade a acentuação.
func Normalizar(s string) string {
	limpo, _, err := transform.String(semAcentos, s)
	if err != nil {
		limpo = s
	}
	return strings.ToLower(strings.TrimSpace(limpo))
}
