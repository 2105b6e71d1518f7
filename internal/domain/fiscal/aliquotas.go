package fiscal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MVAPadraoAutopecas é a Margem de Valor Agregado usada no ICMS-ST quando a
// consulta externa não devolve a MVA ajustada para o NCM da operação.
var MVAPadraoAutopecas = decimal.NewFromFloat(71.78)

// Alíquotas de PIS/COFINS do regime cumulativo (Lucro Presumido), em %.
// O regime monofásico de autopeças (Lei 10.485/02) não é aplicado aqui;
// ver a premissa de fechamento da estimativa.
var (
	AliquotaPIS    = decimal.NewFromFloat(0.65)
	AliquotaCOFINS = decimal.NewFromFloat(3.00)
)

// cstsIsentos: CST/CSOSN cuja operação é isenta ou não tributada de ICMS.
var cstsIsentos = map[string]struct{}{
	"40": {}, "41": {}, "50": {}, "51": {},
	"102": {}, "103": {}, "300": {}, "400": {}, "500": {},
}

// CSTIsento indica se o código de situação tributária marca o item como
// isento/não tributado de ICMS.
func CSTIsento(cst string) bool {
	_, ok := cstsIsentos[cst]
	return ok
}

// ipiFallback: alíquotas de IPI por NCM (limpo, sem pontos) usadas quando a
// consulta externa falha. Subconjunto da TIPI relevante para autopeças.
var ipiFallback = map[string]decimal.Decimal{
	"87082999": decimal.NewFromFloat(4.88), // Outros acessórios de carroçaria
	"87087090": decimal.NewFromFloat(4.88), // Rodas e suas partes
	"40169990": decimal.NewFromFloat(4.23), // Outras obras de borracha vulcanizada
	"84099112": decimal.NewFromFloat(3.25), // Pistões
	"85111000": decimal.NewFromFloat(3.25), // Velas de ignição
	"84212300": decimal.NewFromFloat(3.25), // Filtros de óleo
	"87083090": decimal.NewFromFloat(3.25), // Outras partes de freios
}

// AliquotaIPIFallback devolve a alíquota de IPI da tabela estática para o
// NCM limpo, se houver.
func AliquotaIPIFallback(ncmLimpo string) (decimal.Decimal, bool) {
	aliquota, ok := ipiFallback[ncmLimpo]
	return aliquota, ok
}

// TabelaIPIFallback devolve uma cópia da tabela estática de IPI por NCM,
// para exposição na API de referência.
func TabelaIPIFallback() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(ipiFallback))
	for ncm, aliquota := range ipiFallback {
		out[ncm] = aliquota
	}
	return out
}

// LimparNCM remove separadores não numéricos do código NCM ("8708.29.99" →
// "87082999"). Devolve vazio quando o código não tem dígitos.
func LimparNCM(ncm string) string {
	var b strings.Builder
	for _, r := range ncm {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FonteAliquota identifica a origem da resolução de alíquotas de um NCM.
type FonteAliquota int

const (
	// FonteDesconhecida: nem a consulta externa nem a tabela estática
	// resolveram o NCM; IPI do item é zero e a nota é sinalizada.
	FonteDesconhecida FonteAliquota = iota
	// FonteIA: consulta externa (LLM) bem-sucedida.
	FonteIA
	// FonteFallback: tabela estática de IPI + MVA padrão.
	FonteFallback
)

// AliquotaNCM é o resultado da resolução de alíquotas de um código NCM
// dentro de uma execução de estimativa.
type AliquotaNCM struct {
	NCM   string // código limpo
	Fonte FonteAliquota
	IPI   decimal.Decimal // %; zero quando Fonte == FonteDesconhecida
	MVA   decimal.Decimal // %; MVAPadraoAutopecas quando não resolvida externamente
}
