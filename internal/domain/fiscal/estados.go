// Package fiscal implementa o motor de estimativa de impostos sobre itens de
// NF-e de autopeças: tabela de alíquotas internas por UF, regra de alíquota
// interestadual, cálculo por item (ICMS próprio, ICMS-ST, DIFAL, IPI,
// PIS/COFINS) e montagem da trilha de premissas.
//
// Todas as alíquotas e conjuntos aqui são fatos de legislação, não
// configuração: Convênio ICMS 201/17, TIPI (Decreto 11.158/2022) e
// Lei 10.485/02.
package fiscal

import "github.com/shopspring/decimal"

// EstadoICMS é a alíquota interna de uma UF com o adicional de FCP
// (Fundo de Combate à Pobreza).
type EstadoICMS struct {
	UF       string
	Aliquota decimal.Decimal // alíquota interna padrão, em %
	FCP      decimal.Decimal // adicional FCP, em %
}

// AliquotaEfetiva devolve a alíquota interna efetiva (padrão + FCP).
func (e EstadoICMS) AliquotaEfetiva() decimal.Decimal {
	return e.Aliquota.Add(e.FCP)
}

func estado(uf string, aliquota, fcp float64) EstadoICMS {
	return EstadoICMS{UF: uf, Aliquota: decimal.NewFromFloat(aliquota), FCP: decimal.NewFromFloat(fcp)}
}

// EstadosICMS: alíquotas internas das 27 UFs (26 estados + DF).
// Tabela imutável; carregada uma vez no start do processo.
var EstadosICMS = []EstadoICMS{
	estado("AC", 19, 0), estado("AL", 19, 2), estado("AP", 18, 0),
	estado("AM", 20, 2), estado("BA", 20.5, 2), estado("CE", 20, 2),
	estado("DF", 20, 2), estado("ES", 17, 0), estado("GO", 19, 2),
	estado("MA", 22, 2), estado("MT", 17, 2), estado("MS", 17, 2),
	estado("MG", 18, 2), estado("PA", 19, 0), estado("PB", 20, 2),
	estado("PR", 19.5, 0), estado("PE", 20.5, 2), estado("PI", 21, 2),
	estado("RJ", 20, 2), estado("RN", 20, 2), estado("RS", 17, 2),
	estado("RO", 19.5, 0), estado("RR", 20, 0), estado("SC", 17, 0),
	estado("SP", 18, 0), estado("SE", 19, 2), estado("TO", 20, 2),
}

// EstadoPorUF devolve a entrada da tabela para a UF. UFs desconhecidas não
// são erro: assume-se {18%, 0%} para a estimativa seguir best-effort.
func EstadoPorUF(uf string) EstadoICMS {
	for _, e := range EstadosICMS {
		if e.UF == uf {
			return e
		}
	}
	return estado(uf, 18, 0)
}

// Regiões do Brasil para a regra de alíquota interestadual. A partição é
// exata por pertencimento aos conjuntos, não por geografia aproximada:
// o ES fica do lado Norte/Nordeste/Centro-Oeste da regra apesar de ser Sudeste.
var (
	regiaoSul         = []string{"PR", "RS", "SC"}
	regiaoSudeste     = []string{"ES", "MG", "RJ", "SP"}
	regiaoNorte       = []string{"AC", "AP", "AM", "PA", "RO", "RR", "TO"}
	regiaoNordeste    = []string{"AL", "BA", "CE", "MA", "PB", "PE", "PI", "RN", "SE"}
	regiaoCentroOeste = []string{"DF", "GO", "MT", "MS"}
)

// Alíquotas interestaduais de ICMS, em %. AliquotaInterIncentivada vale para
// Sul/Sudeste (exceto ES) → Norte/Nordeste/Centro-Oeste/ES; demais rotas usam
// AliquotaInterGeral.
var (
	AliquotaInterIncentivada = decimal.NewFromInt(7)
	AliquotaInterGeral       = decimal.NewFromInt(12)
)

func contemUF(ufs []string, uf string) bool {
	for _, u := range ufs {
		if u == uf {
			return true
		}
	}
	return false
}

// AliquotaInterestadual devolve a alíquota interestadual de ICMS entre duas
// UFs, em %. Zero quando a operação não é interestadual (UF vazia ou igual).
// Sul/Sudeste (exceto ES) → Norte/Nordeste/Centro-Oeste/ES: 7%; demais: 12%.
func AliquotaInterestadual(ufOrigem, ufDestino string) decimal.Decimal {
	if ufOrigem == "" || ufDestino == "" || ufOrigem == ufDestino {
		return decimal.Zero
	}
	origemSulSudeste := ufOrigem != "ES" &&
		(contemUF(regiaoSul, ufOrigem) || contemUF(regiaoSudeste, ufOrigem))
	destinoNorteNordesteCOES := ufDestino == "ES" ||
		contemUF(regiaoNorte, ufDestino) ||
		contemUF(regiaoNordeste, ufDestino) ||
		contemUF(regiaoCentroOeste, ufDestino)
	if origemSulSudeste && destinoNorteNordesteCOES {
		return AliquotaInterIncentivada
	}
	return AliquotaInterGeral
}
