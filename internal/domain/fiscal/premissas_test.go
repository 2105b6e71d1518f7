package fiscal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obarros/fiscal-nfe-api/internal/domain/fiscal"
)

// A ordem da trilha é contrato: regime → zeramento/método → IPI na base →
// fontes por NCM → CSTs isentos → avisos por item → ressalva final.
func TestMontarPremissas_OrdemFixaRegimeNormal(t *testing.T) {
	got := fiscal.MontarPremissas(fiscal.FatosEstimativa{
		Regime:  fiscal.RegimeNormal,
		Metodo:  fiscal.MetodoST,
		Origem:  fiscal.EstadoPorUF("PR"),
		Destino: fiscal.EstadoPorUF("BA"),
		FontesNCM: []fiscal.AliquotaNCM{
			{NCM: "87082999", Fonte: fiscal.FonteIA, IPI: decimal.NewFromFloat(4.88), MVA: decimal.NewFromFloat(71.78)},
			{NCM: "84212300", Fonte: fiscal.FonteFallback, IPI: decimal.NewFromFloat(3.25), MVA: fiscal.MVAPadraoAutopecas},
		},
		CSTsIsentos: []string{"40"},
		AvisosNCM:   []fiscal.AvisoNCM{{CodigoItem: "P-77", NCM: "99999999"}},
	})

	esperado := []string{
		"- PIS/COFINS (0.65%/3.00%) calculado com base no Regime Normal (presumindo Lucro Presumido).",
		"- ICMS-ST calculado de PR para BA (venda a contribuinte).",
		"- O valor do IPI foi somado à base de cálculo do ICMS.",
		"- IPI (4.88%) e MVA (71.78%) aplicados. (Consulta IA NCM 87082999)",
		"- IPI/MVA aplicados com base em alíquotas padrão. (Fallback NCM 84212300)",
		"- Itens com CST/CSOSN 40 tiveram ICMS estimado como zero (Operação isenta/não tributada).",
		"- Item (Cód: P-77): NCM '99999999' desconhecido na base, IPI não calculado.",
		"- Cálculo não considera regimes especiais ou benefícios fiscais.",
	}
	assert.Equal(t, esperado, got)
}

func TestMontarPremissas_SimplesNacional(t *testing.T) {
	got := fiscal.MontarPremissas(fiscal.FatosEstimativa{
		Regime: fiscal.RegimeSimples,
		Metodo: fiscal.MetodoInterno,
		Origem: fiscal.EstadoPorUF("SP"),
	})

	require.Len(t, got, 4)
	assert.Equal(t, "- PIS/COFINS estimado em 0% (Recolhimento unificado via DAS).", got[0])
	assert.Equal(t, "- ICMS: Estimado em R$ 0,00 (Recolhimento unificado via DAS).", got[1])
	assert.Equal(t, "- IPI: Estimado em R$ 0,00 (Regra do Simples Nacional).", got[2])
	assert.Equal(t, "- Cálculo não considera regimes especiais ou benefícios fiscais.", got[3])
	// no Simples não há premissa de método de ICMS nem de IPI na base
	for _, p := range got {
		assert.NotContains(t, p, "Operação Interna")
		assert.NotContains(t, p, "base de cálculo do ICMS")
	}
}

func TestMontarPremissas_OperacaoInternaFormataAliquota(t *testing.T) {
	got := fiscal.MontarPremissas(fiscal.FatosEstimativa{
		Regime: fiscal.RegimeNormal,
		Metodo: fiscal.MetodoInterno,
		Origem: fiscal.EstadoPorUF("BA"),
	})

	assert.Contains(t, got, "- ICMS calculado como Operação Interna em BA (Alíquota 22.50%).")
}

func TestMontarPremissas_SempreTemRessalvaFinal(t *testing.T) {
	got := fiscal.MontarPremissas(fiscal.FatosEstimativa{Regime: fiscal.RegimeDesconhecido})
	require.NotEmpty(t, got)
	assert.Equal(t, "- Cálculo não considera regimes especiais ou benefícios fiscais.", got[len(got)-1])
}

func TestMontarPremissas_NCMNaoInformado(t *testing.T) {
	got := fiscal.MontarPremissas(fiscal.FatosEstimativa{
		Regime:    fiscal.RegimeNormal,
		Metodo:    fiscal.MetodoInterno,
		Origem:    fiscal.EstadoPorUF("SP"),
		AvisosNCM: []fiscal.AvisoNCM{{CodigoItem: "ABC"}},
	})

	assert.Contains(t, got, "- Item (Cód: ABC): NCM não informado, IPI não calculado.")
}
