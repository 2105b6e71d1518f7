package fiscal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/obarros/fiscal-nfe-api/internal/domain/fiscal"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// Operação interna SP→SP, Regime Normal, base R$1000, IPI 4.88%:
// IPI 48.80; base ICMS 1048.80; ICMS 188.784; PIS 6.50; COFINS 30.00.
func TestCalcularItem_OperacaoInterna(t *testing.T) {
	r := fiscal.CalcularItem(fiscal.ItemCalculo{
		Base:        dec(1000),
		Regime:      fiscal.RegimeNormal,
		Origem:      fiscal.EstadoPorUF("SP"),
		Destino:     fiscal.EstadoPorUF("SP"),
		AliquotaIPI: dec(4.88),
		MVA:         fiscal.MVAPadraoAutopecas,
	})

	assert.True(t, r.IPI.Equal(dec(48.80)), "IPI = %s", r.IPI)
	assert.True(t, r.ICMS.Equal(dec(188.784)), "ICMS = %s", r.ICMS)
	assert.True(t, r.PIS.Equal(dec(6.50)), "PIS = %s", r.PIS)
	assert.True(t, r.COFINS.Equal(dec(30.00)), "COFINS = %s", r.COFINS)
	assert.True(t, r.Total().Equal(dec(274.084)), "total = %s", r.Total())
}

// Interestadual PR→BA a contribuinte, NCM não resolvido (IPI 0, MVA padrão),
// base R$500: alíquota interestadual 7% (Sul → Nordeste), ICMS próprio 35,
// base ST 858.90, ICMS total ST 193.2525 (22.5% efetivo na BA), item 193.2525.
func TestCalcularItem_SubstituicaoTributaria(t *testing.T) {
	r := fiscal.CalcularItem(fiscal.ItemCalculo{
		Base:          dec(500),
		Regime:        fiscal.RegimeNormal,
		Origem:        fiscal.EstadoPorUF("PR"),
		Destino:       fiscal.EstadoPorUF("BA"),
		Interestadual: true,
		MVA:           fiscal.MVAPadraoAutopecas,
	})

	assert.True(t, r.IPI.IsZero())
	assert.True(t, r.ICMS.Equal(dec(193.2525)), "ICMS = %s", r.ICMS)
}

// Interestadual SP→RR a não contribuinte (DIFAL), base 1000 sem IPI:
// rd = 20%; base por dentro 1250; ICMS destino 250; interestadual 7% = 70;
// DIFAL 180; item = 250.
func TestCalcularItem_DIFAL(t *testing.T) {
	r := fiscal.CalcularItem(fiscal.ItemCalculo{
		Base:            dec(1000),
		Regime:          fiscal.RegimeNormal,
		Origem:          fiscal.EstadoPorUF("SP"),
		Destino:         fiscal.EstadoPorUF("RR"),
		Interestadual:   true,
		NaoContribuinte: true,
		MVA:             fiscal.MVAPadraoAutopecas,
	})

	assert.True(t, r.ICMS.Equal(dec(250)), "ICMS = %s", r.ICMS)
}

func TestCalcularItem_SimplesNacionalZeraTudo(t *testing.T) {
	// Invariante: no Simples todo imposto estimado é zero, independente de
	// jurisdição, CST ou alíquotas resolvidas.
	r := fiscal.CalcularItem(fiscal.ItemCalculo{
		Base:          dec(9999),
		CSTICMS:       "00",
		Regime:        fiscal.RegimeSimples,
		Origem:        fiscal.EstadoPorUF("PR"),
		Destino:       fiscal.EstadoPorUF("BA"),
		Interestadual: true,
		AliquotaIPI:   dec(4.88),
		MVA:           fiscal.MVAPadraoAutopecas,
	})

	assert.True(t, r.ICMS.IsZero())
	assert.True(t, r.IPI.IsZero())
	assert.True(t, r.PIS.IsZero())
	assert.True(t, r.COFINS.IsZero())
}

func TestCalcularItem_CSTIsentoZeraSomenteICMS(t *testing.T) {
	for _, cst := range []string{"40", "41", "50", "51", "102", "103", "300", "400", "500"} {
		r := fiscal.CalcularItem(fiscal.ItemCalculo{
			Base:        dec(100),
			CSTICMS:     cst,
			Regime:      fiscal.RegimeNormal,
			Origem:      fiscal.EstadoPorUF("SP"),
			Destino:     fiscal.EstadoPorUF("SP"),
			AliquotaIPI: dec(3.25),
			MVA:         fiscal.MVAPadraoAutopecas,
		})
		assert.True(t, r.ICMS.IsZero(), "CST %s deve zerar o ICMS", cst)
		assert.True(t, r.IPI.Equal(dec(3.25)), "CST %s não afeta o IPI", cst)
		assert.True(t, r.PIS.Equal(dec(0.65)), "CST %s não afeta o PIS", cst)
	}
}

func TestCalcularItem_RegimeDesconhecidoSemPISCOFINS(t *testing.T) {
	r := fiscal.CalcularItem(fiscal.ItemCalculo{
		Base:        dec(1000),
		Regime:      fiscal.RegimeDesconhecido,
		Origem:      fiscal.EstadoPorUF("SP"),
		Destino:     fiscal.EstadoPorUF("SP"),
		AliquotaIPI: dec(4.88),
		MVA:         fiscal.MVAPadraoAutopecas,
	})

	assert.True(t, r.PIS.IsZero())
	assert.True(t, r.COFINS.IsZero())
	// ICMS e IPI seguem o cálculo normal
	assert.True(t, r.IPI.Equal(dec(48.80)))
	assert.True(t, r.ICMS.Equal(dec(188.784)))
}

func TestCalcularItem_ComponentesNuncaNegativos(t *testing.T) {
	// MVA negativa extrema e destino com alíquota baixa forçariam ST
	// negativo; o valor a recolher é travado em zero.
	r := fiscal.CalcularItem(fiscal.ItemCalculo{
		Base:          dec(1000),
		Regime:        fiscal.RegimeNormal,
		Origem:        fiscal.EstadoPorUF("SP"),
		Destino:       fiscal.EstadoPorUF("SC"),
		Interestadual: true,
		MVA:           dec(-90),
	})

	assert.False(t, r.ICMS.IsNegative())
	assert.False(t, r.IPI.IsNegative())
	assert.False(t, r.PIS.IsNegative())
	assert.False(t, r.COFINS.IsNegative())
	// com ST travado em zero sobra apenas o ICMS próprio interestadual (12%)
	assert.True(t, r.ICMS.Equal(dec(120)), "ICMS = %s", r.ICMS)
}
