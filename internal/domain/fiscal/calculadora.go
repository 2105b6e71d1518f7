package fiscal

import "github.com/shopspring/decimal"

var cem = decimal.NewFromInt(100)

// ItemCalculo reúne os dados já resolvidos de um item para o cálculo:
// base monetária, situação tributária, regime do emitente, jurisdições e
// alíquotas resolvidas do NCM.
type ItemCalculo struct {
	Base            decimal.Decimal
	CSTICMS         string
	Regime          Regime
	Origem          EstadoICMS
	Destino         EstadoICMS // igual à origem em operação interna
	Interestadual   bool
	NaoContribuinte bool // destinatário consumidor final não contribuinte
	AliquotaIPI     decimal.Decimal // %; zero para NCM não resolvido
	MVA             decimal.Decimal // %; margem para o ICMS-ST
}

// ImpostoItem é a decomposição estimada de um item. Os quatro componentes
// são sempre ≥ 0; base + ICMS + IPI + PIS + COFINS = total com impostos.
type ImpostoItem struct {
	ICMS   decimal.Decimal
	IPI    decimal.Decimal
	PIS    decimal.Decimal
	COFINS decimal.Decimal
}

// Total devolve a soma dos quatro componentes.
func (i ImpostoItem) Total() decimal.Decimal {
	return i.ICMS.Add(i.IPI).Add(i.PIS).Add(i.COFINS)
}

// CalcularItem estima ICMS, IPI, PIS e COFINS de um item sob o regime
// aplicável. Função pura: mesmo input, mesmo output.
//
// Ramos mutuamente exclusivos, nesta ordem:
//  1. Simples Nacional: tudo zero (recolhimento unificado via DAS).
//  2. CST/CSOSN isento: ICMS zero; IPI e PIS/COFINS seguem as regras gerais.
//  3. Operação interna: ICMS = (base+IPI) × alíquota efetiva da origem.
//  4. Interestadual a não contribuinte: DIFAL com base "por dentro".
//  5. Interestadual a contribuinte: ICMS próprio + ICMS-ST com MVA.
//
// O IPI entra na base de cálculo do ICMS (não é somado depois). Valores de
// ST e DIFAL negativos são travados em zero: imposto devido nunca é negativo.
func CalcularItem(in ItemCalculo) ImpostoItem {
	if in.Regime == RegimeSimples {
		return ImpostoItem{ICMS: decimal.Zero, IPI: decimal.Zero, PIS: decimal.Zero, COFINS: decimal.Zero}
	}

	ipi := in.Base.Mul(in.AliquotaIPI).Div(cem)

	var pis, cofins decimal.Decimal
	if in.Regime == RegimeNormal {
		pis = in.Base.Mul(AliquotaPIS).Div(cem)
		cofins = in.Base.Mul(AliquotaCOFINS).Div(cem)
	}

	baseICMS := in.Base.Add(ipi)
	var icms decimal.Decimal
	switch {
	case CSTIsento(in.CSTICMS):
		// isento/não tributado: só o ICMS zera

	case !in.Interestadual:
		icms = baseICMS.Mul(in.Origem.AliquotaEfetiva()).Div(cem)

	case in.NaoContribuinte:
		icms = calcularDIFAL(baseICMS, in.Origem, in.Destino)

	default:
		icms = calcularST(baseICMS, in.Origem, in.Destino, in.MVA)
	}

	return ImpostoItem{ICMS: icms, IPI: ipi, PIS: pis, COFINS: cofins}
}

// calcularDIFAL: diferencial de alíquota em venda interestadual a consumidor
// final não contribuinte. A base é reconstituída "por dentro" com a alíquota
// efetiva do destino antes de apurar o ICMS devido ao destino.
func calcularDIFAL(baseICMS decimal.Decimal, origem, destino EstadoICMS) decimal.Decimal {
	rd := destino.AliquotaEfetiva()
	baseGrossUp := baseICMS.Div(decimal.NewFromInt(1).Sub(rd.Div(cem)))
	icmsDestinoTotal := baseGrossUp.Mul(rd).Div(cem)
	icmsInterestadual := baseICMS.Mul(AliquotaInterestadual(origem.UF, destino.UF)).Div(cem)
	difal := naoNegativo(icmsDestinoTotal.Sub(icmsInterestadual))
	return icmsInterestadual.Add(difal)
}

// calcularST: substituição tributária em venda interestadual a contribuinte
// (caso comum de revenda de autopeças). O ICMS da cadeia é antecipado sobre
// a base acrescida da MVA.
func calcularST(baseICMS decimal.Decimal, origem, destino EstadoICMS, mva decimal.Decimal) decimal.Decimal {
	icmsProprio := baseICMS.Mul(AliquotaInterestadual(origem.UF, destino.UF)).Div(cem)
	baseST := baseICMS.Mul(decimal.NewFromInt(1).Add(mva.Div(cem)))
	icmsTotalST := baseST.Mul(destino.AliquotaEfetiva()).Div(cem)
	stARecolher := naoNegativo(icmsTotalST.Sub(icmsProprio))
	return icmsProprio.Add(stARecolher)
}

func naoNegativo(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
