package fiscal

import "fmt"

// MetodoICMS é o método de cálculo de ICMS aplicado à nota inteira,
// decidido pelo par de jurisdições e pelo tipo de destinatário.
type MetodoICMS int

const (
	MetodoInterno MetodoICMS = iota // operação dentro da mesma UF
	MetodoDIFAL                     // interestadual a não contribuinte
	MetodoST                        // interestadual a contribuinte
)

// AvisoNCM é a observação por item cujo NCM não pôde ser resolvido.
type AvisoNCM struct {
	CodigoItem string
	NCM        string // original, como veio na nota; vazio = não informado
}

// FatosEstimativa reúne o que aconteceu durante uma execução do motor para
// a montagem da trilha de premissas.
type FatosEstimativa struct {
	Regime    Regime
	Metodo    MetodoICMS
	Origem    EstadoICMS
	Destino   EstadoICMS
	FontesNCM []AliquotaNCM // NCMs distintos resolvidos, na ordem do primeiro uso
	CSTsIsentos []string    // CSTs isentos distintos, na ordem do primeiro uso
	AvisosNCM   []AvisoNCM  // itens com NCM não resolvido, na ordem dos itens
}

// MontarPremissas monta a trilha de premissas em ordem fixa de prioridade,
// independente da ordem de iteração dos itens — o texto resultante é um
// contrato determinístico para o mesmo input:
//
//  1. premissa de PIS/COFINS do regime
//  2. zeramento de ICMS/IPI (somente Simples Nacional)
//  3. método de cálculo do ICMS (interno, DIFAL ou ST; omitido no Simples)
//  4. IPI somado à base do ICMS (omitido no Simples)
//  5. fonte das alíquotas por NCM distinto
//  6. CSTs isentos distintos
//  7. avisos de NCM desconhecido por item
//  8. ressalva de fechamento
//
// A lista nunca é vazia: a ressalva de fechamento está sempre presente.
func MontarPremissas(f FatosEstimativa) []string {
	premissas := make([]string, 0, 8+len(f.FontesNCM)+len(f.CSTsIsentos)+len(f.AvisosNCM))

	// 1) PIS/COFINS por regime
	switch f.Regime {
	case RegimeNormal:
		premissas = append(premissas, "- PIS/COFINS (0.65%/3.00%) calculado com base no Regime Normal (presumindo Lucro Presumido).")
	case RegimeSimples:
		premissas = append(premissas, "- PIS/COFINS estimado em 0% (Recolhimento unificado via DAS).")
	default:
		premissas = append(premissas, "- PIS/COFINS estimado em 0%. Premissa: Regime Monofásico ou Simples Nacional (excesso de sublimite).")
	}

	if f.Regime == RegimeSimples {
		// 2) zeramento global do Simples
		premissas = append(premissas,
			"- ICMS: Estimado em R$ 0,00 (Recolhimento unificado via DAS).",
			"- IPI: Estimado em R$ 0,00 (Regra do Simples Nacional).",
		)
	} else {
		// 3) método de cálculo do ICMS
		switch f.Metodo {
		case MetodoInterno:
			premissas = append(premissas, fmt.Sprintf(
				"- ICMS calculado como Operação Interna em %s (Alíquota %s%%).",
				f.Origem.UF, f.Origem.AliquotaEfetiva().StringFixed(2)))
		case MetodoDIFAL:
			premissas = append(premissas, fmt.Sprintf(
				"- ICMS calculado com DIFAL de %s para %s (venda a não contribuinte, com base \"por dentro\").",
				f.Origem.UF, f.Destino.UF))
		case MetodoST:
			premissas = append(premissas, fmt.Sprintf(
				"- ICMS-ST calculado de %s para %s (venda a contribuinte).",
				f.Origem.UF, f.Destino.UF))
		}
		// 4) IPI na base do ICMS
		premissas = append(premissas, "- O valor do IPI foi somado à base de cálculo do ICMS.")
	}

	// 5) fonte das alíquotas por NCM distinto
	for _, fonte := range f.FontesNCM {
		switch fonte.Fonte {
		case FonteIA:
			premissas = append(premissas, fmt.Sprintf(
				"- IPI (%s%%) e MVA (%s%%) aplicados. (Consulta IA NCM %s)",
				fonte.IPI.String(), fonte.MVA.String(), fonte.NCM))
		case FonteFallback:
			premissas = append(premissas, fmt.Sprintf(
				"- IPI/MVA aplicados com base em alíquotas padrão. (Fallback NCM %s)", fonte.NCM))
		}
	}

	// 6) CSTs isentos distintos
	for _, cst := range f.CSTsIsentos {
		premissas = append(premissas, fmt.Sprintf(
			"- Itens com CST/CSOSN %s tiveram ICMS estimado como zero (Operação isenta/não tributada).", cst))
	}

	// 7) avisos de NCM desconhecido, na ordem dos itens
	for _, aviso := range f.AvisosNCM {
		if aviso.NCM == "" {
			premissas = append(premissas, fmt.Sprintf(
				"- Item (Cód: %s): NCM não informado, IPI não calculado.", aviso.CodigoItem))
		} else {
			premissas = append(premissas, fmt.Sprintf(
				"- Item (Cód: %s): NCM '%s' desconhecido na base, IPI não calculado.", aviso.CodigoItem, aviso.NCM))
		}
	}

	// 8) ressalva de fechamento
	premissas = append(premissas, "- Cálculo não considera regimes especiais ou benefícios fiscais.")
	return premissas
}
