package estimator

import (
	"context"
	"sync"

	"github.com/obarros/fiscal-nfe-api/internal/application/ports"
	"github.com/obarros/fiscal-nfe-api/internal/domain/entity"
	"github.com/obarros/fiscal-nfe-api/internal/domain/fiscal"
)

// consultaNCM parâmetros compartilhados de uma rodada de consultas: todos os
// itens de uma nota têm as mesmas jurisdições e o mesmo tipo de destinatário.
type consultaNCM struct {
	ufOrigem        string
	ufDestino       string
	naoContribuinte bool
}

// resolverNCMs resolve as alíquotas de todos os NCMs distintos dos itens,
// na ordem do primeiro uso. Cada NCM distinto gera no máximo uma consulta
// externa; as consultas saem em paralelo e cada goroutine escreve apenas no
// seu próprio slot do slice de resultados.
//
// Falha ou resposta incompleta da consulta nunca derruba a estimativa: o NCM
// cai na tabela estática de IPI e, em último caso, em FonteDesconhecida com
// a MVA padrão.
func resolverNCMs(ctx context.Context, consulta ports.ConsultaAliquotaNCM, itens []*entity.ItemNotaFiscal, p consultaNCM) map[string]fiscal.AliquotaNCM {
	// NCMs distintos na ordem do primeiro uso
	ordem := make([]string, 0, len(itens))
	vistos := make(map[string]struct{}, len(itens))
	for _, item := range itens {
		ncm := fiscal.LimparNCM(item.CodigoNCM)
		if ncm == "" {
			continue
		}
		if _, ok := vistos[ncm]; ok {
			continue
		}
		vistos[ncm] = struct{}{}
		ordem = append(ordem, ncm)
	}

	resultados := make([]fiscal.AliquotaNCM, len(ordem))
	var wg sync.WaitGroup
	for i, ncm := range ordem {
		wg.Add(1)
		go func(i int, ncm string) {
			defer wg.Done()
			resultados[i] = resolverNCM(ctx, consulta, ncm, p)
		}(i, ncm)
	}
	wg.Wait()

	porNCM := make(map[string]fiscal.AliquotaNCM, len(ordem))
	for _, r := range resultados {
		porNCM[r.NCM] = r
	}
	return porNCM
}

// resolverNCM resolve um único NCM: consulta externa, senão tabela estática,
// senão desconhecido (IPI zero, MVA padrão para eventual ST).
func resolverNCM(ctx context.Context, consulta ports.ConsultaAliquotaNCM, ncm string, p consultaNCM) fiscal.AliquotaNCM {
	if consulta != nil {
		resp, err := consulta.ConsultarAliquotas(ctx, ncm, p.ufOrigem, p.ufDestino, p.naoContribuinte)
		if err == nil && resp != nil {
			return fiscal.AliquotaNCM{NCM: ncm, Fonte: fiscal.FonteIA, IPI: resp.AliquotaIPI, MVA: resp.MVAStAjustada}
		}
	}
	if ipi, ok := fiscal.AliquotaIPIFallback(ncm); ok {
		return fiscal.AliquotaNCM{NCM: ncm, Fonte: fiscal.FonteFallback, IPI: ipi, MVA: fiscal.MVAPadraoAutopecas}
	}
	return fiscal.AliquotaNCM{NCM: ncm, Fonte: fiscal.FonteDesconhecida, MVA: fiscal.MVAPadraoAutopecas}
}
